package utils

import (
	"fmt"
	"time"
)

func SendResponseReceivedEmail(to, organizerName, title, respondentEmail, answer string, yes, no, alternate, pending int) error {
	subject := fmt.Sprintf("📥 New Response on '%s' — %s", title, answer)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Response Received</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f6f8f7;
			margin: 0;
			padding: 0;
			color: #333;
		}
		.container {
			max-width: 480px;
			margin: 25px auto;
			background: #ffffff;
			border-radius: 12px;
			box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
			overflow: hidden;
			border-top: 5px solid #0a4d3c;
		}
		.header {
			background-color: #0a4d3c;
			color: #ffffff;
			text-align: center;
			padding: 18px 12px;
		}
		.header h1 {
			margin: 0;
			font-size: 18px;
			font-weight: 600;
		}
		.content {
			padding: 20px 18px;
		}
		.message {
			font-size: 14px;
			line-height: 1.6;
			color: #444;
		}
		.answer-box {
			background: #f2fdf6;
			border: 1px solid #bfe7cb;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
			text-align: center;
		}
		.answer-box h3 {
			margin: 0;
			color: #0a4d3c;
			font-size: 16px;
			font-weight: 700;
			text-transform: capitalize;
		}
		.answer-box p {
			margin: 6px 0 0;
			font-size: 13px;
			color: #555;
		}
		.tally {
			display: flex;
			justify-content: space-between;
			background: #f1f8f4;
			border-radius: 8px;
			padding: 12px 14px;
			margin-top: 14px;
			font-size: 13px;
			color: #444;
		}
		.tally b {
			color: #0a4d3c;
		}
		.footer {
			background: #f0f6f2;
			text-align: center;
			padding: 14px;
			font-size: 12px;
			color: #777;
			border-top: 1px solid #e5e5e5;
		}
		.brand {
			color: #0a4d3c;
			font-weight: bold;
		}
	</style>
	</head>

	<body>
		<div class="container">
			<div class="header">
				<h1>Someone Just Responded 📬</h1>
			</div>
			<div class="content">
				<p class="message">
					Hi %s,<br><br>
					<b>%s</b> just responded to your meeting proposal <b>%s</b>.
				</p>

				<div class="answer-box">
					<h3>%s</h3>
					<p>Recorded: %s</p>
				</div>

				<div class="tally">
					<span>✅ Yes: <b>%d</b></span>
					<span>❌ No: <b>%d</b></span>
					<span>🔄 Alternate: <b>%d</b></span>
					<span>⏳ Pending: <b>%d</b></span>
				</div>

				<p class="message">
					You can follow the remaining responses on <b>PlanBuddy</b>.
				</p>
			</div>
			<div class="footer">
				&copy; %d <span class="brand">PlanBuddy</span> — Less Back-and-Forth. More Meetings.
			</div>
		</div>
	</body>
	</html>
	`, organizerName, respondentEmail, title, answer, time.Now().Format("3:04 PM, Jan 2 2006"),
		yes, no, alternate, pending, time.Now().Year())

	return SendEmail(to, subject, body)
}
