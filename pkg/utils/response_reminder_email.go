package utils

import (
	"fmt"
	"time"
)

func SendResponseReminderEmail(to, organizerName, title string, windowStart time.Time, respondURL string, expiresAt time.Time) error {
	subject := fmt.Sprintf("⏳ Reminder: %s is still waiting on you for '%s'", organizerName, title)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Response Reminder</title>
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
		.slot-box {
			background: #f2fdf6;
			border: 1px solid #bfe7cb;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
			text-align: center;
		}
		.slot-box h3 {
			margin: 0;
			color: #0a4d3c;
			font-size: 16px;
			font-weight: 700;
		}
		.slot-box p {
			margin: 6px 0 0;
			font-size: 13px;
			color: #555;
		}
		.btn {
			display: inline-block;
			background-color: #0a4d3c;
			color: #ffffff !important;
			text-decoration: none;
			font-size: 14px;
			font-weight: 600;
			padding: 10px 22px;
			border-radius: 6px;
			margin: 14px 0;
			text-align: center;
		}
		.btn:hover {
			background-color: #063428;
		}
		.expiry {
			margin-top: 14px;
			font-size: 12px;
			color: #888888;
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
				<h1>Still Deciding? ⏳</h1>
			</div>
			<div class="content">
				<p class="message">
					Hi there,<br><br>
					This is a friendly reminder that <b>%s</b> is still waiting to hear whether the proposed time for <b>%s</b> works for you.
				</p>

				<div class="slot-box">
					<h3>%s</h3>
					<p>Proposed slot: %s</p>
				</div>

				<div style="text-align: center;">
					<a href="%s" class="btn">Respond Now</a>
				</div>

				<p class="expiry">
					This fresh response link replaces any earlier one and expires on <b>%s</b>.
				</p>
			</div>
			<div class="footer">
				&copy; %d <span class="brand">PlanBuddy</span> — Less Back-and-Forth. More Meetings.
			</div>
		</div>
	</body>
	</html>
	`, organizerName, title, title, windowStart.Format("3:04 PM, Jan 2 2006"),
		respondURL, expiresAt.Format("3:04 PM, Jan 2 2006"), time.Now().Year())

	return SendEmail(to, subject, body)
}
