package utils

import (
	"fmt"
	"time"
)

func SendProposalInviteEmail(to, organizerName, title, description string, windowStart, windowEnd time.Time, yesURL, noURL, alternateURL string, expiresAt time.Time) error {
	subject := fmt.Sprintf("📅 %s invited you to '%s' on PlanBuddy", organizerName, title)

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1.0" />
	<title>Meeting Proposal</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f5f7f6;
			margin: 0;
			padding: 0;
			color: #333333;
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
		.subheader {
			font-size: 13px;
			margin-top: 4px;
			color: #cce8df;
		}
		.content {
			padding: 20px 18px;
		}
		.greeting {
			font-size: 14px;
			font-weight: 500;
			margin-bottom: 10px;
			color: #111111;
		}
		.message {
			font-size: 13px;
			line-height: 1.5;
			color: #444444;
			margin-bottom: 14px;
		}
		.proposal-box {
			background: #f8fdfa;
			border: 1px solid #d7ece4;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
		}
		.proposal-box h3 {
			margin: 0;
			color: #0a4d3c;
			font-size: 15px;
		}
		.proposal-box p {
			margin-top: 4px;
			font-size: 12px;
			color: #555555;
		}
		.slot {
			margin-top: 8px;
			font-size: 13px;
			font-weight: 600;
			color: #0a4d3c;
		}
		.btn {
			display: inline-block;
			color: #ffffff !important;
			text-decoration: none;
			font-size: 14px;
			font-weight: 600;
			padding: 10px 22px;
			border-radius: 6px;
			margin: 6px 4px;
			text-align: center;
			transition: background 0.2s ease;
		}
		.btn-yes {
			background-color: #0a4d3c;
		}
		.btn-yes:hover {
			background-color: #063428;
		}
		.btn-no {
			background-color: #8a2f2f;
		}
		.btn-no:hover {
			background-color: #5f1f1f;
		}
		.alternate {
			display: block;
			margin-top: 12px;
			font-size: 13px;
			color: #0a4d3c;
			text-decoration: underline;
		}
		.expiry {
			margin-top: 16px;
			font-size: 12px;
			color: #888888;
		}
		.footer {
			background: #f0f6f2;
			text-align: center;
			padding: 14px;
			font-size: 12px;
			color: #777777;
			border-top: 1px solid #e5e5e5;
		}
		.brand {
			color: #0a4d3c;
			font-weight: bold;
		}

		@media (max-width: 480px) {
			.container {
				width: 92%%;
				margin: 12px auto;
			}
			.content {
				padding: 16px 14px;
			}
			.header h1 {
				font-size: 17px;
			}
			.btn {
				display: block;
				width: 100%%;
				padding: 12px 0;
				margin: 6px 0;
			}
		}
	</style>
	</head>

	<body>
		<div class="container">
			<div class="header">
				<h1>Can You Make It?</h1>
				<p class="subheader">%s proposed a meeting time on PlanBuddy</p>
			</div>

			<div class="content">
				<p class="greeting">Hello there,</p>
				<p class="message">
					<b>%s</b> is trying to find a time that works for everyone and proposed the slot below. One click is all it takes — no account needed.
				</p>

				<div class="proposal-box">
					<h3>%s</h3>
					<p>%s</p>
					<p class="slot">%s &ndash; %s</p>
				</div>

				<div style="text-align: center;">
					<a href="%s" class="btn btn-yes">Yes, I can make it</a>
					<a href="%s" class="btn btn-no">No, I can't</a>
				</div>

				<div style="text-align: center;">
					<a href="%s" class="alternate">Suggest a different time instead</a>
				</div>

				<p class="expiry">
					This response link is personal to you and expires on <b>%s</b>.
				</p>
			</div>

			<div class="footer">
				&copy; %d <span class="brand">PlanBuddy</span> — Less Back-and-Forth. More Meetings.
			</div>
		</div>
	</body>
	</html>
	`, organizerName, organizerName, title, description,
		windowStart.Format("3:04 PM, Jan 2 2006"), windowEnd.Format("3:04 PM, Jan 2 2006"),
		yesURL, noURL, alternateURL,
		expiresAt.Format("3:04 PM, Jan 2 2006"), time.Now().Year())

	return SendEmail(to, subject, body)
}
