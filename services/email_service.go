package services

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/collegebuddy/api/services/mail"
)

// EmailService renders and sends transactional emails
type EmailService struct {
	mailer mail.Mailer
	appURL string
}

// NewEmailService creates a new email service instance
func NewEmailService(mailer mail.Mailer, appURL string) *EmailService {
	return &EmailService{
		mailer: mailer,
		appURL: strings.TrimSuffix(appURL, "/"),
	}
}

// SendVerificationEmail sends the link that confirms an email address
func (e *EmailService) SendVerificationEmail(ctx context.Context, toEmail, userName, token string, ttl time.Duration) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", e.appURL, url.QueryEscape(token))
	body := e.layout("Verify your email", userName,
		"Thanks for joining College Buddy. Confirm your email address to activate your account.",
		link, "Verify Email",
		fmt.Sprintf("This link expires in %s.", humanize(ttl)))

	return e.mailer.Send(ctx, mail.Message{
		To:      toEmail,
		ToName:  userName,
		Subject: "Verify your email - College Buddy",
		HTML:    body,
		Text:    "Verify your email: " + link,
	})
}

// SendOTPEmail sends a one time code
func (e *EmailService) SendOTPEmail(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	body := e.layout("Your verification code", "",
		fmt.Sprintf(`Use the code <strong style="font-size:24px;letter-spacing:4px;">%s</strong> to verify your email.`, html.EscapeString(code)),
		"", "",
		fmt.Sprintf("The code expires in %s. Never share it with anyone.", humanize(ttl)))

	return e.mailer.Send(ctx, mail.Message{
		To:      toEmail,
		Subject: "Your College Buddy code: " + code,
		HTML:    body,
		Text:    "Your College Buddy verification code is " + code,
	})
}

// SendPasswordResetEmail sends a password reset email to the user
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, userName, token string, ttl time.Duration) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", e.appURL, url.QueryEscape(token))
	body := e.layout("Reset your password", userName,
		"We received a request to reset the password for your College Buddy account.",
		link, "Reset Password",
		fmt.Sprintf("This link expires in %s. If you didn't request a reset you can ignore this email.", humanize(ttl)))

	return e.mailer.Send(ctx, mail.Message{
		To:      toEmail,
		ToName:  userName,
		Subject: "Reset your password - College Buddy",
		HTML:    body,
		Text:    "Reset your password: " + link,
	})
}

func (e *EmailService) layout(title, userName, intro, link, action, warning string) string {
	if userName == "" {
		userName = "there"
	}

	button := ""
	if link != "" {
		button = fmt.Sprintf(`<p style="text-align:center;"><a href="%[1]s" class="button">%[2]s</a></p>
        <p>If the button doesn't work, copy this link into your browser:</p>
        <div class="link-text">%[1]s</div>`, html.EscapeString(link), action)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%[1]s - College Buddy</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5; }
        .container { background-color: #ffffff; border-radius: 8px; padding: 40px; }
        h2 { color: #1d4ed8; margin-top: 0; }
        .button { display: inline-block; background-color: #1d4ed8; color: #ffffff !important; padding: 14px 28px; text-decoration: none; border-radius: 6px; font-weight: 600; }
        .link-text { word-break: break-all; color: #666; font-size: 12px; background-color: #f5f5f5; padding: 10px; border-radius: 4px; }
        .warning { background-color: #fff3cd; border: 1px solid #ffc107; border-radius: 4px; padding: 12px; margin-top: 20px; font-size: 13px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>%[1]s</h2>
        <p>Hello %[2]s,</p>
        <p>%[3]s</p>
        %[4]s
        <div class="warning">%[5]s</div>
    </div>
</body>
</html>`, title, html.EscapeString(userName), intro, button, warning)
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
