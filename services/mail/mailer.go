package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/collegebuddy/api/config"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	senderName       = "College Buddy"
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

var ErrDelivery = errors.New("email delivery failed")

// Message is a single outgoing email
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the mailer named by EMAIL_PROVIDER, falling back to the log mailer when
// the chosen provider has no credentials
func New(env *config.EnviornmentVariable) Mailer {
	switch env.EMAIL_PROVIDER {
	case "sendgrid":
		if env.SENDGRID_API_KEY != "" {
			return NewSendGridMailer(env.SENDGRID_API_KEY, env.EMAIL_FROM, "")
		}
	case "smtp":
		if env.SMTP_USERNAME != "" && env.SMTP_PASSWORD != "" {
			return &SMTPMailer{
				Host:     env.SMTP_HOST,
				Port:     env.SMTP_PORT,
				Username: env.SMTP_USERNAME,
				Password: env.SMTP_PASSWORD,
				From:     env.EMAIL_FROM,
			}
		}
	}
	logger.L().Warn("email provider not configured, emails will only be logged", zap.String("provider", env.EMAIL_PROVIDER))
	return LogMailer{}
}

// SMTPMailer sends through an SMTP server with STARTTLS
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Send delivers one message
func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", senderName, m.From),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	body := strings.Join(headers, "\r\n") + "\r\n\r\n" + msg.HTML

	conn, err := smtp.Dial(fmt.Sprintf("%s:%d", m.Host, m.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(m.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return conn.Quit()
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	key  string
	from *sgmail.Email
	host string
}

// NewSendGridMailer creates a SendGrid mailer. An empty host uses the public API.
func NewSendGridMailer(key, from, host string) *SendGridMailer {
	if host == "" {
		host = sendgridHost
	}
	return &SendGridMailer{key: key, from: sgmail.NewEmail(senderName, from), host: host}
}

func (m *SendGridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	if msg.Text != "" {
		v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	return v3
}

// Send delivers one message
func (m *SendGridMailer) Send(_ context.Context, msg Message) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d: %s", ErrDelivery, res.StatusCode, res.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	logger.L().Info("email not sent, no provider configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
