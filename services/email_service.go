package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/alexsergeyev/skillforge/config"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	appURL   string
}

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnvironmentVariable) *EmailService {
	port := 587
	if p, err := strconv.Atoi(env.SMTP_PORT); err == nil {
		port = p
	}

	from := env.EMAIL_FROM
	if from == "" {
		from = "noreply@skillforge.app"
	}

	return &EmailService{
		host:     env.SMTP_HOST,
		port:     port,
		username: env.SMTP_USER,
		password: env.SMTP_PASSWORD,
		from:     from,
		appURL:   env.APP_BASE_URL,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.host != "" && e.username != "" && e.password != ""
}

// SendCourseUpdateEmail notifies subscribers that course materials changed.
// All recipients go out on a single message; they ride the envelope only,
// so addresses are never leaked across subscribers.
func (e *EmailService) SendCourseUpdateEmail(toEmails []string, courseTitle string) (sent int, err error) {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Skipping course update email for %q (%d recipients)", courseTitle, len(toEmails))
		return 0, fmt.Errorf("SMTP not configured")
	}
	if len(toEmails) == 0 {
		return 0, nil
	}

	subject := fmt.Sprintf("Course updated: %s", courseTitle)
	body := e.buildCourseUpdateEmailBody(courseTitle)

	if err := e.sendEmail(toEmails, "Undisclosed recipients:;", subject, body); err != nil {
		log.Printf("Failed to send course update email for %q: %v", courseTitle, err)
		return 0, err
	}

	return len(toEmails), nil
}

// SendOperatorSummary delivers a plain operational notice to a single
// operator address, such as the daily inactivity sweep report.
func (e *EmailService) SendOperatorSummary(to, subject, text string) error {
	if !e.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}
	if to == "" {
		return fmt.Errorf("no operator address configured")
	}

	body := fmt.Sprintf("<html><body><p>%s</p><p>— SkillForge</p></body></html>", text)
	return e.sendEmail([]string{to}, to, subject, body)
}

// buildCourseUpdateEmailBody creates the HTML email body for course update notifications
func (e *EmailService) buildCourseUpdateEmailBody(courseTitle string) string {
	courseLink := fmt.Sprintf("%s/courses", e.appURL)

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Course Updated - SkillForge</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: #ffffff;
            border-radius: 8px;
            padding: 40px;
            box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);
        }
        .logo {
            text-align: center;
            margin-bottom: 30px;
            padding-bottom: 20px;
            border-bottom: 2px solid #1a3c6e;
        }
        .logo h1 {
            color: #1a3c6e;
            font-size: 28px;
            margin: 0;
        }
        h2 {
            color: #1a3c6e;
            margin-top: 0;
        }
        .button {
            display: inline-block;
            background-color: #1a3c6e;
            color: #ffffff !important;
            padding: 14px 28px;
            text-decoration: none;
            border-radius: 6px;
            font-weight: 600;
            margin: 20px 0;
        }
        .footer {
            margin-top: 30px;
            padding-top: 20px;
            border-top: 1px solid #eee;
            font-size: 12px;
            color: #666;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">
            <h1>SkillForge</h1>
        </div>

        <h2>Course Updated</h2>

        <p>Hello,</p>

        <p>The course <strong>%s</strong> you are subscribed to has new or updated materials. Head over to the platform to check out what changed:</p>

        <p style="text-align: center;">
            <a href="%s" class="button">View Course</a>
        </p>

        <div class="footer">
            <p><strong>SkillForge</strong></p>
            <p>You receive this email because you subscribed to course updates.</p>
        </div>
    </div>
</body>
</html>`, courseTitle, courseLink)
}

// sendEmail sends one email using SMTP with TLS. Every address in
// recipients gets an envelope RCPT; toHeader is what appears in the
// visible To header.
func (e *EmailService) sendEmail(recipients []string, toHeader, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("SkillForge <%s>", e.from)
	headers["To"] = toHeader
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	for _, rcpt := range recipients {
		if err := conn.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()
	return nil
}
