package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendReviewDecision(toEmail, toName, classTitle, status string) error
	SendReviewFeedback(toEmail, toName, classTitle, feedback string) error
	SendPaymentReceipt(toEmail, classTitle string, amountCents int64, currency string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// SendReviewDecision tells an instructor that their class was approved or denied.
func (s *EmailServiceImpl) SendReviewDecision(toEmail, toName, classTitle, status string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("classTitle", classTitle).
			Str("status", status).
			Msg("SMTP credentials not configured - review decision email not sent.")
		return nil
	}

	decision := strings.ToLower(status)
	subject := fmt.Sprintf("Your class %q was %s", classTitle, decision)
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>Your class <strong>%s</strong> has been <strong>%s</strong> by the review team.</p>
				<p>You can read any feedback from the instructor dashboard.</p>
				<p>Best regards,<br>%s</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), html.EscapeString(classTitle), html.EscapeString(decision), html.EscapeString(s.config.FromName))

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendReviewFeedback forwards reviewer feedback to the instructor.
func (s *EmailServiceImpl) SendReviewFeedback(toEmail, toName, classTitle, feedback string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("classTitle", classTitle).
			Msg("SMTP credentials not configured - feedback email not sent.")
		return nil
	}

	subject := fmt.Sprintf("New feedback on %q", classTitle)
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Hello %s,</p>
				<p>The review team left feedback on <strong>%s</strong>:</p>
				<blockquote>%s</blockquote>
				<p>Best regards,<br>%s</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(toName), html.EscapeString(classTitle), html.EscapeString(feedback), html.EscapeString(s.config.FromName))

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendPaymentReceipt confirms a recorded payment to the student.
func (s *EmailServiceImpl) SendPaymentReceipt(toEmail, classTitle string, amountCents int64, currency string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Int64("amount", amountCents).
			Msg("SMTP credentials not configured - payment receipt not sent.")
		return nil
	}

	subject := "Payment received"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Thank you for your payment of <strong>%d.%02d %s</strong> for <strong>%s</strong>.</p>
				<p>See you in class!<br>%s</p>
			</div>
		</body>
		</html>
	`, amountCents/100, amountCents%100, strings.ToUpper(currency), html.EscapeString(classTitle), html.EscapeString(s.config.FromName))

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n" + htmlBody)

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(msg.String())); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}
