// Package email delivers account emails over SMTP.
package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Mailer sends account related emails
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	// UseTLS dials with implicit TLS (port 465). Otherwise STARTTLS is used
	// when the server offers it.
	UseTLS      bool
	DialTimeout time.Duration
}

// SMTPMailer implements Mailer
type SMTPMailer struct {
	config SMTPConfig
	logger zerolog.Logger
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a new SMTPMailer. With an empty host, emails are only logged.
func NewSMTPMailer(config SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	if config.DialTimeout <= 0 {
		config.DialTimeout = 10 * time.Second
	}
	return &SMTPMailer{
		config: config,
		logger: logger,
	}
}

// PasswordResetSubject is the subject of the reset email
const PasswordResetSubject = "Password reset token"

// SendPasswordReset emails the link used to set a new password
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string) error {
	if m.config.Host == "" {
		m.logger.Warn().
			Str("toEmail", toEmail).
			Str("resetURL", resetURL).
			Msg("SMTP not configured - password reset email not sent. Use the URL above for testing.")
		return nil
	}

	body := "You are receiving this email because you (or someone else) has requested the reset of a password. " +
		"Please make a PUT request to: \r\n\r\n" + resetURL + "\r\n"

	msg := m.buildMessage(toEmail, toName, PasswordResetSubject, body)
	if err := m.send(ctx, toEmail, msg); err != nil {
		m.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send password reset email")
		return err
	}

	m.logger.Info().Str("toEmail", toEmail).Msg("Password reset email sent")
	return nil
}

func (m *SMTPMailer) buildMessage(toEmail, toName, subject, body string) []byte {
	from := mail.Address{Name: m.config.FromName, Address: m.config.FromEmail}
	to := mail.Address{Name: toName, Address: toEmail}

	headers := [][2]string{
		{"From", from.String()},
		{"To", to.String()},
		{"Subject", subject},
		{"Date", time.Now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	}

	var buf bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h[0], h[1])
	}
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

func (m *SMTPMailer) send(ctx context.Context, toEmail string, msg []byte) error {
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	tlsConfig := &tls.Config{ServerName: m.config.Host}
	dialer := &net.Dialer{Timeout: m.config.DialTimeout}

	var conn net.Conn
	var err error
	if m.config.UseTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !m.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("STARTTLS failed: %w", err)
			}
		}
	}

	if m.config.Username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}
	}

	if err := client.Mail(m.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
