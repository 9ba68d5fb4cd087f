package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
)

// SMTPNotifier sends plain-text alert and recovery emails through a plain
// SMTP relay.
type SMTPNotifier struct {
	cfg    *Config
	logger logging.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg *Config, logger logging.Logger) (*SMTPNotifier, error) {
	if logger == nil {
		return nil, errors.New("notifier: nil logger")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &SMTPNotifier{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "notifier"}),
		send:   smtp.SendMail,
	}, nil
}

// Configured reports whether SMTP credentials are present. Without them
// delivery attempts fail fast instead of timing out against a relay.
func (n *SMTPNotifier) Configured() bool {
	return n.cfg.Host != "" && n.cfg.Username != ""
}

func (n *SMTPNotifier) SendAlertEmail(ctx context.Context, to, siteName, siteURL string, issues []model.Issue) error {
	subject := alertSubject(siteName, issues)
	body := alertBody(siteName, siteURL, issues)
	return n.deliver(ctx, to, subject, body)
}

func (n *SMTPNotifier) SendRecoveryEmail(ctx context.Context, to, siteName, siteURL string) error {
	subject := fmt.Sprintf("%s is back to normal", siteName)
	body := fmt.Sprintf(
		"Good news! %s (%s) is back to normal. All previously reported issues have been resolved.\n\nWe'll continue monitoring and let you know if anything comes up.\n",
		siteName, siteURL)
	return n.deliver(ctx, to, subject, body)
}

func (n *SMTPNotifier) deliver(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !n.Configured() {
		n.logger.Warn("smtp not configured, dropping notification",
			logging.Field{Key: "to", Value: to},
			logging.Field{Key: "subject", Value: subject})
		return errors.New("notifier: smtp not configured")
	}

	msg := buildMessage(n.cfg.FromName, n.cfg.FromEmail, to, subject, body)
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	if err := n.send(addr, auth, n.cfg.FromEmail, []string{to}, msg); err != nil {
		n.logger.Error("email delivery failed",
			logging.Field{Key: "to", Value: to},
			logging.Field{Key: "error", Value: err.Error()})
		return fmt.Errorf("send mail: %w", err)
	}

	n.logger.Info("email sent",
		logging.Field{Key: "to", Value: to},
		logging.Field{Key: "subject", Value: subject})
	return nil
}

// alertSubject ranks the subject line by the worst severity found, the same
// urgency ladder the alert body follows.
func alertSubject(siteName string, issues []model.Issue) string {
	var critical, errorCount, warning int
	for _, is := range issues {
		switch is.Severity {
		case model.SeverityCritical:
			critical++
		case model.SeverityError:
			errorCount++
		case model.SeverityWarning:
			warning++
		}
	}
	switch {
	case critical > 0:
		return fmt.Sprintf("URGENT: %s is having critical problems", siteName)
	case errorCount > 0:
		return fmt.Sprintf("Problems found on %s", siteName)
	default:
		return fmt.Sprintf("%s health check: %d warning(s)", siteName, warning)
	}
}

func alertBody(siteName, siteURL string, issues []model.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SiteGuard Alert\n\nWe found problems with %s (%s):\n\n", siteName, siteURL)
	for _, is := range issues {
		fmt.Fprintf(&b, "[%s] %s\n   %s\n\n", strings.ToUpper(string(is.Severity)), is.Title, is.Description)
	}
	b.WriteString("We recommend checking your website as soon as possible.\n\n---\n")
	fmt.Fprintf(&b, "You're receiving this because you set up monitoring for %s on SiteGuard.\n", siteURL)
	return b.String()
}

func buildMessage(fromName, fromEmail, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %q <%s>\r\n", fromName, fromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
