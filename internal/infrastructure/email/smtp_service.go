package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"novelpedia-backend/internal/config"
	"novelpedia-backend/pkg/logger"
)

var resetTemplate = template.Must(template.New("reset").Parse(`<p>Hello,</p>
<p>Someone asked to reset the password of your Novelpedia account.</p>
<p><a href="{{.Link}}">Choose a new password</a></p>
<p>The link is valid for {{.ExpiresIn}}. If this was not you, ignore this email.</p>`))

type resetData struct {
	Link      string
	ExpiresIn string
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMessenger delivers account emails over SMTP.
type SMTPMessenger struct {
	addr        string
	from        string
	auth        smtp.Auth
	frontendURL string
	resetTTL    time.Duration
	send        sendFunc
}

func NewSMTPMessenger(cfg config.EmailConfig, frontendURL string) *SMTPMessenger {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPMessenger{
		addr:        fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from:        cfg.From,
		auth:        auth,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		resetTTL:    cfg.ResetTTL,
		send:        smtp.SendMail,
	}
}

// SendPasswordReset mails a link to <frontend>/reset-password?token=...
func (s *SMTPMessenger) SendPasswordReset(ctx context.Context, to, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := resetTemplate.Execute(&body, resetData{
		Link:      s.frontendURL + "/reset-password?token=" + url.QueryEscape(token),
		ExpiresIn: s.resetTTL.String(),
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	msg := buildMessage(s.from, to, "Reset your Novelpedia password", body.String())
	if err := s.send(s.addr, s.auth, s.from, []string{to}, msg); err != nil {
		logger.Warn("failed to send email", err, map[string]interface{}{
			"to":        to,
			"smtp_addr": s.addr,
		})
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, html))
}
