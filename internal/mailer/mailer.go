// Package mailer sends contact notifications through an SMTP relay.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// ErrNoCredentials is returned by Send when no SMTP password is configured.
var ErrNoCredentials = errors.New("mailer: smtp password not configured")

// Message is one outbound HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string // optional
}

// Receipt is what the relay accepted.
type Receipt struct {
	MessageID string
	Accepted  []string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) (*Receipt, error)
}

// SMTPConfig describes the relay account.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	Timeout  time.Duration
}

// SMTPSender opens one connection per message; it never retries or queues.
type SMTPSender struct {
	cfg SMTPConfig
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTPSender. A missing password is not an error
// here; it surfaces from Send.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg}
}

// Send delivers msg. Transport errors are returned as-is.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if s.cfg.Password == "" {
		return nil, ErrNoCredentials
	}

	m, messageID, err := s.build(msg)
	if err != nil {
		return nil, err
	}

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(s.cfg.Timeout),
	)
	if err != nil {
		return nil, err
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return nil, err
	}

	slog.Info("message sent", "message_id", messageID, "to", msg.To)
	return &Receipt{MessageID: messageID, Accepted: []string{msg.To}}, nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, string, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.Username); err != nil {
		return nil, "", fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, "", fmt.Errorf("recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		// Reply-To is a convenience; an address the relay cannot parse is
		// dropped rather than losing the message.
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			slog.Warn("dropping unparseable reply-to", "reply_to", msg.ReplyTo, "error", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	messageID := uuid.NewString() + "@" + s.cfg.Host
	m.SetMessageIDWithValue(messageID)
	m.SetDate()
	return m, "<" + messageID + ">", nil
}
