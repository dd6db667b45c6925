package relay

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

const pdfContentType = mail.ContentType("application/pdf")

// SMTPMailer delivers through an SMTP server with opportunistic TLS.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Domain is the right-hand side of generated Message-IDs.
	Domain string
}

// Build assembles the MIME message and returns it with its Message-ID.
func (s SMTPMailer) Build(m Message) (*mail.Msg, string, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.From); err != nil {
		return nil, "", fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, "", fmt.Errorf("to address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	msg.AttachReadSeeker(m.Attachment.Filename, bytes.NewReader(m.Attachment.Content),
		mail.WithFileContentType(pdfContentType))

	domain := s.Domain
	if domain == "" {
		domain = "preocupacional.local"
	}
	id := uuid.NewString() + "@" + domain
	msg.SetMessageIDWithValue(id)
	return msg, id, nil
}

// Send dials the server, sends m and hangs up.
func (s SMTPMailer) Send(ctx context.Context, m Message) (string, error) {
	msg, id, err := s.Build(m)
	if err != nil {
		return "", err
	}

	opts := []mail.Option{
		mail.WithPort(s.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Username),
			mail.WithPassword(s.Password),
		)
	}
	client, err := mail.NewClient(s.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}
