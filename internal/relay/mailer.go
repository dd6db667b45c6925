package relay

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Attachment is a file sent with a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outgoing email with a single PDF attachment.
type Message struct {
	To         string
	Subject    string
	HTML       string
	Attachment Attachment
}

// Mailer sends a message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, m Message) (string, error)
}

// LogMailer only logs messages. It is meant for local development.
type LogMailer struct {
	Log zerolog.Logger
}

func (l LogMailer) Send(ctx context.Context, m Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	l.Log.Info().
		Str("message_id", id).
		Str("to", m.To).
		Str("subject", m.Subject).
		Str("attachment", m.Attachment.Filename).
		Int("attachment_bytes", len(m.Attachment.Content)).
		Msg("mail not sent, log backend")
	return id, nil
}
