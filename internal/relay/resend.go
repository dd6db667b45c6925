package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendMailer delivers through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer returns a mailer talking to baseURL with a bounded client
// timeout.
func NewResendMailer(baseURL, apiKey, from string) (*ResendMailer, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("resend base url: %w", err)
	}
	client := resend.NewCustomClient(&http.Client{Timeout: 30 * time.Second}, apiKey)
	client.BaseURL = u
	return &ResendMailer{client: client, from: from}, nil
}

func (r *ResendMailer) Send(ctx context.Context, m Message) (string, error) {
	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{m.To},
		Subject: m.Subject,
		Html:    m.HTML,
		Attachments: []*resend.Attachment{{
			Filename:    m.Attachment.Filename,
			Content:     m.Attachment.Content,
			ContentType: "application/pdf",
		}},
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	if sent.Id == "" {
		return "", fmt.Errorf("resend: response without id")
	}
	return sent.Id, nil
}
