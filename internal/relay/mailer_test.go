package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func sampleMessage() Message {
	return Message{
		To:         "ana@example.cl",
		Subject:    "Formulario Pre-Ocupacional - Ana 12.345.678-5",
		HTML:       "<p>hola</p>",
		Attachment: Attachment{Filename: "Formulario_1_Completo.pdf", Content: []byte("%PDF-1.3 test")},
	}
}

func TestSMTPBuild(t *testing.T) {
	s := SMTPMailer{From: "noreply@almanova.cl", Domain: "almanova.cl"}
	msg, id, err := s.Build(sampleMessage())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !strings.HasSuffix(id, "@almanova.cl") {
		t.Errorf("Expected message id on domain, got %q", id)
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	raw := buf.String()
	for _, want := range []string{"<" + id + ">", "ana@example.cl", "application/pdf", "Formulario_1_Completo.pdf", "text/html"} {
		if !strings.Contains(raw, want) {
			t.Errorf("Expected %q in message", want)
		}
	}
}

func TestSMTPBuildRejectsBadAddress(t *testing.T) {
	s := SMTPMailer{From: "not an address"}
	if _, _, err := s.Build(sampleMessage()); err == nil {
		t.Error("Expected from address error")
	}
	s.From = "noreply@almanova.cl"
	m := sampleMessage()
	m.To = "@@"
	if _, _, err := s.Build(m); err == nil {
		t.Error("Expected to address error")
	}
}

// resendPayload mirrors what the Resend API receives; attachment content is
// a byte array.
type resendPayload struct {
	From        string   `json:"from"`
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	HTML        string   `json:"html"`
	Attachments []struct {
		Filename    string `json:"filename"`
		Content     []int  `json:"content"`
		ContentType string `json:"content_type"`
	} `json:"attachments"`
}

func TestResendMailer(t *testing.T) {
	var got resendPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"re_123"}`))
	}))
	defer srv.Close()

	m, err := NewResendMailer(srv.URL+"/", "re_key", "onboarding@resend.dev")
	if err != nil {
		t.Fatalf("NewResendMailer failed: %v", err)
	}
	id, err := m.Send(context.Background(), sampleMessage())
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if id != "re_123" || auth != "Bearer re_key" {
		t.Errorf("Unexpected id %q or auth %q", id, auth)
	}
	if got.From != "onboarding@resend.dev" || len(got.To) != 1 || got.To[0] != "ana@example.cl" || got.HTML != "<p>hola</p>" {
		t.Errorf("Unexpected payload %+v", got)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("Expected one attachment, got %d", len(got.Attachments))
	}
	att := got.Attachments[0]
	content := make([]byte, len(att.Content))
	for i, b := range att.Content {
		content[i] = byte(b)
	}
	if string(content) != "%PDF-1.3 test" || att.Filename != "Formulario_1_Completo.pdf" || att.ContentType != "application/pdf" {
		t.Errorf("Unexpected attachment %q %q %q", content, att.Filename, att.ContentType)
	}
}

func TestResendMailerErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		contentType   string
		body          string
		errorContains string
	}{
		{"api error", http.StatusUnprocessableEntity, "application/json", `{"name":"validation_error","message":"Invalid to field"}`, "Invalid to field"},
		{"plain error", http.StatusBadGateway, "text/plain", "upstream down", "Bad Gateway"},
		{"no id", http.StatusOK, "application/json", `{}`, "without id"},
		{"truncated body", http.StatusOK, "application/json", `{"id":"re_`, "unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			m, err := NewResendMailer(srv.URL, "k", "a@b.cl")
			if err != nil {
				t.Fatalf("NewResendMailer failed: %v", err)
			}
			_, err = m.Send(context.Background(), sampleMessage())
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error containing %q, got %v", tt.errorContains, err)
			}
		})
	}

	if _, err := NewResendMailer("http://[::1", "k", "a@b.cl"); err == nil {
		t.Error("Expected error for a malformed base URL")
	}
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	id, err := LogMailer{Log: zerolog.New(&buf)}.Send(context.Background(), sampleMessage())
	if err != nil || id == "" {
		t.Fatalf("Unexpected result %q %v", id, err)
	}
	if !strings.Contains(buf.String(), id) || !strings.Contains(buf.String(), "Formulario_1_Completo.pdf") {
		t.Errorf("Expected message details in log, got %q", buf.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (LogMailer{}).Send(ctx, sampleMessage()); err == nil {
		t.Error("Expected context error")
	}
}
