package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailSubjectsComeFromTemplates(t *testing.T) {
	ctx := context.Background()
	mailer := &recordingMailer{}
	email := NewEmailService(mailer, "http://localhost:3000")

	require.NoError(t, email.SendOfferReceived(ctx, "founder@example.com", "Ivy", "Acme", decimal.NewFromInt(5000)))
	require.NoError(t, email.SendNewMessage(ctx, "bob@example.com", "Alice Smith"))
	require.NoError(t, email.SendWelcome(ctx, "new@example.com", "Jane"))

	assert.Equal(t, []string{
		"New Investment Offer for Acme",
		"New Message from Alice Smith",
		"Welcome to Startup Investment Platform!",
	}, mailer.subjects())
	assert.Error(t, email.SendWelcome(ctx, "", "Nobody"))
}

func TestEmailBodyEscapesDecodedText(t *testing.T) {
	mailer := &recordingMailer{}
	email := NewEmailService(mailer, "http://localhost:3000")

	require.NoError(t, email.SendOfferAccepted(context.Background(), "inv@example.com", "<script>Acme", decimal.NewFromInt(1)))
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Body, "&lt;script&gt;Acme")
	assert.NotContains(t, mailer.sent[0].Body, "<script>")
}

func TestBuildMessageKeepsHeadersOnOneLine(t *testing.T) {
	mailer := &recordingMailer{}
	email := NewEmailService(mailer, "http://localhost:3000")
	require.NoError(t, email.SendOfferReceived(context.Background(), "founder@example.com", "Ivy",
		"Acme\r\nBcc: victim@evil.test", decimal.NewFromInt(5000)))
	require.Len(t, mailer.sent, 1)

	raw := string(buildMessage("noreply@startupplatform.io", "founder@example.com", mailer.sent[0].Subject, "<p>hi</p>"))
	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "<p>hi</p>", body)

	lines := strings.Split(head, "\r\n")
	require.Len(t, lines, 5)
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(strings.ToLower(line), "bcc:"), line)
	}
	assert.Equal(t, "Subject: New Investment Offer for Acme Bcc: victim@evil.test", lines[2])
}

func TestBuildMessageEncodesNonASCIISubject(t *testing.T) {
	raw := string(buildMessage("a@example.com", "b@example.com", "Café", ""))
	assert.Contains(t, raw, "Subject: =?utf-8?q?Caf=C3=A9?=\r\n")
}

func TestSMTPMailerRejectsMultilineRecipient(t *testing.T) {
	m := &SMTPMailer{Host: "127.0.0.1", Port: 1, From: "noreply@startupplatform.io"}
	err := m.Send(context.Background(), "a@example.com\r\nBcc: victim@evil.test", "hi", "<p>hi</p>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errPermanent))
}
