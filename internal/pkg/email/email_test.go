package email

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSendWithoutCredentialsOnlyLogs(t *testing.T) {
	buf := &bytes.Buffer{}
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.invalid", Port: 25}, zerolog.New(buf))

	assert.False(t, m.Configured())
	err := m.Send(context.Background(), Message{To: "parent@example.com", Subject: "Absence"})
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "email not sent")
	assert.Contains(t, buf.String(), "parent@example.com")
}

func TestBuildMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{FromName: "Agora", FromEmail: "no-reply@agora.app"}, zerolog.Nop())

	raw := string(m.buildMessage(Message{To: "a@b.c", ToName: "Anna Bianchi", Subject: "Hi", HTML: "<p>x</p>"}))

	assert.True(t, strings.HasPrefix(raw, "Content-Type: text/html"))
	assert.Contains(t, raw, "To: Anna Bianchi <a@b.c>\r\n")
	assert.Contains(t, raw, "From: Agora <no-reply@agora.app>\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}

func TestSendHonoursCancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.invalid", Port: 25, Username: "u", Password: "p"}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, Message{To: "x@y.z"}), context.Canceled)
}
