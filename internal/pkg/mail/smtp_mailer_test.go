package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/StoreFox/internal/pkg/env"
)

func TestBuildMessage(t *testing.T) {
	msg := string(BuildMessage("shop@example.com", "jane@example.com", "Account suspended", "Hello Jane"))

	assert.Contains(t, msg, "From: shop@example.com\r\n")
	assert.Contains(t, msg, "To: jane@example.com\r\n")
	assert.Contains(t, msg, "Subject: Account suspended\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n\r\nHello Jane")
}

func TestConfigFromEnv(t *testing.T) {
	env.Env = map[string]string{
		"SMTP_HOST":   "mail.internal",
		"SMTP_PORT":   "2525",
		"SMTP_SENDER": "shop@example.com",
	}
	t.Cleanup(func() { env.Env = nil })

	cfg := ConfigFromEnv()
	assert.Equal(t, "mail.internal", cfg.Host)
	assert.Equal(t, "2525", cfg.Port)
	assert.Equal(t, "shop@example.com", cfg.Sender)
}

func TestConfigFromEnv_DefaultSender(t *testing.T) {
	env.Env = map[string]string{}
	t.Cleanup(func() { env.Env = nil })
	t.Setenv("SMTP_SENDER", "")

	assert.Equal(t, "no-reply@localhost", ConfigFromEnv().Sender)
}

func TestSend_RequiresRecipient(t *testing.T) {
	err := Config{Host: "localhost", Port: "25"}.Send("  ", "subject", "body")
	assert.ErrorIs(t, err, ErrNoRecipient)
}
