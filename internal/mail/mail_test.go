package mail

import (
	"context"
	"errors"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSender_WritesEML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outbox")
	s, err := NewFileSender(dir, "YaMDb <noreply@yamdb.local>")
	require.NoError(t, err)

	err = s.Send(context.Background(), Message{
		To:      "alice@example.com",
		Subject: "Confirmation code",
		Body:    "Your code: ABC\nThanks",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".eml"))

	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "To: alice@example.com\r\n")
	assert.Contains(t, content, "Subject: Confirmation code\r\n")
	assert.Contains(t, content, "@yamdb.local>\r\n")
	assert.Contains(t, content, "Your code: ABC\r\nThanks")
}

func TestFileSender_InvalidRecipient(t *testing.T) {
	s, err := NewFileSender(t.TempDir(), "noreply@yamdb.local")
	require.NoError(t, err)

	assert.Error(t, s.Send(context.Background(), Message{To: "not an address"}))
}

func TestFileSender_CanceledContext(t *testing.T) {
	s, err := NewFileSender(t.TempDir(), "noreply@yamdb.local")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: "a@example.com"}), context.Canceled)
}

func TestSMTPSender_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 2525, Username: "u", Password: "p", From: "noreply@example.com"})
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo = addr, from, to
		assert.Contains(t, string(msg), "Subject: hi")
		return nil
	}

	require.NoError(t, s.Send(context.Background(), Message{To: "bob@example.com", Subject: "hi", Body: "x"}))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"bob@example.com"}, gotTo)
}

func TestSMTPSender_PropagatesErrors(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := s.Send(context.Background(), Message{To: "bob@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestRender_Date(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err := render("noreply@example.com", Message{To: "a@example.com"}, now)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Date: Fri, 01 Mar 2024 10:00:00 +0000")
}
