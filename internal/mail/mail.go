// Package mail delivers outgoing email such as confirmation codes.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. Implementations return every delivery error.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// render encodes msg as an RFC 5322 message with a fresh Message-ID.
func render(from string, msg Message, now time.Time) ([]byte, error) {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	domain := "localhost"
	if at := strings.LastIndexByte(from, '@'); at >= 0 {
		domain = strings.TrimSuffix(from[at+1:], ">")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes(), nil
}

// FileSender writes each message as an .eml file into a directory.
// Suitable for development where no SMTP relay is available.
type FileSender struct {
	dir  string
	from string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileSender creates the directory if it does not exist.
func NewFileSender(dir, from string) (*FileSender, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create mail directory: %w", err)
	}
	return &FileSender{dir: dir, from: from, now: time.Now}, nil
}

// Send writes the message to <dir>/<timestamp>-<uuid>.eml.
func (s *FileSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now()
	raw, err := render(s.from, msg, now)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("%s-%s.eml", now.UTC().Format("20060102T150405.000000"), uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o600); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Dir returns the output directory.
func (s *FileSender) Dir() string {
	return s.dir
}
