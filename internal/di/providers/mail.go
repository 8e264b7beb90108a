package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/yamdb/yamdb-server/internal/config"
	"github.com/yamdb/yamdb-server/internal/logger"
	"github.com/yamdb/yamdb-server/internal/mail"
)

// ProvideMailer provides the configured mail backend.
func ProvideMailer(i do.Injector) (mail.Sender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Mail.Backend {
	case config.MailBackendSMTP:
		log.Info("Mail backend configured", "backend", "smtp", "host", cfg.Mail.SMTPHost, "port", cfg.Mail.SMTPPort)
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
		}), nil
	case config.MailBackendFile:
		log.Info("Mail backend configured", "backend", "file", "path", cfg.Mail.FilePath)
		return mail.NewFileSender(cfg.Mail.FilePath, cfg.Mail.From)
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.Mail.Backend)
	}
}
