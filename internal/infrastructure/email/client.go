// Package email provides the email client for sending operational alerts.
package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/resendlabs/resend-go"

	"github.com/Diampra/octopus-server/internal/infrastructure/email/templates"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/pkg/config"
)

// IntegrityAlert is the content of a missing-files notification.
type IntegrityAlert struct {
	MissingPaths []string
	OrphanCount  int
	LinkedCount  int
	GeneratedAt  time.Time
}

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendIntegrityAlert(alert IntegrityAlert) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	to        []string
}

// NewService returns a Resend-backed service, or a no-op service when
// RESEND_API_KEY or ALERT_EMAIL_TO is not configured.
func NewService(logger *logging.ChanneledLogger) Service {
	if config.ResendAPIKey == "" || config.AlertEmailTo == "" {
		logger.System().Info("Email alerts disabled", "reason", "RESEND_API_KEY or ALERT_EMAIL_TO not set")
		return NoopService{}
	}

	var to []string
	for _, addr := range strings.Split(config.AlertEmailTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}

	return &ResendClient{
		client:    resend.NewClient(config.ResendAPIKey),
		fromEmail: config.AlertEmailFrom,
		to:        to,
	}
}

// SendIntegrityAlert composes and sends the missing-files alert.
func (c *ResendClient) SendIntegrityAlert(alert IntegrityAlert) error {
	html, err := templates.RenderIntegrityAlert(templates.IntegrityAlertProps{
		MissingPaths: alert.MissingPaths,
		OrphanCount:  alert.OrphanCount,
		LinkedCount:  alert.LinkedCount,
		GeneratedAt:  alert.GeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to render integrity alert: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    c.fromEmail,
		To:      c.to,
		Subject: fmt.Sprintf("Storage audit: %d missing file(s)", len(alert.MissingPaths)),
		Html:    html,
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send integrity alert via Resend: %w", err)
	}
	return nil
}

// NoopService drops every email.
type NoopService struct{}

func (NoopService) SendIntegrityAlert(IntegrityAlert) error { return nil }
