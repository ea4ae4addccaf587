package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

// NATSPublisher publishes events as core NATS messages.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *logging.ChanneledLogger
}

// NewPublisher connects to url, or returns a NoopPublisher when url is empty.
func NewPublisher(url string, logger *logging.ChanneledLogger) (Publisher, error) {
	if url == "" {
		logger.System().Info("Event publishing disabled", "reason", "NATS_URL not set")
		return NoopPublisher{}, nil
	}

	conn, err := nats.Connect(url,
		nats.Name("octopus-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.System().Warn("NATS disconnected", "error", err.Error())
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.System().Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	logger.Startup().Info("Connected to NATS", "url", url)
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, actorID string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(Event{
		ID:         uuid.NewString(),
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		ActorID:    actorID,
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	p.logger.System().Debug("Event published", "subject", subject)
	return nil
}

// Close drains pending messages before closing the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
