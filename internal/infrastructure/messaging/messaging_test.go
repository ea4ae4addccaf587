package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

func TestNewPublisherWithoutURLIsNoop(t *testing.T) {
	p, err := NewPublisher("", logging.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), SubjectObjectDeleted, "u1", map[string]string{"path": "a.jpg"}))
	p.Close()
}

func TestNewPublisherUnreachable(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:1", logging.NewNopLogger())
	assert.Error(t, err)
}
