package templates

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIntegrityAlertEscapesPaths(t *testing.T) {
	html, err := RenderIntegrityAlert(IntegrityAlertProps{
		MissingPaths: []string{"blog/<script>.jpg"},
		LinkedCount:  3,
		GeneratedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "blog/&lt;script&gt;.jpg")
	assert.Contains(t, html, "Linked: 3")
	assert.Contains(t, html, "2024-01-02 03:04:05 UTC")
}

func TestRenderIntegrityAlertTruncates(t *testing.T) {
	paths := make([]string, maxListedPaths+7)
	for i := range paths {
		paths[i] = fmt.Sprintf("media/%d.png", i)
	}
	html, err := RenderIntegrityAlert(IntegrityAlertProps{MissingPaths: paths})
	require.NoError(t, err)
	assert.Contains(t, html, "and 7 more.")
	assert.NotContains(t, html, fmt.Sprintf("media/%d.png", maxListedPaths))
}
