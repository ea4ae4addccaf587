package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withValidConfig(t *testing.T) {
	t.Helper()
	Load()
	JWTSecret = "0123456789abcdef0123456789abcdef"
	StorageDriver = "memory"
	t.Cleanup(Load)
}

func TestValidateDefaults(t *testing.T) {
	withValidConfig(t)
	require.NoError(t, Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func()
		want   string
	}{
		{"short secret", func() { JWTSecret = "short" }, "JWTSecret"},
		{"unknown db driver", func() { DBDriver = "mysql" }, "DBDriver"},
		{"unknown storage driver", func() { StorageDriver = "gcs" }, "StorageDriver"},
		{"zero concurrency", func() { DeleteConcurrency = 0 }, "DeleteConcurrency"},
		{"oversized page", func() { StoragePageSize = 5000 }, "StoragePageSize"},
		{"zero call timeout", func() { StorageCallTimeout = 0 }, "StorageCallTimeout"},
		{"bad alert address", func() { AlertEmailTo = "not-an-email" }, "AlertEmailTo"},
		{"s3 without keys", func() { StorageDriver = "s3" }, "STORAGE_ACCESS_KEY"},
		{"admin email only", func() { AdminEmail = "a@b.c"; AdminPassword = "" }, "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withValidConfig(t)
			tt.mutate()
			err := Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("OCTOPUS_TEST_DURATION", "3s")
	t.Setenv("OCTOPUS_TEST_LIST", " a, b ,,c ")
	t.Setenv("OCTOPUS_TEST_BAD_INT", "nope")

	assert.Equal(t, 3*time.Second, getEnvDuration("OCTOPUS_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, getEnvList("OCTOPUS_TEST_LIST", nil))
	assert.Equal(t, 7, getEnvInt("OCTOPUS_TEST_BAD_INT", 7))
	assert.Equal(t, "fallback", getEnvString("OCTOPUS_TEST_UNSET", "fallback"))
}
