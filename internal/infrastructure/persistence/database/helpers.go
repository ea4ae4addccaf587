// Package database provides database helper functions
package database

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/pkg/config"
)

// GetSlowQueryThreshold returns the configured slow query threshold
func GetSlowQueryThreshold() time.Duration {
	return config.SlowQueryThreshold
}

// CheckAndLogSlowQuery checks if a query duration exceeds threshold
// and logs it using the slow query channel if it does
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	if logger == nil {
		return
	}
	threshold := GetSlowQueryThreshold()
	// Full-collection scans used by the storage audit get more headroom.
	if strings.HasPrefix(strings.TrimSpace(query), "SELECT") && !strings.Contains(query, "WHERE") {
		threshold *= 3
	}
	if threshold > 0 && duration > threshold {
		logger.LogSlowQuery(query, duration)
	}
}

// FormatTime stores timestamps as RFC3339 text so every driver compares them the same way.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// FormatNullTime is FormatTime for optional values.
func FormatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

// ParseTime reads a timestamp written by FormatTime. Unparseable values yield the zero time.
func ParseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// ParseNullTime is ParseTime for nullable columns.
func ParseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := ParseTime(ns.String)
	return &t
}

// NullString maps an optional string to a nullable column value.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr maps a nullable column back to an optional string.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// EncodeStrings stores a string list as a JSON array.
func EncodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

// DecodeStrings reads a JSON array written by EncodeStrings.
func DecodeStrings(s string) []string {
	values := []string{}
	if s == "" {
		return values
	}
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return []string{}
	}
	return values
}
