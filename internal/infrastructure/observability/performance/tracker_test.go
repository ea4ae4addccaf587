package performance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerCompleteRecordsOnce(t *testing.T) {
	tracker := NewTracker(nil)

	marker := tracker.StartOperation("storage:delete")
	marker.SetError(errors.New("boom"))
	marker.Complete()
	marker.Complete()

	summary := tracker.GetSummary()
	require.Len(t, summary.Operations, 1)
	assert.Equal(t, 1, summary.Operations[0].Count)
	assert.Equal(t, 1, summary.Operations[0].Failures)
	assert.Equal(t, 0, summary.ActiveOperations)
	assert.Equal(t, "boom", marker.Error)
}

func TestTrackerRetentionIsBounded(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 3, MaxAlerts: 3})
	for i := 0; i < 10; i++ {
		tracker.StartOperation("content:list").Complete()
	}
	summary := tracker.GetSummary()
	require.Len(t, summary.Operations, 1)
	assert.Equal(t, 3, summary.Operations[0].Count)
}

func TestSlowOperationRaisesAlert(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 10, MaxAlerts: 10, EnableAlerts: true})
	tracker.SetThresholds(&AlertThresholds{
		SlowResponseThreshold:     time.Nanosecond,
		CriticalResponseThreshold: time.Hour,
		AuthOperationThreshold:    time.Hour,
		StorageAuditThreshold:     time.Hour,
	})

	m := tracker.StartOperation("content:create")
	time.Sleep(time.Millisecond)
	m.Complete()

	summary := tracker.GetSummary()
	require.Len(t, summary.RecentAlerts, 1)
	assert.Equal(t, AlertWarning, summary.RecentAlerts[0].Severity)
	assert.Equal(t, HealthDegraded, summary.Health)
}

func TestEmptyTrackerHealthUnknown(t *testing.T) {
	assert.Equal(t, HealthUnknown, NewTracker(nil).GetSummary().Health)
}
