package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
)

func statuses(results []admin.DeleteResult) map[string]admin.DeleteStatus {
	out := make(map[string]admin.DeleteStatus, len(results))
	for _, r := range results {
		out[r.File] = r.Status
	}
	return out
}

func TestDeleteOrphansOutcomes(t *testing.T) {
	e := newEnv(t)
	seedContent(t, e)
	e.store.FailDelete("media/stray.png", errors.New("access denied"))

	batch, err := e.cleanupService(e.extractor()).DeleteOrphans(context.Background(), adminSession(),
		[]string{"blog/old.jpg", "blog/live.jpg", "media/gone.png", "media/stray.png", "/blog/old.jpg"})
	require.NoError(t, err)

	require.Len(t, batch.Results, 4, "duplicates after normalization are dropped")
	assert.Equal(t, []string{"blog/old.jpg", "blog/live.jpg", "media/gone.png", "media/stray.png"},
		[]string{batch.Results[0].File, batch.Results[1].File, batch.Results[2].File, batch.Results[3].File},
		"results keep input order")

	assert.Equal(t, map[string]admin.DeleteStatus{
		"blog/old.jpg":    admin.DeleteStatusDeleted,
		"blog/live.jpg":   admin.DeleteStatusSkippedNowReferenced,
		"media/gone.png":  admin.DeleteStatusSkippedNotFound,
		"media/stray.png": admin.DeleteStatusFailedStorageError,
	}, statuses(batch.Results))
	assert.Equal(t, admin.DeleteSummary{Requested: 4, Deleted: 1, Skipped: 2, Failed: 1}, batch.Summary)
	assert.Contains(t, batch.Results[3].Error, "access denied")

	assert.False(t, e.store.Has("blog/old.jpg"))
	assert.True(t, e.store.Has("blog/live.jpg"), "referenced objects are never deleted")
	assert.True(t, e.store.Has("media/stray.png"))
	assert.Equal(t, 1, e.publisher.count(messaging.SubjectObjectDeleted))
}

func TestDeleteOrphansSkipsPathReferencedAfterAudit(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{"blog/new.jpg": 10})

	// The first snapshot sees no references; by the next read a post uses the file.
	src := &scriptedSource{sets: [][]content.Row{
		nil,
		{&content.Post{ID: "p9", ImageURL: strPtr("blog/new.jpg")}},
	}}
	extractor := NewReferenceExtractor(e.resolver, e.logger, src)

	batch, err := e.cleanupService(extractor).DeleteOrphans(context.Background(), adminSession(), []string{"blog/new.jpg"})
	require.NoError(t, err)
	assert.Equal(t, admin.DeleteStatusSkippedNowReferenced, batch.Results[0].Status)
	assert.True(t, e.store.Has("blog/new.jpg"))
}

func TestDeleteOrphansSnapshotFailureDeletesNothing(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{"a.jpg": 1, "b.jpg": 1})
	extractor := NewReferenceExtractor(e.resolver, e.logger, failingSource{content.CollectionPost})

	batch, err := e.cleanupService(extractor).DeleteOrphans(context.Background(), adminSession(), []string{"a.jpg", "b.jpg"})
	require.NoError(t, err)
	for _, r := range batch.Results {
		assert.Equal(t, admin.DeleteStatusFailedStorageError, r.Status)
	}
	assert.Equal(t, 0, e.store.DeleteCalls())
	assert.ElementsMatch(t, []string{"a.jpg", "b.jpg"}, e.store.Keys())
}

func TestDeleteOrphansStatFailure(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{"a.jpg": 1})
	e.store.FailStat(errors.New("throttled"))

	batch, err := e.cleanupService(e.extractor()).DeleteOrphans(context.Background(), adminSession(), []string{"a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, admin.DeleteStatusFailedStorageError, batch.Results[0].Status)
	assert.True(t, e.store.Has("a.jpg"))
}

func TestDeleteOrphansAuthorization(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{"a.jpg": 1})
	svc := e.cleanupService(e.extractor())

	for _, sess := range []*session.Session{nil, expiredSession(), editorSession()} {
		batch, err := svc.DeleteOrphans(context.Background(), sess, []string{"a.jpg"})
		assert.Error(t, err)
		assert.Nil(t, batch)
	}
	assert.Equal(t, 0, e.store.DeleteCalls())
	assert.True(t, e.store.Has("a.jpg"))
}

func TestDeleteOrphansRejectsEmptyInput(t *testing.T) {
	e := newEnv(t)
	_, err := e.cleanupService(e.extractor()).DeleteOrphans(context.Background(), adminSession(), []string{" ", "/"})
	assert.ErrorIs(t, err, ErrValidation)
}

func cleanupWithOptions(e *env, extractor *ReferenceExtractor, opts StorageOptions) *StorageCleanupService {
	return NewStorageCleanupService(extractor, e.store, e.publisher, CleanupOptions{
		StorageOptions:     opts,
		RevalidationWindow: time.Nanosecond,
		Concurrency:        4,
	}, e.logger, e.tracker)
}

func TestDeleteOrphansRejectsPathsOutsidePrefix(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{
		"octopus/blog/a.jpg":    1,
		"otherapp/secret.png":   1,
		"octopus-archive/b.jpg": 1,
	})
	opts := StorageOptions{Prefix: "octopus", CallTimeout: time.Second}

	audit := NewStorageAuditService(e.extractor(), e.store, e.mailer, e.publisher, opts, e.logger, e.tracker)
	report, err := audit.Audit(context.Background(), adminSession())
	require.NoError(t, err)
	assert.Equal(t, []string{"octopus/blog/a.jpg"}, admin.Paths(report.Orphan))

	batch, err := cleanupWithOptions(e, e.extractor(), opts).DeleteOrphans(context.Background(), adminSession(),
		[]string{"otherapp/secret.png", "octopus-archive/b.jpg", "octopus/blog/a.jpg"})
	require.NoError(t, err)

	assert.Equal(t, map[string]admin.DeleteStatus{
		"otherapp/secret.png":   admin.DeleteStatusRejectedOutOfScope,
		"octopus-archive/b.jpg": admin.DeleteStatusRejectedOutOfScope,
		"octopus/blog/a.jpg":    admin.DeleteStatusDeleted,
	}, statuses(batch.Results))
	assert.Equal(t, admin.DeleteSummary{Requested: 3, Deleted: 1, Failed: 2}, batch.Summary)
	assert.Equal(t, admin.ErrOutOfScope.Error(), batch.Results[0].Error)

	assert.True(t, e.store.Has("otherapp/secret.png"))
	assert.True(t, e.store.Has("octopus-archive/b.jpg"))
	assert.False(t, e.store.Has("octopus/blog/a.jpg"))
}

// countingSource fails every read and counts them.
type countingSource struct {
	mu    sync.Mutex
	reads int
}

func (c *countingSource) Collection() content.Collection { return content.CollectionPost }
func (c *countingSource) ListRows(context.Context) ([]content.Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	return nil, errors.New("connection reset")
}

func TestDeleteOrphansSnapshotFailureReadsCollectionsOnce(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{"a.jpg": 1, "b.jpg": 1, "c.jpg": 1, "d.jpg": 1, "e.jpg": 1})
	src := &countingSource{}
	extractor := NewReferenceExtractor(e.resolver, e.logger, src)

	batch, err := e.cleanupService(extractor).DeleteOrphans(context.Background(), adminSession(),
		[]string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"})
	require.NoError(t, err)

	assert.Equal(t, 5, batch.Summary.Failed)
	assert.Equal(t, 1, src.reads)
	assert.Equal(t, 0, e.store.DeleteCalls())
}

func TestDeleteOrphansUsesStoredKey(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{"/x.jpg": 1, "blog//b.jpg": 1})

	report, err := e.auditService(e.extractor()).Audit(context.Background(), adminSession())
	require.NoError(t, err)
	require.Len(t, report.Orphan, 2)

	var keys []string
	for _, entry := range report.Orphan {
		keys = append(keys, entry.Key)
	}
	assert.ElementsMatch(t, []string{"/x.jpg", "blog//b.jpg"}, keys)

	batch, err := e.cleanupService(e.extractor()).DeleteOrphans(context.Background(), adminSession(), keys)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Summary.Deleted)
	assert.Empty(t, e.store.Keys())
}

func TestDeleteOrphansCallTimeoutFailsOnlySlowPath(t *testing.T) {
	e := newEnv(t)
	e.store.Seed(map[string]int64{"blog/slow.jpg": 1, "blog/fast.jpg": 1})
	e.store.SetDeleteDelay("blog/slow.jpg", 2*time.Second)

	svc := cleanupWithOptions(e, e.extractor(), StorageOptions{CallTimeout: 50 * time.Millisecond})
	batch, err := svc.DeleteOrphans(context.Background(), adminSession(), []string{"blog/slow.jpg", "blog/fast.jpg"})
	require.NoError(t, err)

	assert.Equal(t, admin.DeleteStatusFailedStorageError, batch.Results[0].Status)
	assert.Contains(t, batch.Results[0].Error, context.DeadlineExceeded.Error())
	assert.Equal(t, admin.DeleteStatusDeleted, batch.Results[1].Status)

	assert.True(t, e.store.Has("blog/slow.jpg"))
	assert.False(t, e.store.Has("blog/fast.jpg"))
}
