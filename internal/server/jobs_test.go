package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
)

func TestJobStore_Lifecycle(t *testing.T) {
	store := NewJobStore(time.Hour)
	ref := flatten.RepoRef{Owner: "octo", Name: "demo"}

	job := store.Create(ref, ModeTranscript)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StatusPending, job.Status)

	store.SetRunning(job.ID)
	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, got.Status)

	store.Complete(job.ID, "output", flatten.Stats{Included: 3})
	got, ok = store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusComplete, got.Status)
	assert.Equal(t, "output", got.Output)
	assert.Equal(t, 3, got.Stats.Included)
	assert.False(t, got.FinishedAt.IsZero())
}

func TestJobStore_Fail(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := store.Create(flatten.RepoRef{Owner: "o", Name: "n"}, ModeInteractive)

	store.Fail(job.ID, errors.New("rate limited by upstream"))
	got, ok := store.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "rate limited by upstream", got.Error)
}

func TestJobStore_UnknownID(t *testing.T) {
	store := NewJobStore(time.Hour)
	_, ok := store.Get("missing")
	assert.False(t, ok)

	// No-ops against unknown ids must not panic.
	store.SetRunning("missing")
	store.Complete("missing", "", flatten.Stats{})
	store.Fail("missing", errors.New("x"))
}

func TestJobStore_PrunesFinishedJobs(t *testing.T) {
	store := NewJobStore(time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }

	finished := store.Create(flatten.RepoRef{Owner: "o", Name: "a"}, ModeTranscript)
	store.Complete(finished.ID, "out", flatten.Stats{})
	running := store.Create(flatten.RepoRef{Owner: "o", Name: "b"}, ModeTranscript)
	store.SetRunning(running.ID)

	assert.Equal(t, 2, store.Len())

	// Past the TTL: the finished job goes, the in-flight one stays.
	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, store.Len())

	_, ok := store.Get(finished.ID)
	assert.False(t, ok)
	_, ok = store.Get(running.ID)
	assert.True(t, ok)
}

func TestJobStore_ZeroTTLKeepsEverything(t *testing.T) {
	store := NewJobStore(0)
	now := time.Now()
	store.now = func() time.Time { return now }

	job := store.Create(flatten.RepoRef{Owner: "o", Name: "n"}, ModeTranscript)
	store.Complete(job.ID, "out", flatten.Stats{})

	now = now.Add(100 * time.Hour)
	_, ok := store.Get(job.ID)
	assert.True(t, ok)
}
