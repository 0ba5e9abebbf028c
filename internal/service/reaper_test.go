package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockReaperRepo struct {
	cutoffs []time.Time
	removed int64
}

func (m *mockReaperRepo) DeleteDeadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.cutoffs = append(m.cutoffs, cutoff)
	return m.removed, nil
}

func TestReapUsesRetentionCutoff(t *testing.T) {
	repo := &mockReaperRepo{removed: 3}
	r := NewCodeReaper(repo, time.Hour, 24*time.Hour, nil)

	r.reap(context.Background())

	assert.Len(t, repo.cutoffs, 1)
	expected := time.Now().Add(-24 * time.Hour)
	assert.WithinDuration(t, expected, repo.cutoffs[0], time.Minute)
}

func TestRunDisabledWithoutInterval(t *testing.T) {
	repo := &mockReaperRepo{}
	r := NewCodeReaper(repo, 0, 24*time.Hour, nil)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return immediately when the interval is zero")
	}
	assert.Empty(t, repo.cutoffs)
}
