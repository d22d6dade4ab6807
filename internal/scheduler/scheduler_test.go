package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("refresh called without deadline")
	}
	return r.err
}

func TestSchedulerDisabled(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, 0, time.Second, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Zero(t, s.scheduler.Len())
}

func TestSchedulerRunsRefresh(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, 50*time.Millisecond, time.Second, time.UTC)
	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRunSurvivesErrors(t *testing.T) {
	r := &countingRefresher{err: errors.New("boom")}
	s := New(r, time.Hour, 0, nil)

	s.run()
	s.run()
	require.EqualValues(t, 2, r.calls.Load())
}
