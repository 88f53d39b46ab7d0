package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSender struct {
	calls atomic.Int32
	err   error
}

func (s *countingSender) SendReminders(ctx context.Context) (int, error) {
	s.calls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	return 2, nil
}

func TestReminderWorker_RunOnce(t *testing.T) {
	sender := &countingSender{}
	w := NewReminderWorker(ReminderConfig{}, sender, zap.NewNop())

	require.NoError(t, w.RunOnce(context.Background()))

	sender.err = errors.New("db down")
	assert.Error(t, w.RunOnce(context.Background()))

	stats := w.Stats()
	assert.Equal(t, 2, stats.Runs)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, "db down", stats.LastError)
	assert.False(t, stats.Running)
}

func TestReminderWorker_Loop(t *testing.T) {
	sender := &countingSender{}
	w := NewReminderWorker(ReminderConfig{Interval: 5 * time.Millisecond}, sender, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second start is rejected")

	assert.Eventually(t, func() bool { return sender.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	calls := sender.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, sender.calls.Load(), "no runs after stop")
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(zap.NewNop())
	sender := &countingSender{}
	m.Register(NewReminderWorker(ReminderConfig{Interval: time.Hour}, sender, zap.NewNop()))

	assert.Equal(t, 1, m.Count())
	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.StartAll(context.Background()))

	stats := m.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "ReminderWorker", stats[0].Name)
	assert.True(t, stats[0].Running)

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	assert.NoError(t, m.StopAll())
}
