package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReminderSender publishes reminders for claims waiting on an accountant
type ReminderSender interface {
	SendReminders(ctx context.Context) (int, error)
}

// ReminderConfig holds configuration for the reminder worker
type ReminderConfig struct {
	Interval   time.Duration
	RunTimeout time.Duration
}

// DefaultReminderConfig returns default configuration
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		Interval:   time.Hour,
		RunTimeout: time.Minute,
	}
}

// ReminderWorker periodically reminds accountants of stale IN_PROGRESS claims
type ReminderWorker struct {
	config ReminderConfig
	sender ReminderSender
	logger *zap.Logger

	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	isRunning bool
	runs      int
	failures  int
	sent      int
	lastRun   time.Time
	lastError error
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(config ReminderConfig, sender ReminderSender, logger *zap.Logger) *ReminderWorker {
	defaults := DefaultReminderConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = defaults.RunTimeout
	}
	return &ReminderWorker{
		config: config,
		sender: sender,
		logger: logger,
	}
}

// Start begins the reminder loop
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return fmt.Errorf("reminder worker already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.isRunning = true
	done := w.done
	w.mu.Unlock()

	w.logger.Info("ReminderWorker started", zap.Duration("interval", w.config.Interval))

	go w.loop(runCtx, done)
	return nil
}

// Stop terminates the loop and waits for an in-flight run to finish
func (w *ReminderWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	w.logger.Info("ReminderWorker stopped", zap.Int("runs", w.Stats().Runs))
	return nil
}

// Name returns the worker name for identification
func (w *ReminderWorker) Name() string {
	return "ReminderWorker"
}

// Stats implements Reporter
func (w *ReminderWorker) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Stats{
		Name:     w.Name(),
		Running:  w.isRunning,
		Runs:     w.runs,
		Failures: w.failures,
		LastRun:  w.lastRun,
	}
	if w.lastError != nil {
		s.LastError = w.lastError.Error()
	}
	return s
}

func (w *ReminderWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = w.RunOnce(ctx)
		}
	}
}

// RunOnce sends one round of reminders
func (w *ReminderWorker) RunOnce(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, w.config.RunTimeout)
	defer cancel()

	sent, err := w.sender.SendReminders(runCtx)

	w.mu.Lock()
	w.runs++
	w.lastRun = time.Now()
	w.lastError = err
	if err != nil {
		w.failures++
	} else {
		w.sent += sent
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Error("Failed to send pending reminders", zap.Error(err))
		return err
	}
	if sent > 0 {
		w.logger.Info("Pending reminders sent", zap.Int("count", sent))
	}
	return nil
}
