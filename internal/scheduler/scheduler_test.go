package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/notexe/reminder-tracker/internal/config"
	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenewer struct {
	mu    sync.Mutex
	days  []reminder.Date
	err   error
	calls int
}

func (f *fakeRenewer) Run(_ context.Context, today reminder.Date) (reminder.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.days = append(f.days, today)
	return reminder.Result{Processed: 1}, f.err
}

type fakeChecker struct {
	mu    sync.Mutex
	days  []reminder.Date
	err   error
	ran   chan struct{}
	calls int
}

func (f *fakeChecker) Check(_ context.Context, today reminder.Date, channel string) (notify.Report, error) {
	f.mu.Lock()
	f.calls++
	f.days = append(f.days, today)
	f.mu.Unlock()
	if f.ran != nil {
		f.ran <- struct{}{}
	}
	return notify.Report{Count: 1, Results: []notify.Outcome{{Channel: "email", Status: notify.StatusSent}}}, f.err
}

func testConfig(mode string) *config.Config {
	return &config.Config{
		Timezone:  "UTC",
		Renewal:   config.RenewalConfig{Mode: mode},
		Scheduler: config.SchedulerConfig{Enabled: true, Cron: "0 9 * * *"},
	}
}

func fixedNow() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }

func TestTickScheduledRenewsThenNotifies(t *testing.T) {
	renewer := &fakeRenewer{}
	checker := &fakeChecker{}
	s, err := New(renewer, checker, testConfig(config.RenewalScheduled), zerolog.Nop())
	require.NoError(t, err)
	s.now = fixedNow

	s.tick(context.Background())

	require.Equal(t, 1, renewer.calls)
	require.Equal(t, 1, checker.calls)
	assert.Equal(t, "2024-06-15", renewer.days[0].String())
	assert.Equal(t, "2024-06-15", checker.days[0].String())
}

func TestTickManualModeOnlyNotifies(t *testing.T) {
	renewer := &fakeRenewer{}
	checker := &fakeChecker{}
	s, err := New(renewer, checker, testConfig(config.RenewalManual), zerolog.Nop())
	require.NoError(t, err)

	s.tick(context.Background())

	assert.Zero(t, renewer.calls)
	assert.Equal(t, 1, checker.calls)
}

func TestTickRenewalFailureStillNotifies(t *testing.T) {
	renewer := &fakeRenewer{err: errors.New("store locked")}
	checker := &fakeChecker{}
	s, err := New(renewer, checker, testConfig(config.RenewalScheduled), zerolog.Nop())
	require.NoError(t, err)

	s.tick(context.Background())

	assert.Equal(t, 1, checker.calls)
}

func TestTickUsesConfiguredTimezone(t *testing.T) {
	checker := &fakeChecker{}
	cfg := testConfig(config.RenewalManual)
	cfg.Timezone = "Asia/Shanghai"
	s, err := New(&fakeRenewer{}, checker, cfg, zerolog.Nop())
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC) }

	s.tick(context.Background())

	assert.Equal(t, "2024-06-16", checker.days[0].String())
}

func TestRunOnStartAndStop(t *testing.T) {
	checker := &fakeChecker{ran: make(chan struct{}, 1)}
	cfg := testConfig(config.RenewalManual)
	cfg.Scheduler.RunOnStart = true
	s, err := New(&fakeRenewer{}, checker, cfg, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-checker.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run on start")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunRejectsBadSpec(t *testing.T) {
	cfg := testConfig(config.RenewalManual)
	cfg.Scheduler.Cron = "not a cron"
	s, err := New(&fakeRenewer{}, &fakeChecker{}, cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Error(t, s.Run(context.Background()))
}
