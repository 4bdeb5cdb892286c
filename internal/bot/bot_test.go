package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitleh/splitlehbot/internal/bot/tasks"
	"github.com/splitleh/splitlehbot/internal/config"
	"github.com/splitleh/splitlehbot/internal/logger"
	"github.com/splitleh/splitlehbot/internal/session"
)

func discard() *slog.Logger {
	return logger.Discard()
}

func noopTask(context.Context) error { return nil }

func TestSchedulerSchedulesEnabledTasks(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		config.TaskSessionSweep:  {Enabled: true, Schedule: "0 */5 * * * *"},
		config.TaskBackendHealth: {Enabled: false, Schedule: "30 * * * * *"},
		"unknown":                {Enabled: true, Schedule: "* * * * * *"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		config.TaskSessionSweep:  noopTask,
		config.TaskBackendHealth: noopTask,
	}

	s, err := NewScheduler(discard(), cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Equal(t, []string{config.TaskSessionSweep}, s.JobNames())
	assert.Error(t, s.Start(), "second start must fail")
}

func TestSchedulerSkipsInvalidSchedule(t *testing.T) {
	t.Parallel()

	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		config.TaskSessionSweep: {Enabled: true, Schedule: "not a cron"},
	}}
	s, err := NewScheduler(discard(), cfg, map[string]tasks.ScheduledTaskFunc{config.TaskSessionSweep: noopTask})
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.Empty(t, s.JobNames())
	assert.NoError(t, s.Stop())
	assert.NoError(t, s.Stop(), "stopping twice is a no-op")
}

func TestSchedulerRunsTasks(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	cfg := &config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		config.TaskBackendHealth: {Enabled: true, Schedule: "* * * * * *"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		config.TaskBackendHealth: func(context.Context) error {
			runs.Add(1)
			return errors.New("failures are only logged")
		},
	}

	s, err := NewScheduler(discard(), cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

type closeRecorder struct{ closed atomic.Bool }

func (c *closeRecorder) Close(context.Context) error {
	c.closed.Store(true)
	return nil
}

// newPollingBot returns a bot whose API server answers every call with an
// empty result.
func newPollingBot(t *testing.T) *tgbot.Bot {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
	}))
	t.Cleanup(api.Close)

	b, err := tgbot.New("123456789:test-token", tgbot.WithSkipGetMe(), tgbot.WithServerURL(api.URL))
	require.NoError(t, err)
	return b
}

func TestRunReleasesResourcesOnShutdown(t *testing.T) {
	t.Parallel()

	backend := &closeRecorder{}
	sessions := session.NewMemoryStore(time.Minute)
	require.NoError(t, sessions.Put(context.Background(), 1, session.NewMemberAdditionRequest(1, 2, time.Now())))

	var serverStarted atomic.Bool
	server := runnerFunc(func(ctx context.Context) error {
		serverStarted.Store(true)
		<-ctx.Done()
		return nil
	})

	b := NewBot(discard(), Options{
		TgBot:    newPollingBot(t),
		Server:   server,
		Backend:  backend,
		Sessions: sessions,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, b.Run(ctx))
	assert.True(t, serverStarted.Load())
	assert.True(t, backend.closed.Load())
	assert.Zero(t, sessions.Len())
}

func TestRunReturnsComponentError(t *testing.T) {
	t.Parallel()

	boom := errors.New("listen failed")
	b := NewBot(discard(), Options{
		TgBot:  newPollingBot(t),
		Server: runnerFunc(func(context.Context) error { return boom }),
	})

	err := b.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}
