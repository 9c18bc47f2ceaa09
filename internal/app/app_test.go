package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/kebiao-ics/internal/config"
	"github.com/garyellow/kebiao-ics/internal/logger"
	"github.com/garyellow/kebiao-ics/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LogLevel:         "error",
		LogFormat:        "json",
		CalendarName:     "课程表",
		ReminderLead:     20 * time.Minute,
		Port:             "0",
		ShutdownTimeout:  5 * time.Second,
		MaxBodyBytes:     1 << 20,
		DataDir:          t.TempDir(),
		HistoryEnabled:   true,
		HistoryRetention: 24 * time.Hour,
		R2Prefix:         "calendars",
	}
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	app, err := Initialize(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, app.db)
	assert.Nil(t, app.publisher)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test helper
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestOpenHistory_Disabled(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.HistoryEnabled = false

	db, err := OpenHistory(context.Background(), cfg, logger.NewWithWriter("error", io.Discard))
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()
	log := logger.NewWithWriter("error", io.Discard)
	_, m := NewRegistry()

	cfg := testConfig(t)
	p, err := NewPublisher(context.Background(), cfg, log, m)
	require.NoError(t, err)
	assert.Nil(t, p)

	cfg.R2Enabled = true
	cfg.R2AccountID = "acct"
	_, err = NewPublisher(context.Background(), cfg, log, m)
	assert.Error(t, err, "missing credentials")

	cfg.R2AccessKeyID = "key"
	cfg.R2SecretAccessKey = "secret"
	cfg.R2BucketName = "bucket"
	p, err = NewPublisher(context.Background(), cfg, log, m)
	require.NoError(t, err)
	assert.Equal(t, "calendars/x.ics", p.ICSKey("x"))
}

func TestPruneOnce(t *testing.T) {
	t.Parallel()
	db, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, db.SaveConversion(ctx, &storage.Conversion{
		ID: "old", CreatedAt: time.Now().Add(-72 * time.Hour), SemesterStart: "2024-02-26",
		ICS: []byte("x"), SummaryJSON: []byte("[]"),
	}))
	require.NoError(t, db.SaveConversion(ctx, &storage.Conversion{
		ID: "new", CreatedAt: time.Now(), SemesterStart: "2024-02-26",
		ICS: []byte("x"), SummaryJSON: []byte("[]"),
	}))

	a := &Application{cfg: testConfig(t), db: db, logger: logger.NewWithWriter("error", io.Discard)}
	a.pruneOnce(ctx)

	n, err := db.CountConversions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRateLimiter(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	assert.Nil(t, NewRateLimiter(cfg, nil), "zero rate disables limiting")

	cfg.RateLimitPerMinute = 60
	cfg.RateLimitBurst = 1
	_, m := NewRegistry()
	limiter := NewRateLimiter(cfg, m)
	require.NotNil(t, limiter)
	t.Cleanup(limiter.Stop)

	ok, _ := limiter.Allow("192.0.2.1")
	assert.True(t, ok)
	ok, _ = limiter.Allow("192.0.2.1")
	assert.False(t, ok)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal), 1e-9)
}
