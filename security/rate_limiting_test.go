package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase/core"
	_ "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) core.App {
	t.Helper()
	app := core.NewBaseApp(core.BaseAppConfig{DataDir: t.TempDir()})
	require.NoError(t, app.Bootstrap())
	t.Cleanup(func() { _ = app.ResetBootstrapState() })
	return app
}

func requestEvent(app core.App, userAgent string) *core.RequestEvent {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	req.Header.Set("User-Agent", userAgent)

	e := &core.RequestEvent{App: app}
	e.Request = req
	e.Response = httptest.NewRecorder()
	return e
}

func errorStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *router.ApiError
	require.True(t, errors.As(err, &apiErr))
	return apiErr.Status
}

func expectHit(mock redismock.ClientMock, key string, count int64) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(count)
	mock.ExpectExpireNX(key, time.Minute).SetVal(count == 1)
	mock.ExpectTxPipelineExec()
}

func TestAllow(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 2, time.Minute)

	expectHit(mock, "ratelimit:user:u1", 1)
	expectHit(mock, "ratelimit:user:u1", 2)
	expectHit(mock, "ratelimit:user:u1", 3)

	ok, err := limiter.Allow(ctx, "user:u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "user:u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "user:u1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMiddleware(t *testing.T) {
	app := newTestApp(t)

	t.Run("anonymous requests are keyed by ip", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		limiter := NewRateLimiter(db, 5, time.Minute)
		expectHit(mock, "ratelimit:ip:10.0.0.7", 1)

		assert.NoError(t, limiter.Middleware().Func(requestEvent(app, "Mozilla/5.0")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("over the limit", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		limiter := NewRateLimiter(db, 5, time.Minute)
		expectHit(mock, "ratelimit:ip:10.0.0.7", 6)

		err := limiter.Middleware().Func(requestEvent(app, "Mozilla/5.0"))
		assert.Equal(t, http.StatusTooManyRequests, errorStatus(t, err))
	})

	t.Run("bots are refused before counting", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		limiter := NewRateLimiter(db, 5, time.Minute)

		err := limiter.Middleware().Func(requestEvent(app, "Googlebot/2.1"))
		assert.Equal(t, http.StatusForbidden, errorStatus(t, err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure lets the request through", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		limiter := NewRateLimiter(db, 5, time.Minute)
		mock.ExpectTxPipeline()
		mock.ExpectIncr("ratelimit:ip:10.0.0.7").SetErr(errors.New("connection refused"))

		assert.NoError(t, limiter.Middleware().Func(requestEvent(app, "Mozilla/5.0")))
	})
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	assert.True(t, isSuspiciousUserAgent("Mozilla/5.0 (compatible; bingbot/2.0)"))
	assert.True(t, isSuspiciousUserAgent("SiteCrawler"))
	assert.False(t, isSuspiciousUserAgent("Mozilla/5.0 (X11; Linux x86_64)"))
	assert.False(t, isSuspiciousUserAgent(""))
}

func TestAllow_SetsExpiryOnEveryHit(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	limiter := NewRateLimiter(db, 10, time.Minute)

	// The key exists without a TTL; EXPIRE NX still applies it.
	mock.ExpectTxPipeline()
	mock.ExpectIncr("ratelimit:ip:10.0.0.7").SetVal(5)
	mock.ExpectExpireNX("ratelimit:ip:10.0.0.7", time.Minute).SetVal(true)
	mock.ExpectTxPipelineExec()

	ok, err := limiter.Allow(ctx, "ip:10.0.0.7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
