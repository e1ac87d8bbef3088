package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/member-auth/internal/config"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", http.MethodGet, http.StatusOK, 0)
	m.RecordError("/", http.MethodGet, "X")
	m.RecordAuthOutcome("pass_through")
	assert.Nil(t, m.AuthOutcomes())
}

func TestMetrics_AuthOutcomesIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordAuthOutcome("continue_anonymous")
	m.RecordAuthOutcome("continue_anonymous")

	snapshot := m.AuthOutcomes()
	snapshot["continue_anonymous"] = 100
	assert.Equal(t, int64(2), m.AuthOutcomes()["continue_anonymous"])
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusTeapot) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
