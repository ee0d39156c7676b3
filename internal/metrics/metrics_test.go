package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/posts/:postId", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/posts/:postId", "204"))

	resp, err := app.Test(httptest.NewRequest("GET", "/posts/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	after := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/posts/:postId", "204"))
	assert.Equal(t, before+1, after)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "social_http_requests_total")
}

func TestCountersByOutcome(t *testing.T) {
	before := testutil.ToFloat64(eventsPublished.WithLabelValues("t.subject", OutcomeError))
	IncrementEventsPublished("t.subject", errors.New("down"))
	assert.Equal(t, before+1, testutil.ToFloat64(eventsPublished.WithLabelValues("t.subject", OutcomeError)))

	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	ObserveCacheLookup(true)
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))

	ops := testutil.ToFloat64(storeOperations.WithLabelValues("memory", "find", OutcomeOK))
	ObserveStoreOperation("memory", "find", OutcomeOK, 0)
	assert.Equal(t, ops+1, testutil.ToFloat64(storeOperations.WithLabelValues("memory", "find", OutcomeOK)))
}
