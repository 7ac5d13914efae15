package contrib

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/contrib-matrix/internal/domain"
	"github.com/couchcryptid/contrib-matrix/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = "0,1,0,3,0,0,2,0,0,0,0,1,4,0,0,\n2,0,0,0,5,1,0,0,0,0,0,0,0,0,0,\n"

func testClient(url string, timeout time.Duration) (*Client, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return NewClient(url, timeout, metrics, slog.New(slog.NewTextHandler(io.Discard, nil))), metrics
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/octocat.text", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("no-total"))
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c, metrics := testClient(srv.URL+"/octocat.text?no-total=true", 5*time.Second)
	payload, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, samplePayload, string(payload.Body))
	assert.False(t, payload.FetchedAt.IsZero())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("200")), 0)
}

func TestClient_Fetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("429"))
	}))
	defer srv.Close()

	c, metrics := testClient(srv.URL, 5*time.Second)
	payload, err := c.Fetch(context.Background())
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
	assert.Empty(t, payload.Body, "error bodies must never be handed out as payload")
	assert.Contains(t, err.Error(), "429")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("429")), 0)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, metrics := testClient(srv.URL, 50*time.Millisecond)
	_, err := c.Fetch(context.Background())
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("transport")), 0)
}

func TestClient_Fetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := testClient(srv.URL, 5*time.Second)
	_, err := c.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_Fetch_BadURL(t *testing.T) {
	c, _ := testClient("http://[::1]:namedport", time.Second)
	_, err := c.Fetch(context.Background())

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
}
