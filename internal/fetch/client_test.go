package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientFetchReturnsBodyAndHeaders(t *testing.T) {
	var gotUA, gotAccept, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotReferer = r.Header.Get("Referer")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := New(Config{UserAgents: []string{"test-agent"}}, nil, zap.NewNop())
	resp, err := client.Fetch(context.Background(), Request{
		URL:     srv.URL,
		Referer: "https://alkoteka.com/catalog/vino",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"success":true}`, string(resp.Body))
	require.Empty(t, resp.Proxy)

	require.Equal(t, "test-agent", gotUA)
	require.Equal(t, "application/json, text/plain, */*", gotAccept)
	require.Equal(t, "https://alkoteka.com/catalog/vino", gotReferer)
}

func TestClientFetchSurfacesErrorStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("blocked")) //nolint:errcheck
	}))
	defer srv.Close()

	client := New(Config{}, nil, zap.NewNop())
	resp, err := client.Fetch(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err, "http error statuses are responses, not errors")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "blocked", string(resp.Body))
}

func TestClientFetchTransportError(t *testing.T) {
	client := New(Config{Timeout: time.Second}, nil, zap.NewNop())
	_, err := client.Fetch(context.Background(), Request{URL: "http://127.0.0.1:1"})
	require.Error(t, err)
}

func TestClientFetchHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(Config{Delay: time.Minute}, nil, zap.NewNop())
	start := time.Now()
	_, err := client.Fetch(ctx, Request{URL: "http://127.0.0.1:1"})
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second, "cancellation must short-circuit the pacing wait")
}

func TestClientFetchAllowsRevisits(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(Config{}, nil, zap.NewNop())
	for i := 0; i < 2; i++ {
		resp, err := client.Fetch(context.Background(), Request{URL: srv.URL})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	require.Equal(t, 2, hits, "the same url must be fetchable twice for retries")
}
