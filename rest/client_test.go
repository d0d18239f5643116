package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catchkit/pokecat/catalog"
	"github.com/catchkit/pokecat/logger"
	"github.com/catchkit/pokecat/rest"
)

// recordingSink counts roster loads per category
type recordingSink struct {
	mu    sync.Mutex
	loads map[string]int
	last  map[string][]rest.NamedResource
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		loads: make(map[string]int),
		last:  make(map[string][]rest.NamedResource),
	}
}

func (s *recordingSink) LoadDocuments(cat catalog.Category, docs []rest.NamedResource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads[cat.Name]++
	s.last[cat.Name] = docs
	return nil
}

func (s *recordingSink) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads[name]
}

func (s *recordingSink) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.loads {
		n += c
	}
	return n
}

func (s *recordingSink) lastDocs(name string) []rest.NamedResource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[name]
}

func newClient(t *testing.T, baseURL string, sink rest.RosterSink) *rest.Client {
	t.Helper()
	c, err := rest.NewClient(&rest.Config{BaseURL: baseURL}, logger.Nop(), sink)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := rest.NewClient(nil, logger.Nop(), nil)
	assert.ErrorIs(t, err, rest.ErrNilSink)

	_, err = rest.NewClient(&rest.Config{BaseURL: "not a url"}, logger.Nop(), newRecordingSink())
	assert.Error(t, err)

	_, err = rest.NewClient(&rest.Config{PageLimit: -1}, logger.Nop(), newRecordingSink())
	assert.Error(t, err)
}

func TestRequest_BootstrapsOnceAndLoadsRosters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "" {
			if r.URL.Path == "/berry" {
				writeJSON(w, `{"results":[{"name":"cheri","url":"https://pokeapi.co/api/v2/berry/1/"}]}`)
				return
			}
			writeJSON(w, `{"results":[]}`)
			return
		}
		writeJSON(w, `{"name":"cheri","id":1}`)
	}))
	defer srv.Close()

	sink := newRecordingSink()
	c := newClient(t, srv.URL, sink)
	ctx := context.Background()

	assert.Equal(t, rest.StateUnconnected, c.State())

	berry, _ := catalog.Lookup("berry")
	data, err := c.Request(ctx, rest.ResourceRoute(berry, "cheri"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"cheri","id":1}`, string(data))

	// A second request must not relaunch the bootstrap.
	_, err = c.Request(ctx, rest.ResourceRoute(berry, "cheri"))
	require.NoError(t, err)

	require.NoError(t, c.WaitUntilReady(ctx))
	assert.Equal(t, rest.StateReady, c.State())

	assert.Equal(t, 1, sink.count("berry"))
	assert.Equal(t, len(catalog.Categories()), sink.total(), "every category loads exactly once")

	docs := sink.lastDocs("berry")
	require.Len(t, docs, 1)
	assert.Equal(t, "cheri", docs[0].Name)
}

func TestRequest_StatusBuckets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "" {
			writeJSON(w, `{"results":[]}`)
			return
		}
		switch r.URL.Path {
		case "/berry/missing":
			http.Error(w, "not found", http.StatusNotFound)
		case "/berry/teapot":
			http.Error(w, "teapot", http.StatusTeapot)
		default:
			writeJSON(w, `{}`)
		}
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, newRecordingSink())
	ctx := context.Background()
	berry, _ := catalog.Lookup("berry")

	_, err := c.Request(ctx, rest.ResourceRoute(berry, "missing"))
	var httpErr *rest.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 404, httpErr.Status)
	assert.Equal(t, rest.ClassNotFound, httpErr.Class())

	_, err = c.Request(ctx, rest.ResourceRoute(berry, "teapot"))
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, rest.ClassUnknown, httpErr.Class(), "novel status codes degrade to the unknown bucket")
}

func TestClose_CancelsPendingBootstrapTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "" {
			// Listings hang until the request is cancelled.
			<-r.Context().Done()
			return
		}
		writeJSON(w, `{"name":"cheri"}`)
	}))
	defer srv.Close()

	sink := newRecordingSink()
	c := newClient(t, srv.URL, sink)
	ctx := context.Background()

	berry, _ := catalog.Lookup("berry")
	_, err := c.Request(ctx, rest.ResourceRoute(berry, "cheri"))
	require.NoError(t, err, "real requests must not block on the bootstrap")
	assert.Equal(t, rest.StateConnecting, c.State())

	require.NoError(t, c.Close())
	assert.Equal(t, rest.StateClosed, c.State())
	assert.Equal(t, 0, sink.total(), "no cancelled task may complete a roster load")

	// Terminal and idempotent.
	require.NoError(t, c.Close())
	_, err = c.Request(ctx, rest.ResourceRoute(berry, "cheri"))
	assert.ErrorIs(t, err, rest.ErrClientClosed)
}

func TestWaitUntilReady_ContextBound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "" {
			<-r.Context().Done()
			return
		}
		writeJSON(w, `{}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, newRecordingSink())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.WaitUntilReady(ctx), context.DeadlineExceeded)
}

func TestFetchBinary(t *testing.T) {
	var spriteHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "" {
			writeJSON(w, `{"results":[]}`)
			return
		}
		switch r.URL.Path {
		case "/sprites/25.png":
			spriteHits.Add(1)
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, newRecordingSink())
	ctx := context.Background()

	data, err := c.FetchBinary(ctx, srv.URL+"/sprites/25.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	// Second fetch comes from the asset cache.
	_, err = c.FetchBinary(ctx, srv.URL+"/sprites/25.png")
	require.NoError(t, err)
	assert.EqualValues(t, 1, spriteHits.Load())

	var assetErr *rest.AssetError
	_, err = c.FetchBinary(ctx, srv.URL+"/page.html")
	require.True(t, errors.As(err, &assetErr), "disallowed content type")
	assert.Equal(t, "text/html", assetErr.ContentType)

	_, err = c.FetchBinary(ctx, srv.URL+"/sprites/gone.png")
	require.True(t, errors.As(err, &assetErr), "missing asset")
	assert.Equal(t, 404, assetErr.Status)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "" {
			writeJSON(w, `{"results":[]}`)
			return
		}
		writeJSON(w, `{}`)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, newRecordingSink())
	latency, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Greater(t, latency, time.Duration(0))
}

func TestRefreshRosters_ReplacesWholesale(t *testing.T) {
	var generation int32
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") == "" {
			writeJSON(w, `{}`)
			return
		}
		mu.Lock()
		gen := generation
		mu.Unlock()
		if r.URL.Path == "/berry" && gen > 0 {
			writeJSON(w, `{"results":[{"name":"pecha","url":"https://pokeapi.co/api/v2/berry/3/"}]}`)
			return
		}
		writeJSON(w, `{"results":[{"name":"cheri","url":"https://pokeapi.co/api/v2/berry/1/"}]}`)
	}))
	defer srv.Close()

	sink := newRecordingSink()
	c := newClient(t, srv.URL, sink)
	ctx := context.Background()

	require.NoError(t, c.WaitUntilReady(ctx))
	docs := sink.lastDocs("berry")
	require.Len(t, docs, 1)
	assert.Equal(t, "cheri", docs[0].Name)

	mu.Lock()
	generation = 1
	mu.Unlock()
	require.NoError(t, c.RefreshRosters(ctx))

	assert.Equal(t, 2, sink.count("berry"))
	docs = sink.lastDocs("berry")
	require.Len(t, docs, 1)
	assert.Equal(t, "pecha", docs[0].Name)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unconnected", rest.StateUnconnected.String())
	assert.Equal(t, "connecting", rest.StateConnecting.String())
	assert.Equal(t, "ready", rest.StateReady.String())
	assert.Equal(t, "closed", rest.StateClosed.String())
}
