package objectstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/logsource"
)

func newBucket(t *testing.T, objects map[string]string, mtimes map[string]time.Time) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/o" {
			prefix := r.URL.Query().Get("prefix")
			delimiter := r.URL.Query().Get("delimiter")
			var resp listResponse
			seen := make(map[string]bool)
			for name := range objects {
				if !strings.HasPrefix(name, prefix) {
					continue
				}
				rest := strings.TrimPrefix(name, prefix)
				if delimiter != "" {
					if i := strings.Index(rest, delimiter); i >= 0 {
						p := prefix + rest[:i+1]
						if !seen[p] {
							seen[p] = true
							resp.Prefixes = append(resp.Prefixes, p)
						}
						continue
					}
				}
				resp.Objects = append(resp.Objects, listObject{Name: name, TimeModified: mtimes[name]})
			}
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/o/")
		data, ok := objects[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(data))
	}))
}

func TestListRunsAndReadObject(t *testing.T) {
	srv := newBucket(t, map[string]string{
		"fixed/logs/paper_20250110_091500/events.jsonl":    `{"type":"EXIT"}`,
		"fixed/logs/paper_20250111_091500/performance.json": `{}`,
		"fixed/logs/misc/notes.txt":                         "ignored",
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	runs, err := c.ListRuns(context.Background(), "fixed")
	require.NoError(t, err)
	assert.Equal(t, []string{"paper_20250111_091500", "paper_20250110_091500"}, runs)

	data, err := c.ReadObject(context.Background(), "fixed", "paper_20250110_091500", "events.jsonl")
	require.NoError(t, err)
	assert.Equal(t, `{"type":"EXIT"}`, string(data))

	_, err = c.ReadObject(context.Background(), "fixed", "paper_20250110_091500", "agent.log")
	assert.ErrorIs(t, err, logsource.ErrNotFound)
}

func TestListFilesMissingRun(t *testing.T) {
	srv := newBucket(t, map[string]string{
		"fixed/logs/paper_20250110_091500/events.jsonl": `{"type":"EXIT"}`,
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL)
	files, err := c.ListFiles(context.Background(), "fixed", "paper_20250110_091500")
	require.NoError(t, err)
	assert.Equal(t, []string{"events.jsonl"}, files)

	// An unknown run prefix lists as an empty page, not a 404; the
	// client must still report absence like the local backend does.
	_, err = c.ListFiles(context.Background(), "fixed", "paper_20260101_090000")
	assert.ErrorIs(t, err, logsource.ErrNotFound)
}

func TestListTickPartitionsOrderedByTimeModified(t *testing.T) {
	now := time.Now().UTC()
	srv := newBucket(t, map[string]string{
		"fixed/data/sidecar/ticks/ticks_20250110_a.jsonl": "{}",
		"fixed/data/sidecar/ticks/ticks_20250110_b.jsonl": "{}",
	}, map[string]time.Time{
		"fixed/data/sidecar/ticks/ticks_20250110_a.jsonl": now.Add(-time.Hour),
		"fixed/data/sidecar/ticks/ticks_20250110_b.jsonl": now,
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	names, err := c.ListTickPartitions(context.Background(), "fixed", "20250110")
	require.NoError(t, err)
	assert.Equal(t, []string{"ticks_20250110_b.jsonl", "ticks_20250110_a.jsonl"}, names)
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryDelay(time.Millisecond), WithMaxRetries(3))
	data, err := c.readObject(context.Background(), "fixed/logs/r/f")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.EqualValues(t, 3, calls.Load())
}

func TestUnavailableAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryDelay(time.Millisecond), WithMaxRetries(1))
	_, err := c.readObject(context.Background(), "x")
	assert.ErrorIs(t, err, logsource.ErrUnavailable)
}
