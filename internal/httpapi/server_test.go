package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-dashboard/internal/cache"
	"trading-dashboard/internal/dashboard"
	"trading-dashboard/internal/logsource"
	lsmemory "trading-dashboard/internal/logsource/memory"
	"trading-dashboard/internal/marks"
	"trading-dashboard/internal/push"
	"trading-dashboard/internal/relay"
)

const runID = "paper_20250110_091500"

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func seedRun(src *lsmemory.Source) {
	src.PutObject("fixed", runID, logsource.FileEvents, []byte(
		`{"trade_id":"T1","type":"TRIGGER","ts":"2025-01-10T09:20:00","symbol":"NSE:RELIANCE","trigger":{"side":"BUY","qty":100,"actual_price":2500,"strategy":"orb"}}
`))
	src.PutObject("fixed", runID, logsource.FileAnalytics, []byte(
		`{"trade_id":"T2","symbol":"NSE:INFY","pnl":750,"total_trade_pnl":750,"is_final_exit":true,"setup_type":"vwap","regime":"trend"}
`))
	src.PutObject("fixed", runID, logsource.FileAgentLog, []byte("first\nsecond\nthird\n"))
}

func newTestServer(t *testing.T, rly *relay.Relay, hub *push.Hub) *Server {
	t.Helper()
	src := lsmemory.New()
	seedRun(src)
	sources := map[string]logsource.Source{"fixed": src}
	svc := dashboard.NewService(sources, marks.NewResolver(src, discard()), cache.New(), discard(), dashboard.Options{})

	cfg := DefaultServerConfig()
	cfg.AdminToken = "secret"
	return NewServer(cfg, svc, rly, hub, nil, discard())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConfigTypes(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config-types", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"config_types":["fixed"]}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRuns(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Runs []struct {
			RunID string `json:"run_id"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, runID, body.Runs[0].RunID)
}

func TestRunSummary(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/runs/"+runID+"/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		TotalPnL    float64 `json:"total_pnl"`
		TotalTrades int     `json:"total_trades"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 750.0, body.TotalPnL)
	assert.Equal(t, 1, body.TotalTrades)
}

func TestRunSummaryNotFound(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/runs/paper_20990101_000000/summary", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownConfigTypeNotFound(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ghost/runs", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTailLog(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/runs/"+runID+"/logs/agent.log?n=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lines":["second","third"]}`, rec.Body.String())
}

func TestTailLogRejectsBadCount(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/runs/"+runID+"/logs/agent.log?n=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOpenPositions(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/runs/"+runID+"/positions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Positions []struct {
			TradeID      string `json:"trade_id"`
			RemainingQty int    `json:"remaining_qty"`
		} `json:"positions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Positions, 1)
	assert.Equal(t, "T1", body.Positions[0].TradeID)
	assert.Equal(t, 100, body.Positions[0].RemainingQty)
}

func TestAggregate(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/aggregate?from=2025-01-01&to=2025-01-31", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Days     int     `json:"days"`
		NetPnL   float64 `json:"net_pnl"`
		GrossPnL float64 `json:"gross_pnl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Days)
	assert.Equal(t, 750.0, body.NetPnL)
}

func TestCacheClearAndStats(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fixed/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hits":0,"misses":0,"entries":0}`, rec.Body.String())
}

func TestAdminRequiresToken(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"paused"}`))
	}))
	defer engine.Close()

	rly := relay.New(map[string]string{"live": engine.URL}, "engine-token", discard())
	srv := newTestServer(t, rly, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/instances/live/admin/pause", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/instances/live/admin/pause", strings.NewReader(`{}`))
	req.Header.Set("X-Admin-Token", "secret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"status":"paused"}`, rec.Body.String())
}

func TestAdminPerTradeExitAction(t *testing.T) {
	var gotPath string
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusAccepted)
	}))
	defer engine.Close()

	rly := relay.New(map[string]string{"live": engine.URL}, "engine-token", discard())
	srv := newTestServer(t, rly, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/instances/live/admin/exit/T-42", nil)
	req.Header.Set("X-Admin-Token", "secret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "/admin/exit/T-42", gotPath)
}

func TestInstanceProbe(t *testing.T) {
	engine := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer engine.Close()

	rly := relay.New(map[string]string{"live": engine.URL}, "engine-token", discard())
	srv := newTestServer(t, rly, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instances/live/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"status":"running"}`, rec.Body.String())
}

func TestInstancesEmptyWithoutRelay(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/instances", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"instances":[]}`, rec.Body.String())
}

func TestLiveSocketPushesSummary(t *testing.T) {
	hub := push.NewHub(50*time.Millisecond, discard(), nil)
	srv := newTestServer(t, nil, hub)
	defer hub.Shutdown()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/live/fixed/" + runID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var payload struct {
		RunID       string  `json:"run_id"`
		RealizedPnL float64 `json:"realized_pnl"`
	}
	require.NoError(t, conn.ReadJSON(&payload))
	assert.Equal(t, runID, payload.RunID)
	assert.Equal(t, 750.0, payload.RealizedPnL)
}
