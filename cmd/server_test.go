package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simranmultani197/Simforge-sub000/sim"
	"github.com/simranmultani197/Simforge-sub000/sim/worker"
)

const initCommand = `{"type":"init","topology":{
  "nodes":[{"id":"users","kind":"client"},{"id":"api","kind":"service","config":{"latencyMs":{"type":"uniform","min":2,"max":6}}}],
  "edges":[{"id":"e1","source":"users","target":"api","config":{"latencyMs":1}}]},
  "config":{"maxTimeMs":1000,"requestRateRps":200}}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := worker.New(worker.WithSession("http-test"), worker.WithChunkSize(100))
	srv, err := newServer(ctx, w)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		_ = w.Close()
	})
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/commands", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func status(t *testing.T, ts *httptest.Server) StatusResponse {
	t.Helper()
	var s StatusResponse
	getJSON(t, ts.URL+"/api/v1/status", &s)
	return s
}

func TestServer_InitStart_RunsToCompletion(t *testing.T) {
	// GIVEN a served worker
	ts := newTestServer(t)

	// WHEN a topology is initialized and started
	assert.Equal(t, http.StatusAccepted, post(t, ts, initCommand).StatusCode)
	assert.Equal(t, http.StatusAccepted, post(t, ts, `{"type":"start"}`).StatusCode)

	// THEN status eventually reports completion with final metrics
	require.Eventually(t, func() bool {
		s := status(t, ts)
		return s.Status == sim.StatusCompleted && s.Complete != nil
	}, 10*time.Second, 10*time.Millisecond)
	s := status(t, ts)
	assert.Equal(t, "http-test", s.Session)
	assert.Equal(t, s.Complete.EventsProcessed, s.EventsSeen)
	require.NotNil(t, s.Complete.Metrics)
	assert.InDelta(t, 200, s.Complete.Metrics.CompletedRequests, 1)
	assert.Zero(t, s.Complete.Metrics.DroppedRequests)
	require.NotNil(t, s.LastSample)
	assert.Empty(t, s.Error)

	// AND every sample can be paged from an offset
	var all, tail SamplesResponse
	getJSON(t, ts.URL+"/api/v1/samples", &all)
	assert.Equal(t, 0, all.Offset)
	assert.Len(t, all.Samples, s.Complete.Metrics.Samples)
	getJSON(t, ts.URL+"/api/v1/samples?since=5", &tail)
	assert.Equal(t, 5, tail.Offset)
	assert.Equal(t, all.Samples[5:], tail.Samples)
}

func TestServer_ResetClearsView(t *testing.T) {
	ts := newTestServer(t)
	post(t, ts, initCommand)
	post(t, ts, `{"type":"start"}`)
	require.Eventually(t, func() bool { return status(t, ts).Complete != nil }, 10*time.Second, 10*time.Millisecond)

	post(t, ts, `{"type":"reset"}`)

	require.Eventually(t, func() bool {
		s := status(t, ts)
		return s.Status == sim.StatusIdle && s.Complete == nil && s.EventsSeen == 0
	}, 10*time.Second, 10*time.Millisecond)
	var samples SamplesResponse
	getJSON(t, ts.URL+"/api/v1/samples", &samples)
	assert.Empty(t, samples.Samples)
}

func TestServer_CommandBeforeInit_SurfacesError(t *testing.T) {
	ts := newTestServer(t)

	// The relay accepts the command; the worker reports the failure as an event.
	assert.Equal(t, http.StatusAccepted, post(t, ts, `{"type":"step"}`).StatusCode)

	require.Eventually(t, func() bool {
		return strings.Contains(status(t, ts).Error, worker.ErrNotInitialized.Error())
	}, 10*time.Second, 10*time.Millisecond)
}

func TestServer_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"type":`},
		{"missing type", `{"config":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}

	resp, err := http.Get(ts.URL + "/api/v1/samples?since=-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/api/v1/commands")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}
