package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/simranmultani197/Simforge-sub000/sim"
	"github.com/simranmultani197/Simforge-sub000/sim/worker"
)

// maxRetainedSamples bounds the samples kept for GET /samples.
const maxRetainedSamples = 10000

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Session    string             `json:"session"`
	Status     sim.Status         `json:"status"`
	EventsSeen int                `json:"eventsSeen"`
	LastSample *sim.MetricsSample `json:"lastSample,omitempty"`
	Complete   *worker.Message    `json:"complete,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// SamplesResponse is the body of GET /api/v1/samples.
type SamplesResponse struct {
	Offset  int                 `json:"offset"`
	Samples []sim.MetricsSample `json:"samples"`
}

// server relays worker commands over HTTP and keeps a view of the
// worker's event stream for polling clients.
type server struct {
	w      *worker.Worker
	router *mux.Router
	log    *logrus.Entry

	mu         sync.RWMutex
	status     sim.Status
	eventsSeen int
	samples    []sim.MetricsSample
	discarded  int // samples trimmed from the front of samples
	complete   *worker.Message
	lastErr    string
}

// newServer subscribes to w's events and starts it. The worker runs until
// ctx is cancelled.
func newServer(ctx context.Context, w *worker.Worker) (*server, error) {
	s := &server{
		w:      w,
		router: mux.NewRouter(),
		log:    logrus.WithFields(logrus.Fields{"component": "server", "session": w.Session()}),
		status: sim.StatusIdle,
	}
	events, err := w.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	go s.consume(events)
	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/commands", s.postCommand).Methods(http.MethodPost)
	api.HandleFunc("/status", s.getStatus).Methods(http.MethodGet)
	api.HandleFunc("/samples", s.getSamples).Methods(http.MethodGet)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) consume(events <-chan worker.Message) {
	for m := range events {
		s.mu.Lock()
		switch m.Type {
		case worker.MsgStatus:
			s.status = m.Status
			if m.Status == sim.StatusIdle {
				s.eventsSeen, s.samples, s.discarded = 0, nil, 0
				s.complete, s.lastErr = nil, ""
			}
		case worker.MsgEvents:
			s.eventsSeen += len(m.Events)
		case worker.MsgMetrics:
			s.samples = append(s.samples, *m.Sample)
			if over := len(s.samples) - maxRetainedSamples; over > 0 {
				s.samples = append([]sim.MetricsSample(nil), s.samples[over:]...)
				s.discarded += over
			}
		case worker.MsgComplete:
			done := m
			s.complete = &done
		case worker.MsgError:
			s.lastErr = m.Error
		}
		s.mu.Unlock()
	}
	s.log.Debug("event stream closed")
}

func (s *server) postCommand(w http.ResponseWriter, r *http.Request) {
	var cmd worker.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding command: %w", err))
		return
	}
	if cmd.Type == "" {
		writeError(w, http.StatusBadRequest, errors.New("command type is required"))
		return
	}
	if err := s.w.Send(cmd); err != nil {
		s.log.WithError(err).Error("relaying command")
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.log.WithField("command", cmd.Type).Info("command accepted")
	writeJSON(w, http.StatusAccepted, map[string]string{"session": s.w.Session(), "command": string(cmd.Type)})
}

func (s *server) getStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := StatusResponse{
		Session:    s.w.Session(),
		Status:     s.status,
		EventsSeen: s.eventsSeen,
		Complete:   s.complete,
		Error:      s.lastErr,
	}
	if n := len(s.samples); n > 0 {
		last := s.samples[n-1]
		resp.LastSample = &last
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}

// getSamples returns retained samples starting at the absolute index
// given by ?since= (default 0).
func (s *server) getSamples(w http.ResponseWriter, r *http.Request) {
	since := 0
	if q := r.URL.Query().Get("since"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid since %q", q))
			return
		}
		since = n
	}
	s.mu.RLock()
	start := max(since-s.discarded, 0)
	resp := SamplesResponse{Offset: s.discarded + start, Samples: []sim.MetricsSample{}}
	if start < len(s.samples) {
		resp.Samples = append(resp.Samples, s.samples[start:]...)
	} else {
		resp.Offset = s.discarded + len(s.samples)
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
