// Package sink writes streams of metrics samples to human and machine
// readable destinations.
package sink

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/simranmultani197/Simforge-sub000/sim"
)

// Sink consumes metrics samples in time order.
type Sink interface {
	Write(s sim.MetricsSample) error
	Close() error
}

// Open creates a file sink whose format follows the path's extension:
// .csv for CSV, anything else for JSON Lines.
func Open(path string) (Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating samples file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return NewCSV(f), nil
	}
	return NewJSONL(f), nil
}

// Text prints one aligned line per sample.
type Text struct {
	w io.Writer
}

// NewText returns a sink writing to w.
func NewText(w io.Writer) *Text { return &Text{w: w} }

func (t *Text) Write(s sim.MetricsSample) error {
	_, err := fmt.Fprintf(t.w, "t=%8.1fms  done=%5d  drop=%4d  tput=%8.1f rps  p50=%7.2f  p95=%7.2f  p99=%7.2f  queued=%d  active=%d\n",
		s.Time, s.Completed, s.Dropped, s.ThroughputRps,
		s.P50LatencyMs, s.P95LatencyMs, s.P99LatencyMs,
		sum(s.QueueDepths), sum(s.ActiveConnections))
	return err
}

func (t *Text) Close() error { return nil }

// JSONL writes one JSON object per line.
type JSONL struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONL returns a sink writing to w. If w is an io.Closer it is closed
// by Close.
func NewJSONL(w io.Writer) *JSONL {
	j := &JSONL{enc: json.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		j.closer = c
	}
	return j
}

func (j *JSONL) Write(s sim.MetricsSample) error {
	if err := j.enc.Encode(s); err != nil {
		return fmt.Errorf("encoding sample at t=%.3f: %w", s.Time, err)
	}
	return nil
}

func (j *JSONL) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

// csvColumns are the CSV header. Per-node maps are reduced to totals.
var csvColumns = []string{
	"time_ms", "window_ms", "completed", "dropped", "throughput_rps",
	"p50_ms", "p95_ms", "p99_ms", "queued_total", "active_total",
}

// CSV writes one row per sample after a header row.
type CSV struct {
	w       *csv.Writer
	closer  io.Closer
	started bool
}

// NewCSV returns a sink writing to w. If w is an io.Closer it is closed
// by Close.
func NewCSV(w io.Writer) *CSV {
	c := &CSV{w: csv.NewWriter(w)}
	if cl, ok := w.(io.Closer); ok {
		c.closer = cl
	}
	return c
}

func (c *CSV) Write(s sim.MetricsSample) error {
	if !c.started {
		if err := c.w.Write(csvColumns); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		c.started = true
	}
	row := []string{
		formatFloat(s.Time),
		formatFloat(s.WindowMs),
		strconv.Itoa(s.Completed),
		strconv.Itoa(s.Dropped),
		formatFloat(s.ThroughputRps),
		formatFloat(s.P50LatencyMs),
		formatFloat(s.P95LatencyMs),
		formatFloat(s.P99LatencyMs),
		strconv.Itoa(sum(s.QueueDepths)),
		strconv.Itoa(sum(s.ActiveConnections)),
	}
	if err := c.w.Write(row); err != nil {
		return fmt.Errorf("writing CSV row at t=%.3f: %w", s.Time, err)
	}
	return nil
}

func (c *CSV) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		err = errors.Join(err, c.closer.Close())
	}
	return err
}

// Multi fans every sample out to all of its sinks.
type Multi []Sink

func (m Multi) Write(s sim.MetricsSample) error {
	var errs []error
	for _, sk := range m {
		if err := sk.Write(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, sk := range m {
		if err := sk.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sum(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
