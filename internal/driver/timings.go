package driver

import (
	"encoding/json"
	"fmt"

	"escheck/internal/observ"
)

// TimingPayload is the machine-readable timing summary of a run.
type TimingPayload struct {
	Kind      string               `json:"kind"`
	Path      string               `json:"path,omitempty"`
	Version   string               `json:"version"`
	Files     int                  `json:"files"`
	Fragments int                  `json:"fragments"`
	CacheHits int                  `json:"cache_hits"`
	TotalMS   float64              `json:"total_ms"`
	Phases    []observ.PhaseReport `json:"phases"`
}

// TimingPayload returns the timing summary, or nil when timings were disabled.
func (s *RunState) TimingPayload() *TimingPayload {
	if s == nil || s.Timer == nil {
		return nil
	}
	report := s.Timer.Report()
	return &TimingPayload{
		Kind:      "run",
		Path:      s.OutputRoot,
		Version:   s.Version.String(),
		Files:     len(s.Checked),
		Fragments: s.Fragments,
		CacheHits: s.CacheHits,
		TotalMS:   report.TotalMS,
		Phases:    report.Phases,
	}
}

// Headline is the one-line form printed before the phase table.
func (p *TimingPayload) Headline() string {
	if p == nil {
		return ""
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms, %d files", p.Kind, p.TotalMS, p.Files)
	if p.CacheHits > 0 {
		msg = fmt.Sprintf("%s, %d cached", msg, p.CacheHits)
	}
	return msg
}

// JSON encodes the payload on one line.
func (p *TimingPayload) JSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return json.Marshal(p)
}
