// internal/session/summary_test.go
package session

import (
	"encoding/json"
	"math"
	"os"
	"testing"

	"github.com/perceptlab/pairwise/internal/appconfig"
)

func logResult(t *testing.T, l *Logger, label, response, highPosition string, rt float64) {
	t.Helper()
	err := l.LogTrialResult(TrialResult{
		TrialLabel:   label,
		Trait:        "Openness",
		HighPosition: highPosition,
		Response:     response,
		ResponseTime: rt,
	})
	if err != nil {
		t.Fatalf("LogTrialResult error: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	l := newTestLogger(t, appconfig.Config{})
	logResult(t, l, "1", "left", "left", 1.0)   // chose high
	logResult(t, l, "2", "right", "left", 2.0)  // chose low
	logResult(t, l, "3", "left", "left", 3.0)   // chose high
	logResult(t, l, "4", "timeout", "right", -1) // no RT

	s := l.Summarize()
	if s.TotalTrials != 4 {
		t.Fatalf("total: got %d want 4", s.TotalTrials)
	}
	if s.Responses["left"] != 2 || s.Responses["right"] != 1 || s.Responses["timeout"] != 1 {
		t.Fatalf("response counts wrong: %v", s.Responses)
	}
	if s.MeanResponseTime == nil || math.Abs(*s.MeanResponseTime-2.0) > 1e-9 {
		t.Fatalf("mean RT: got %v want 2.0", s.MeanResponseTime)
	}
	if s.HighChoiceCount != 2 {
		t.Fatalf("high choice count: got %d want 2", s.HighChoiceCount)
	}
	if s.HighChoiceRate == nil || math.Abs(*s.HighChoiceRate-0.5) > 1e-9 {
		t.Fatalf("high choice rate: got %v want 0.5", s.HighChoiceRate)
	}
	if s.ExperimentDuration < 0 {
		t.Fatalf("duration must be non-negative, got %f", s.ExperimentDuration)
	}
}

func TestSummarizeEmptySession(t *testing.T) {
	t.Parallel()

	l := newTestLogger(t, appconfig.Config{})
	s := l.Summarize()
	if s.TotalTrials != 0 {
		t.Fatalf("total: got %d want 0", s.TotalTrials)
	}
	if s.HighChoiceRate != nil {
		t.Fatal("high choice rate must be absent for an empty session")
	}
	if s.MeanResponseTime != nil {
		t.Fatal("mean RT must be absent for an empty session")
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	t.Parallel()

	l := newTestLogger(t, appconfig.Config{})
	logResult(t, l, "1", "left", "left", 1.5)

	if err := l.Finalize(); err != nil {
		t.Fatalf("first Finalize error: %v", err)
	}
	// Second call, as from an interrupt handler racing a clean shutdown.
	if err := l.Finalize(); err != nil {
		t.Fatalf("second Finalize error: %v", err)
	}

	data, err := os.ReadFile(l.SummaryPath())
	if err != nil {
		t.Fatal(err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("summary not valid JSON after double finalize: %v", err)
	}
	if s.TotalTrials != 1 {
		t.Fatalf("summary corrupted: total %d want 1", s.TotalTrials)
	}
	if s.SessionID != l.SessionID() {
		t.Fatal("summary must carry the session id")
	}
}
