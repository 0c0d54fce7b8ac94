// internal/session/summary.go
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Summary is the aggregate record written once per session at finalize time.
// Pointer fields are absent (null) when they cannot be computed.
type Summary struct {
	ParticipantID      string         `json:"participant_id"`
	Session            int            `json:"session"`
	SessionID          string         `json:"session_id"`
	TotalTrials        int            `json:"total_trials"`
	Responses          map[string]int `json:"responses"`
	MeanResponseTime   *float64       `json:"mean_response_time"`
	HighChoiceCount    int            `json:"high_choice_count"`
	HighChoiceRate     *float64       `json:"high_choice_rate"`
	ExperimentDuration float64        `json:"experiment_duration"`
}

// sessionDump is the whole-session representation used by the JSON storage mode.
type sessionDump struct {
	ParticipantID string              `json:"participant_id"`
	Session       int                 `json:"session"`
	SessionID     string              `json:"session_id"`
	Experiment    string              `json:"experiment"`
	Version       string              `json:"version"`
	Timestamp     string              `json:"timestamp"`
	Trials        []map[string]string `json:"trials"`
	Events        []Event             `json:"events"`
}

// Finalize flushes the whole-session representation (JSON storage mode only;
// CSV rows were already appended trial by trial) and writes the summary
// record. Both writes truncate and rewrite, so calling Finalize again — for
// example from an interrupt handler after a clean shutdown already ran — is
// harmless.
func (l *Logger) Finalize() error {
	if l.cfg.DataFileFormat() == "json" {
		dump := sessionDump{
			ParticipantID: l.participantID,
			Session:       l.session,
			SessionID:     l.sessionID,
			Experiment:    l.cfg.ExperimentName,
			Version:       l.cfg.ExperimentVersion,
			Timestamp:     time.Now().Format(time.RFC3339),
			Trials:        l.results,
			Events:        l.events,
		}
		if err := writeJSON(l.dataPath, dump); err != nil {
			return fmt.Errorf("could not write session data: %w", err)
		}
	}

	summary := l.Summarize()
	if err := writeJSON(l.summaryPath, summary); err != nil {
		return fmt.Errorf("could not write session summary: %w", err)
	}

	return nil
}

// Summarize computes the aggregate statistics over the logged results.
func (l *Logger) Summarize() Summary {
	summary := Summary{
		ParticipantID:      l.participantID,
		Session:            l.session,
		SessionID:          l.sessionID,
		TotalTrials:        len(l.results),
		Responses:          map[string]int{},
		ExperimentDuration: l.clock.Seconds(),
	}

	var rtSum float64
	var rtCount int
	for _, row := range l.results {
		if resp := row["response"]; resp != "" {
			summary.Responses[resp]++
		}
		if rt, err := strconv.ParseFloat(row["response_time"], 64); err == nil {
			rtSum += rt
			rtCount++
		}
		if row["response"] != "" && row["response"] == row["high_position"] {
			summary.HighChoiceCount++
		}
	}

	if rtCount > 0 {
		mean := rtSum / float64(rtCount)
		summary.MeanResponseTime = &mean
	}
	if summary.TotalTrials > 0 {
		rate := float64(summary.HighChoiceCount) / float64(summary.TotalTrials)
		summary.HighChoiceRate = &rate
	}

	return summary
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return err
	}
	return file.Sync()
}
