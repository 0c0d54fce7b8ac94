// internal/session/logger.go
package session

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/perceptlab/pairwise/internal/appconfig"
	"github.com/perceptlab/pairwise/internal/logging"
)

// ResultColumns is the canonical ordered field list for the results store.
// Every results row carries exactly these columns in this order.
var ResultColumns = []string{
	"participant_id",
	"session",
	"trial_id",
	"trait",
	"video_left",
	"video_right",
	"high_position",
	"response",
	"response_correct",
	"response_time",
	"confidence_rating",
	"trial_start_time",
	"video_onset_time",
	"video_offset_time",
	"response_time_absolute",
}

// eventColumns is the event log column order.
var eventColumns = []string{"timestamp", "event_type", "trial_id", "details", "frame_number"}

// NoFrame marks an event with no renderer frame counter attached.
const NoFrame = -1

// Event is one append-only timestamped record. Events are never edited or
// removed once written.
type Event struct {
	Timestamp float64
	Type      string
	TrialID   string
	Details   string
	Frame     int
}

// TrialResult carries a completed trial's identifying fields and outcome.
// Negative times and a zero confidence mean "not collected" and persist as
// blank cells.
type TrialResult struct {
	TrialLabel   string
	Trait        string
	VideoLeft    string
	VideoRight   string
	HighPosition string

	Response        string // "left", "right", or "timeout"
	ResponseCorrect bool
	ResponseTime    float64
	Confidence      int

	TrialStart  float64
	VideoOnset  float64
	VideoOffset float64
	ResponseAt  float64
}

// Logger owns the event log and result collection for one participant
// session. Every append is mirrored to durable storage before the call
// returns, so a crash never loses an acknowledged record.
type Logger struct {
	cfg           appconfig.Config
	participantID string
	session       int
	sessionID     string
	clock         *Clock

	baseName    string
	dataPath    string
	eventPath   string
	summaryPath string

	events  []Event
	results []map[string]string
}

// NewLogger creates the session data files (participant id and a session
// timestamp embedded in every name, so repeated runs never collide) and
// starts the session clock.
func NewLogger(cfg appconfig.Config, participantID string, session int) (*Logger, error) {
	folder := cfg.DataFolderPath()
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data folder %q: %w", folder, err)
	}

	stamp := time.Now().Format("20060102_150405")
	baseName := fmt.Sprintf("%s_%s_%s", cfg.DataPrefix(), participantID, stamp)

	l := &Logger{
		cfg:           cfg,
		participantID: participantID,
		session:       session,
		sessionID:     uuid.NewString(),
		clock:         NewClock(),
		baseName:      baseName,
		dataPath:      filepath.Join(folder, baseName+"."+cfg.DataFileFormat()),
		eventPath:     filepath.Join(folder, baseName+"_events.csv"),
		summaryPath:   filepath.Join(folder, baseName+"_summary.json"),
	}

	if cfg.DataFileFormat() == "csv" {
		if err := writeHeader(l.dataPath, ResultColumns); err != nil {
			return nil, err
		}
	}
	if err := writeHeader(l.eventPath, eventColumns); err != nil {
		return nil, err
	}

	logging.LogEvent("session logger initialized, data file: %s", l.dataPath)
	return l, nil
}

// DataPath returns the results store path.
func (l *Logger) DataPath() string { return l.dataPath }

// EventLogPath returns the event log path.
func (l *Logger) EventLogPath() string { return l.eventPath }

// SummaryPath returns the summary record path.
func (l *Logger) SummaryPath() string { return l.summaryPath }

// SequenceSnapshotPath returns the session-scoped path for the trial-sequence
// snapshot.
func (l *Logger) SequenceSnapshotPath() string {
	return filepath.Join(l.cfg.DataFolderPath(), l.baseName+"_trials.csv")
}

// SessionID returns the UUID minted for this session.
func (l *Logger) SessionID() string { return l.sessionID }

// LogEvent captures the current session time, appends the event in memory,
// durably appends it to the event log, and returns the captured timestamp.
// trialID may be empty and frame may be NoFrame. A write failure is
// propagated: losing an event silently would invalidate the study.
func (l *Logger) LogEvent(eventType, trialID, details string, frame int) (float64, error) {
	timestamp := l.clock.Seconds()

	event := Event{
		Timestamp: timestamp,
		Type:      eventType,
		TrialID:   trialID,
		Details:   details,
		Frame:     frame,
	}
	l.events = append(l.events, event)

	frameCell := ""
	if frame != NoFrame {
		frameCell = strconv.Itoa(frame)
	}
	row := []string{
		formatSeconds(timestamp),
		eventType,
		trialID,
		details,
		frameCell,
	}
	if err := appendRow(l.eventPath, row); err != nil {
		return timestamp, fmt.Errorf("event log append failed: %w", err)
	}
	return timestamp, nil
}

// EventTime searches the in-memory log newest-first for the given event type,
// optionally restricted to one trial, and returns the first match. The same
// event type recurs across trials, so callers want the latest occurrence.
func (l *Logger) EventTime(eventType, trialID string) (float64, bool) {
	for i := len(l.events) - 1; i >= 0; i-- {
		e := l.events[i]
		if e.Type != eventType {
			continue
		}
		if trialID != "" && e.TrialID != trialID {
			continue
		}
		return e.Timestamp, true
	}
	return 0, false
}

// Events returns the in-memory event log.
func (l *Logger) Events() []Event { return l.events }

// LogTrialResult fills any absent field with an empty value per the canonical
// column list, stamps the participant and session identifiers, appends the
// result in memory, and durably appends a row to the results store. The caller
// is responsible for never passing practice trials here.
func (l *Logger) LogTrialResult(result TrialResult) error {
	row := map[string]string{}
	for _, col := range ResultColumns {
		row[col] = ""
	}
	row["participant_id"] = l.participantID
	row["session"] = strconv.Itoa(l.session)
	row["trial_id"] = result.TrialLabel
	row["trait"] = result.Trait
	row["video_left"] = result.VideoLeft
	row["video_right"] = result.VideoRight
	row["high_position"] = result.HighPosition
	row["response"] = result.Response
	if result.Response != "" {
		row["response_correct"] = strconv.FormatBool(result.ResponseCorrect)
	}
	if result.ResponseTime >= 0 {
		row["response_time"] = formatSeconds(result.ResponseTime)
	}
	if result.Confidence > 0 {
		row["confidence_rating"] = strconv.Itoa(result.Confidence)
	}
	row["trial_start_time"] = formatSeconds(result.TrialStart)
	row["video_onset_time"] = formatSeconds(result.VideoOnset)
	row["video_offset_time"] = formatSeconds(result.VideoOffset)
	if result.ResponseAt >= 0 {
		row["response_time_absolute"] = formatSeconds(result.ResponseAt)
	}

	l.results = append(l.results, row)

	if l.cfg.DataFileFormat() == "csv" {
		cells := make([]string, len(ResultColumns))
		for i, col := range ResultColumns {
			cells[i] = row[col]
		}
		if err := appendRow(l.dataPath, cells); err != nil {
			return fmt.Errorf("results store append failed: %w", err)
		}
	}

	logging.LogEvent("trial %s logged", result.TrialLabel)
	return nil
}

// TrialCount returns the number of results logged so far.
func (l *Logger) TrialCount() int { return len(l.results) }

// CurrentTime returns the live session time without emitting an event.
func (l *Logger) CurrentTime() float64 { return l.clock.Seconds() }

// ResetClock restarts the session clock at zero.
func (l *Logger) ResetClock() { l.clock.Reset() }

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func writeHeader(path string, columns []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Sync()
}

// appendRow durably appends one CSV row: open, write, flush, fsync, close.
// Reopening per append keeps every acknowledged row on disk across crashes.
func appendRow(path string, row []string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Sync()
}
