// internal/logging/logging.go
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init routes the standard logger to stdout and, when logPath is non-empty,
// tees it into the given file, creating parent directories as needed.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	writers = append(writers, os.Stdout)

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	log.SetOutput(io.MultiWriter(writers...))
	return nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

func LogEvent(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Println(msg)
}

// LogWarn records a non-fatal condition, such as a configured trait with no
// stimuli. The run continues after these.
func LogWarn(format string, args ...any) {
	log.Println("WARNING: " + fmt.Sprintf(format, args...))
}

// LogStage records a session lifecycle message in a greppable key=value form.
func LogStage(stage, participant, trial string, payload any) {
	msg := buildStageMessage(stage, participant, trial, payload)
	log.Println(msg)
}

func buildStageMessage(stage, participant, trial string, payload any) string {
	st := strings.TrimSpace(stage)
	if st != "" {
		st = strings.ToUpper(st)
	}
	participantValue := strings.TrimSpace(participant)
	if participantValue == "" {
		participantValue = "unknown"
	}
	parts := []string{fmt.Sprintf("[%s]", st)}
	parts = append(parts, fmt.Sprintf("participant=%s", participantValue))
	if trial = strings.TrimSpace(trial); trial != "" {
		parts = append(parts, fmt.Sprintf("trial=%s", trial))
	}
	parts = append(parts, fmt.Sprintf("payload=%s", formatPayload(payload)))
	return strings.Join(parts, " ")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
