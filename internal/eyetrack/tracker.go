// internal/eyetrack/tracker.go
// Package eyetrack defines the contract the experiment driver holds against
// the eye-tracking hardware. Everything here is best-effort: a missing or
// failing tracker degrades the session, it never aborts the behavioral
// trial sequence.
package eyetrack

import "unicode/utf8"

// MaxMarkerLen is the longest marker message the hardware accepts.
const MaxMarkerLen = 150

// Gaze is one gaze sample in screen pixel coordinates.
type Gaze struct {
	X         float64
	Y         float64
	PupilSize float64
}

// Region is a rectangular interest area, screen coordinates with the origin
// at the top-left.
type Region struct {
	ID     int
	Left   int
	Top    int
	Right  int
	Bottom int
	Label  string
}

// Tracker is the narrow interface the driver consumes. Implementations talk
// to real hardware or simulate it; the driver never branches by mode.
type Tracker interface {
	// SendMarker emits a timestamped marker message into the tracker's
	// data stream. Text longer than MaxMarkerLen is truncated.
	SendMarker(text string) error
	// DefineRegion registers an interest area for the current recording.
	DefineRegion(r Region) error
	// StartRecording begins sampling, tagged with the trial label.
	StartRecording(trialLabel string) error
	// StopRecording ends the current sampling run.
	StopRecording() error
	// LatestGaze returns the most recent sample, or false when none is
	// available.
	LatestGaze() (Gaze, bool)
}

// ClampMarker truncates text to the hardware's marker length limit without
// splitting a multi-byte rune at the boundary.
func ClampMarker(text string) string {
	if utf8.RuneCountInString(text) <= MaxMarkerLen {
		return text
	}
	return string([]rune(text)[:MaxMarkerLen])
}

// VideoRegions computes the padded interest areas around the two video
// positions. Video centers are given in renderer coordinates (screen center
// origin, Y up); the returned regions use tracker coordinates (top-left
// origin, Y down).
func VideoRegions(screenW, screenH, videoW, videoH, separation, padding int) (left, right Region) {
	halfW := videoW/2 + padding
	halfH := videoH/2 + padding

	centerX := screenW / 2
	centerY := screenH / 2
	offset := videoW/2 + separation/2

	leftCX := centerX - offset
	rightCX := centerX + offset

	left = Region{
		ID:     1,
		Left:   leftCX - halfW,
		Top:    centerY - halfH,
		Right:  leftCX + halfW,
		Bottom: centerY + halfH,
		Label:  "LEFT_VIDEO",
	}
	right = Region{
		ID:     2,
		Left:   rightCX - halfW,
		Top:    centerY - halfH,
		Right:  rightCX + halfW,
		Bottom: centerY + halfH,
		Label:  "RIGHT_VIDEO",
	}
	return left, right
}
