// internal/sequencer/trial.go
// Package sequencer builds the balanced, counterbalanced trial sequence for a
// pairwise personality perception session and exposes deterministic, resumable
// access to it.
package sequencer

import (
	"fmt"
	"strconv"
	"strings"
)

// Position names the screen side holding a stimulus.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// practicePrefix tags practice trial labels. Practice identifiers live in
// their own tag space and never collide with main-sequence integer IDs.
const practicePrefix = "practice_"

// Trial is a single pairwise comparison. It is created once during sequence
// generation and never mutated afterwards.
type Trial struct {
	// ID is the 1-based position in the main sequence. Zero for practice trials.
	ID int
	// PracticeSeq is the 1-based position in the practice block. Zero for main trials.
	PracticeSeq int
	IsPractice  bool

	Trait string

	VideoLeft      string
	VideoRight     string
	VideoLeftPath  string
	VideoRightPath string

	// HighVideo and LowVideo are the same two identifiers, tagged by trait
	// level regardless of screen position.
	HighVideo string
	LowVideo  string
	// HighPosition names the side holding HighVideo.
	HighPosition Position
}

// Label returns the external identifier: the integer ID for main trials,
// "practice_N" for practice trials.
func (t Trial) Label() string {
	if t.IsPractice {
		return fmt.Sprintf("%s%d", practicePrefix, t.PracticeSeq)
	}
	return strconv.Itoa(t.ID)
}

// ParseLabel splits a trial label back into its identifier space.
func ParseLabel(label string) (id int, practiceSeq int, isPractice bool, err error) {
	if rest, ok := strings.CutPrefix(label, practicePrefix); ok {
		n, convErr := strconv.Atoi(rest)
		if convErr != nil {
			return 0, 0, false, fmt.Errorf("invalid practice trial label %q", label)
		}
		return 0, n, true, nil
	}
	n, convErr := strconv.Atoi(label)
	if convErr != nil {
		return 0, 0, false, fmt.Errorf("invalid trial label %q", label)
	}
	return n, 0, false, nil
}

// key identifies a trial independent of its sequence position. Reordering
// changes IDs but never the set of keys.
func (t Trial) key() string {
	return t.Trait + "|" + t.HighVideo + "|" + t.LowVideo + "|" + string(t.HighPosition)
}
