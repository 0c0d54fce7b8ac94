// internal/sequencer/persist.go
package sequencer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// sequenceColumns is the snapshot column order. Load depends on it.
var sequenceColumns = []string{
	"trial_id",
	"trait",
	"video_left",
	"video_right",
	"video_left_path",
	"video_right_path",
	"high_video",
	"low_video",
	"high_position",
	"is_practice",
}

// SaveSequence writes the trial list to a CSV snapshot so a session can be
// replayed or resumed with the identical sequence.
func SaveSequence(path string, trials []Trial) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create sequence file %q: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sequenceColumns); err != nil {
		return err
	}
	for _, t := range trials {
		row := []string{
			t.Label(),
			t.Trait,
			t.VideoLeft,
			t.VideoRight,
			t.VideoLeftPath,
			t.VideoRightPath,
			t.HighVideo,
			t.LowVideo,
			string(t.HighPosition),
			fmt.Sprintf("%t", t.IsPractice),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Sync()
}

// LoadSequence reads a saved snapshot back into trials, restoring main-trial
// IDs as integers and practice labels into the practice tag space.
func LoadSequence(path string) ([]Trial, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open sequence file %q: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse sequence file %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records[0]) != len(sequenceColumns) {
		return nil, fmt.Errorf("sequence file %q: expected %d columns, found %d", path, len(sequenceColumns), len(records[0]))
	}

	trials := make([]Trial, 0, len(records)-1)
	for _, rec := range records[1:] {
		id, practiceSeq, isPractice, err := ParseLabel(rec[0])
		if err != nil {
			return nil, fmt.Errorf("sequence file %q: %w", path, err)
		}
		trials = append(trials, Trial{
			ID:             id,
			PracticeSeq:    practiceSeq,
			IsPractice:     isPractice,
			Trait:          rec[1],
			VideoLeft:      rec[2],
			VideoRight:     rec[3],
			VideoLeftPath:  rec[4],
			VideoRightPath: rec[5],
			HighVideo:      rec[6],
			LowVideo:       rec[7],
			HighPosition:   Position(rec[8]),
		})
	}
	return trials, nil
}
