// internal/driver/driver.go
// Package driver runs a participant session: it walks the trial sequence,
// delegates stimulus presentation and response collection to a Presenter,
// and hands every completed main trial to the session logger. The sequencer
// and logger never call each other; this package is the only glue between
// them.
package driver

import (
	"errors"
	"fmt"
	"time"

	"github.com/perceptlab/pairwise/internal/appconfig"
	"github.com/perceptlab/pairwise/internal/eyetrack"
	"github.com/perceptlab/pairwise/internal/logging"
	"github.com/perceptlab/pairwise/internal/sequencer"
	"github.com/perceptlab/pairwise/internal/session"
)

// ErrAborted signals a participant- or experimenter-initiated quit. It is a
// controlled shutdown path: finalize still runs, and Run reports success.
var ErrAborted = errors.New("session aborted")

// Response is one collected judgment: which side was chosen (or "timeout")
// and how long the decision took. The driver records whatever elapsed
// duration it is told.
type Response struct {
	Choice  string
	Elapsed float64
}

// Presenter is the external presentation collaborator: rendering, input,
// and pacing live behind it. Every method may block; none spawn work that
// outlives the call.
type Presenter interface {
	// ShowMessage displays an instruction or break screen and waits for
	// acknowledgment.
	ShowMessage(text string) error
	// ShowFixation displays the fixation cross for the given duration.
	ShowFixation(seconds float64) error
	// ShowBlank displays the inter-trial blank for the given duration.
	ShowBlank(seconds float64) error
	// ShowVideos presents the trial's video pair for the given duration.
	ShowVideos(trial sequencer.Trial, seconds float64) error
	// CollectResponse asks the trait question and waits for a choice.
	// A zero timeout waits indefinitely. Implementations return ErrAborted
	// when the participant quits.
	CollectResponse(question string, timeout time.Duration) (Response, error)
	// CollectConfidence asks for a 1-5 confidence rating; 0 means skipped.
	CollectConfidence(prompt string) (int, error)
}

const (
	welcomeText = "Welcome to the Personality Perception Study!\n" +
		"You will view pairs of short video clips and judge which person\n" +
		"appears to have MORE of a particular personality trait."
	instructionText = "Watch both videos carefully, then answer with LEFT or RIGHT.\n" +
		"There are no right or wrong answers; respond on first impression."
	practiceStartText   = "We will begin with a few practice trials."
	experimentStartText = "Practice complete! The main experiment will now begin."
	endText             = "Thank you for participating! Your responses have been recorded."
	confidencePrompt    = "How confident are you? (1 = Not at all, 5 = Very confident)"
)

// Driver owns one session's control flow.
type Driver struct {
	cfg     appconfig.Config
	seq     *sequencer.Sequencer
	logger  *session.Logger
	tracker eyetrack.Tracker
	pres    Presenter

	// StartIndex resumes the main sequence from a saved cursor.
	StartIndex int

	trackerFailed bool
	finalized     bool
}

// New wires a session driver. tracker may be nil when eye tracking is
// disabled outright.
func New(cfg appconfig.Config, seq *sequencer.Sequencer, logger *session.Logger, tracker eyetrack.Tracker, pres Presenter) *Driver {
	return &Driver{
		cfg:     cfg,
		seq:     seq,
		logger:  logger,
		tracker: tracker,
		pres:    pres,
	}
}

// Run executes the whole session: instructions, practice block, main trials
// with breaks, and the end screen. Every exit path, including participant
// abort and durable-write failure, converges on exactly one finalize.
func (d *Driver) Run() (err error) {
	defer func() {
		if ferr := d.finalizeOnce(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	if _, err := d.logger.LogEvent("session_start", "", d.cfg.ExperimentName, session.NoFrame); err != nil {
		return err
	}

	if err := d.pres.ShowMessage(welcomeText); err != nil {
		return d.handleAbort(err)
	}
	if err := d.pres.ShowMessage(instructionText); err != nil {
		return d.handleAbort(err)
	}

	if d.cfg.IncludePractice && len(d.seq.Practice()) > 0 {
		if err := d.pres.ShowMessage(practiceStartText); err != nil {
			return d.handleAbort(err)
		}
		for _, trial := range d.seq.Practice() {
			if err := d.runTrial(trial); err != nil {
				return d.handleAbort(err)
			}
		}
		if err := d.pres.ShowMessage(experimentStartText); err != nil {
			return d.handleAbort(err)
		}
	}

	for i := d.StartIndex; ; i++ {
		trial, ok := d.seq.Trial(i)
		if !ok {
			// Out of range means the sequence is complete, never an error.
			break
		}
		if d.seq.ShouldTakeBreak(i) {
			done, total := d.seq.Progress(i)
			msg := fmt.Sprintf("Time for a short break.\nYou have completed %d out of %d trials.", done, total)
			if _, err := d.logger.LogEvent("break_start", "", "", session.NoFrame); err != nil {
				return err
			}
			if err := d.pres.ShowMessage(msg); err != nil {
				return d.handleAbort(err)
			}
			if _, err := d.logger.LogEvent("break_end", "", "", session.NoFrame); err != nil {
				return err
			}
		}
		if err := d.runTrial(trial); err != nil {
			return d.handleAbort(err)
		}
		if _, more := d.seq.Trial(i + 1); more {
			if err := d.pres.ShowBlank(d.cfg.InterTrialSeconds); err != nil {
				return d.handleAbort(err)
			}
		}
	}

	if _, err := d.logger.LogEvent("session_end", "", "", session.NoFrame); err != nil {
		return err
	}
	return d.pres.ShowMessage(endText)
}

// handleAbort converts a participant abort into a clean shutdown and passes
// every other error through.
func (d *Driver) handleAbort(err error) error {
	if errors.Is(err, ErrAborted) {
		logging.LogStage("abort", "", "", "participant quit")
		if _, logErr := d.logger.LogEvent("session_abort", "", "", session.NoFrame); logErr != nil {
			return logErr
		}
		return nil
	}
	return err
}

// runTrial presents one trial and, for main trials, assembles and persists
// its result record. Practice results are computed for feedback but never
// persisted.
func (d *Driver) runTrial(trial sequencer.Trial) error {
	label := trial.Label()

	d.trackerDo("start recording", func() error { return d.tracker.StartRecording(label) })
	d.defineRegions()
	d.trackerDo("send marker", func() error {
		return d.tracker.SendMarker(eyetrack.ClampMarker("TRIALID " + label))
	})

	if _, err := d.logger.LogEvent("trial_start", label, trial.Trait, session.NoFrame); err != nil {
		return err
	}

	if _, err := d.logger.LogEvent("fixation_onset", label, "", session.NoFrame); err != nil {
		return err
	}
	if err := d.pres.ShowFixation(d.cfg.FixationSeconds); err != nil {
		return err
	}

	if _, err := d.logger.LogEvent("video_onset", label, trial.VideoLeft+"|"+trial.VideoRight, session.NoFrame); err != nil {
		return err
	}
	d.trackerDo("send marker", func() error { return d.tracker.SendMarker("VIDEO_ONSET") })
	if err := d.pres.ShowVideos(trial, d.cfg.VideoSeconds); err != nil {
		return err
	}
	if _, err := d.logger.LogEvent("video_offset", label, "", session.NoFrame); err != nil {
		return err
	}
	d.trackerDo("send marker", func() error { return d.tracker.SendMarker("VIDEO_OFFSET") })

	resp, err := d.pres.CollectResponse(d.cfg.Question(trial.Trait), d.cfg.ResponseTimeout())
	if err != nil {
		return err
	}
	responseAt, err := d.logger.LogEvent("response", label, resp.Choice, session.NoFrame)
	if err != nil {
		return err
	}

	confidence := 0
	if d.cfg.EnableConfidence && resp.Choice != "timeout" {
		confidence, err = d.pres.CollectConfidence(confidencePrompt)
		if err != nil {
			return err
		}
		if confidence > 0 {
			if _, err := d.logger.LogEvent("confidence", label, fmt.Sprintf("%d", confidence), session.NoFrame); err != nil {
				return err
			}
		}
	}

	d.trackerDo("stop recording", func() error { return d.tracker.StopRecording() })

	correct := resp.Choice == string(trial.HighPosition)

	if trial.IsPractice {
		feedback := "You chose the lower-trait video."
		if correct {
			feedback = "You chose the higher-trait video."
		}
		return d.pres.ShowMessage("Practice trial complete. " + feedback)
	}

	trialStart, _ := d.logger.EventTime("trial_start", label)
	videoOnset, _ := d.logger.EventTime("video_onset", label)
	videoOffset, _ := d.logger.EventTime("video_offset", label)

	return d.logger.LogTrialResult(session.TrialResult{
		TrialLabel:      label,
		Trait:           trial.Trait,
		VideoLeft:       trial.VideoLeft,
		VideoRight:      trial.VideoRight,
		HighPosition:    string(trial.HighPosition),
		Response:        resp.Choice,
		ResponseCorrect: correct,
		ResponseTime:    resp.Elapsed,
		Confidence:      confidence,
		TrialStart:      trialStart,
		VideoOnset:      videoOnset,
		VideoOffset:     videoOffset,
		ResponseAt:      responseAt,
	})
}

// defineRegions registers the left/right video interest areas when the
// geometry is configured.
func (d *Driver) defineRegions() {
	et := d.cfg.EyeTracker
	if et.ScreenWidth <= 0 || et.VideoWidth <= 0 {
		return
	}
	left, right := eyetrack.VideoRegions(et.ScreenWidth, et.ScreenHeight, et.VideoWidth, et.VideoHeight, et.VideoSeparation, et.InterestPadding)
	d.trackerDo("define region", func() error { return d.tracker.DefineRegion(left) })
	d.trackerDo("define region", func() error { return d.tracker.DefineRegion(right) })
}

// trackerDo runs a best-effort tracker operation. The first failure switches
// the session into degraded mode: it is reported once and the tracker is not
// called again.
func (d *Driver) trackerDo(op string, fn func() error) {
	if d.tracker == nil || d.trackerFailed {
		return
	}
	if err := fn(); err != nil {
		d.trackerFailed = true
		logging.LogWarn("eye tracker %s failed, continuing without eye tracking: %v", op, err)
	}
}

// finalizeOnce guarantees the logger is finalized exactly once regardless of
// which path ended the session.
func (d *Driver) finalizeOnce() error {
	if d.finalized {
		return nil
	}
	d.finalized = true
	return d.logger.Finalize()
}
