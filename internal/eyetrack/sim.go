// internal/eyetrack/sim.go
package eyetrack

// Sim is the simulation-mode tracker: it accepts every call, records what it
// was told for later inspection, and returns neutral zero-valued samples with
// the same shape as real hardware, so downstream logging code needs no
// branching by mode.
type Sim struct {
	Markers   []string
	Regions   []Region
	Recording bool
	Trials    []string
}

// NewSim returns a simulation tracker.
func NewSim() *Sim {
	return &Sim{}
}

func (s *Sim) SendMarker(text string) error {
	s.Markers = append(s.Markers, ClampMarker(text))
	return nil
}

func (s *Sim) DefineRegion(r Region) error {
	s.Regions = append(s.Regions, r)
	return nil
}

func (s *Sim) StartRecording(trialLabel string) error {
	s.Recording = true
	s.Trials = append(s.Trials, trialLabel)
	return nil
}

func (s *Sim) StopRecording() error {
	s.Recording = false
	return nil
}

func (s *Sim) LatestGaze() (Gaze, bool) {
	return Gaze{}, true
}
