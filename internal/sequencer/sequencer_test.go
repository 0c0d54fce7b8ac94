// internal/sequencer/sequencer_test.go
package sequencer

import (
	"sort"
	"testing"

	"github.com/perceptlab/pairwise/internal/appconfig"
	"github.com/perceptlab/pairwise/internal/catalog"
)

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		"Openness":     {High: []string{"h1.mp4", "h2.mp4"}, Low: []string{"l1.mp4"}},
		"Extraversion": {High: []string{"e_h1.mp4", "e_h2.mp4"}, Low: []string{"e_l1.mp4", "e_l2.mp4"}},
	}
}

func trialKeys(trials []Trial) []string {
	keys := make([]string, 0, len(trials))
	for _, t := range trials {
		keys = append(keys, t.key())
	}
	sort.Strings(keys)
	return keys
}

func TestGenerateFullFactorial(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{Traits: []string{"Openness"}}
	seq := NewSeeded(cfg, 1)
	trials := seq.Generate(testCatalog(), "P01")

	if len(trials) != 2 {
		t.Fatalf("expected 2 trials for 2 high x 1 low, got %d", len(trials))
	}
	gotPairs := map[string]bool{}
	for _, trial := range trials {
		if trial.Trait != "Openness" {
			t.Fatalf("unexpected trait %q", trial.Trait)
		}
		gotPairs[trial.HighVideo+"/"+trial.LowVideo] = true
	}
	for _, want := range []string{"h1.mp4/l1.mp4", "h2.mp4/l1.mp4"} {
		if !gotPairs[want] {
			t.Fatalf("missing pair %s in %v", want, gotPairs)
		}
	}
}

func TestGenerateTrialInvariants(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{
		Traits:              []string{"Openness", "Extraversion"},
		RandomizeTrialOrder: true,
		RandomizePositions:  true,
	}
	seq := NewSeeded(cfg, 42)
	trials := seq.Generate(testCatalog(), "P02")

	if len(trials) != 2+4 {
		t.Fatalf("expected 6 trials, got %d", len(trials))
	}
	for i, trial := range trials {
		if trial.ID != i+1 {
			t.Fatalf("trial at index %d has ID %d, want %d", i, trial.ID, i+1)
		}
		if trial.HighVideo == trial.LowVideo {
			t.Fatalf("trial %d: high and low video identical: %s", trial.ID, trial.HighVideo)
		}
		leftIsHigh := trial.VideoLeft == trial.HighVideo
		rightIsHigh := trial.VideoRight == trial.HighVideo
		if leftIsHigh == rightIsHigh {
			t.Fatalf("trial %d: exactly one side must hold the high video", trial.ID)
		}
		if leftIsHigh && trial.HighPosition != PositionLeft {
			t.Fatalf("trial %d: high on left but position %q", trial.ID, trial.HighPosition)
		}
		if rightIsHigh && trial.HighPosition != PositionRight {
			t.Fatalf("trial %d: high on right but position %q", trial.ID, trial.HighPosition)
		}
		if leftIsHigh && trial.VideoRight != trial.LowVideo {
			t.Fatalf("trial %d: right side should hold the low video", trial.ID)
		}
	}
}

func TestGenerateSkipsMissingTraits(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{Traits: []string{"Agreeableness", "Openness", "Conscientiousness"}}
	seq := NewSeeded(cfg, 1)
	trials := seq.Generate(testCatalog(), "P03")

	for _, trial := range trials {
		if trial.Trait != "Openness" {
			t.Fatalf("trait %q should have contributed zero trials", trial.Trait)
		}
	}
	if len(trials) != 2 {
		t.Fatalf("expected 2 trials from the one present trait, got %d", len(trials))
	}
}

func TestGenerateEmptyPoolSkipped(t *testing.T) {
	t.Parallel()

	cat := catalog.Catalog{"Openness": {High: []string{"h1.mp4"}, Low: nil}}
	cfg := appconfig.Config{Traits: []string{"Openness"}}
	seq := NewSeeded(cfg, 1)
	if trials := seq.Generate(cat, "P04"); len(trials) != 0 {
		t.Fatalf("expected zero trials for empty low pool, got %d", len(trials))
	}
}

func TestGenerateBoundedMode(t *testing.T) {
	t.Parallel()

	cat := catalog.Catalog{
		"Openness": {
			High: []string{"h1.mp4", "h2.mp4", "h3.mp4"},
			Low:  []string{"l1.mp4", "l2.mp4"},
		},
	}
	cfg := appconfig.Config{Traits: []string{"Openness"}, TrialsPerTraitCap: 4}
	seq := NewSeeded(cfg, 1)
	trials := seq.Generate(cat, "P05")

	if len(trials) != 4 {
		t.Fatalf("expected capped count of 4, got %d", len(trials))
	}
	// Cycling both lists: high advances every pair, low wraps.
	wantHigh := []string{"h1.mp4", "h2.mp4", "h3.mp4", "h1.mp4"}
	wantLow := []string{"l1.mp4", "l2.mp4", "l1.mp4", "l2.mp4"}
	for i, trial := range trials {
		if trial.HighVideo != wantHigh[i] || trial.LowVideo != wantLow[i] {
			t.Fatalf("pair %d: got (%s,%s) want (%s,%s)", i, trial.HighVideo, trial.LowVideo, wantHigh[i], wantLow[i])
		}
	}
}

func TestDeterministicPositions(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{Traits: []string{"Openness", "Extraversion"}}

	first := NewSeeded(cfg, 1).Generate(testCatalog(), "P06")
	second := NewSeeded(cfg, 99).Generate(testCatalog(), "P06")

	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].HighPosition != second[i].HighPosition {
			t.Fatalf("trial %d: deterministic position differs across runs", i)
		}
		if first[i].VideoLeft != second[i].VideoLeft {
			t.Fatalf("trial %d: layout differs across runs", i)
		}
	}

	if got := highOnLeft("P06", "Openness", "h1.mp4", "l1.mp4"); got != highOnLeft("P06", "Openness", "h1.mp4", "l1.mp4") {
		t.Fatal("highOnLeft is not stable")
	}
}

func TestApplyOrderingPreservesTrialSet(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{Traits: []string{"Openness", "Extraversion"}}
	seq := NewSeeded(cfg, 7)
	before := seq.Generate(testCatalog(), "P07")

	after := applyOrdering(append([]Trial(nil), before...), 2, seq.rng)

	if got, want := trialKeys(after), trialKeys(before); len(got) != len(want) {
		t.Fatalf("reordering changed trial count: %d vs %d", len(got), len(want))
	} else {
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("reordering changed the trial set at %d: %s vs %s", i, got[i], want[i])
			}
		}
	}

	for i, trial := range after {
		if trial.ID != i+1 {
			t.Fatalf("IDs not reassigned to presentation order: index %d has ID %d", i, trial.ID)
		}
	}
}

func TestApplyOrderingSpacing(t *testing.T) {
	t.Parallel()

	// Two balanced traits with spacing 1 force strict alternation: once one
	// trait is picked the other is the only unblocked choice, so no two
	// consecutive trials may share a trait.
	cat := catalog.Catalog{
		"A": {High: []string{"a1", "a2"}, Low: []string{"a3", "a4"}},
		"B": {High: []string{"b1", "b2"}, Low: []string{"b3", "b4"}},
	}
	cfg := appconfig.Config{
		Traits:              []string{"A", "B"},
		RandomizeTrialOrder: true,
		MinTraitSpacing:     1,
	}
	trials := NewSeeded(cfg, 3).Generate(cat, "P08")
	if len(trials) != 8 {
		t.Fatalf("setup: expected 8 trials, got %d", len(trials))
	}
	for i := 1; i < len(trials); i++ {
		if trials[i].Trait == trials[i-1].Trait {
			t.Fatalf("consecutive trials %d,%d share trait %q", i-1, i, trials[i].Trait)
		}
	}
}

func TestApplyOrderingRelaxationTerminates(t *testing.T) {
	t.Parallel()

	// A single trait can never satisfy spacing; the relaxation path must
	// still emit every trial.
	cat := catalog.Catalog{
		"Openness": {High: []string{"h1", "h2", "h3"}, Low: []string{"l1", "l2"}},
	}
	cfg := appconfig.Config{
		Traits:              []string{"Openness"},
		RandomizeTrialOrder: true,
		MinTraitSpacing:     2,
	}
	trials := NewSeeded(cfg, 11).Generate(cat, "P09")
	if len(trials) != 6 {
		t.Fatalf("relaxation lost trials: got %d want 6", len(trials))
	}
}

func TestGeneratePractice(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{
		Traits:         []string{"Openness", "Extraversion"},
		PracticeTrials: 5, // more than available traits
	}
	seq := NewSeeded(cfg, 5)
	practice := seq.GeneratePractice(testCatalog())

	if len(practice) != 2 {
		t.Fatalf("expected practice capped at trait count 2, got %d", len(practice))
	}
	seen := map[string]bool{}
	for i, trial := range practice {
		if !trial.IsPractice {
			t.Fatalf("practice trial %d not tagged", i)
		}
		if trial.PracticeSeq != i+1 {
			t.Fatalf("practice seq: got %d want %d", trial.PracticeSeq, i+1)
		}
		if seen[trial.Trait] {
			t.Fatalf("duplicate practice trait %q", trial.Trait)
		}
		seen[trial.Trait] = true

		pool := testCatalog()[trial.Trait]
		if trial.HighVideo != pool.High[0] || trial.LowVideo != pool.Low[0] {
			t.Fatalf("practice should use first high/low videos, got %s/%s", trial.HighVideo, trial.LowVideo)
		}
	}

	if got := practice[0].Label(); got != "practice_1" {
		t.Fatalf("practice label: got %q want practice_1", got)
	}
}

func TestTrialAccess(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{Traits: []string{"Openness"}}
	seq := NewSeeded(cfg, 1)
	seq.Generate(testCatalog(), "P10")

	if _, ok := seq.Trial(0); !ok {
		t.Fatal("expected trial at index 0")
	}
	if _, ok := seq.Trial(seq.Len()); ok {
		t.Fatal("expected out-of-range index to report absence")
	}
	if _, ok := seq.Trial(-1); ok {
		t.Fatal("expected negative index to report absence")
	}

	if done, total := seq.Progress(0); done != 0 || total != seq.Len() {
		t.Fatalf("progress at start: %d/%d", done, total)
	}
	if done, total := seq.Progress(seq.Len() + 5); done != total {
		t.Fatalf("progress past the end must clamp: %d/%d", done, total)
	}
}

func TestShouldTakeBreak(t *testing.T) {
	t.Parallel()

	cat := catalog.Catalog{
		"A": {High: make100(), Low: []string{"low"}},
	}
	cfg := appconfig.Config{
		Traits:              []string{"A"},
		EnableBreaks:        true,
		TrialsBetweenBreaks: 20,
	}
	seq := NewSeeded(cfg, 1)
	trials := seq.Generate(cat, "P11")
	if len(trials) != 100 {
		t.Fatalf("setup: expected 100 trials, got %d", len(trials))
	}

	tests := []struct {
		index int
		want  bool
	}{
		{index: 0, want: false},
		{index: 20, want: true},
		{index: 40, want: true},
		{index: 21, want: false},
		{index: 99, want: false}, // last trial
	}
	for _, tt := range tests {
		if got := seq.ShouldTakeBreak(tt.index); got != tt.want {
			t.Fatalf("ShouldTakeBreak(%d)=%v want %v", tt.index, got, tt.want)
		}
	}

	disabled := NewSeeded(appconfig.Config{Traits: []string{"A"}}, 1)
	disabled.Generate(cat, "P11")
	if disabled.ShouldTakeBreak(20) {
		t.Fatal("breaks disabled: expected false")
	}
}

func make100() []string {
	highs := make([]string, 100)
	for i := range highs {
		highs[i] = "high_" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	return highs
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	cfg := appconfig.Config{Traits: []string{"Openness", "Extraversion"}}
	seq := NewSeeded(cfg, 1)
	seq.Generate(testCatalog(), "P12")

	summary := seq.Summarize()
	if summary.TotalTrials != 6 {
		t.Fatalf("total: got %d want 6", summary.TotalTrials)
	}
	if summary.TrialsPerTrait["Openness"] != 2 || summary.TrialsPerTrait["Extraversion"] != 4 {
		t.Fatalf("per-trait counts wrong: %v", summary.TrialsPerTrait)
	}
	if summary.HighLeftCount+summary.HighRightCount != summary.TotalTrials {
		t.Fatal("position counts must partition the total")
	}
}
