// internal/sequencer/sequencer.go
package sequencer

import (
	"math/rand"
	"time"

	"github.com/perceptlab/pairwise/internal/appconfig"
	"github.com/perceptlab/pairwise/internal/catalog"
	"github.com/perceptlab/pairwise/internal/logging"
)

// Sequencer owns the stimulus catalog-derived trial sequence for one
// participant session. The driver holds only an index into it.
type Sequencer struct {
	cfg      appconfig.Config
	rng      *rand.Rand
	trials   []Trial
	practice []Trial
}

// New creates a Sequencer whose shuffles and randomized placements draw from
// a time-seeded source. Deterministic placements (the default policy) are
// unaffected by this seed.
func New(cfg appconfig.Config) *Sequencer {
	return NewSeeded(cfg, time.Now().UnixNano())
}

// NewSeeded creates a Sequencer with an explicit seed for the session RNG.
func NewSeeded(cfg appconfig.Config, seed int64) *Sequencer {
	return &Sequencer{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Generate builds the full main-sequence trial list: the cross product of
// every HIGH video with every LOW video per configured trait, positions
// counterbalanced, then (when enabled) reordered with the trait-spacing pass.
// Traits missing from the catalog or with an empty pool contribute zero
// trials and are reported as warnings.
func (s *Sequencer) Generate(cat catalog.Catalog, participantID string) []Trial {
	var trials []Trial
	id := 1

	for _, trait := range s.cfg.TraitList() {
		pool, ok := cat[trait]
		if !ok {
			logging.LogWarn("no stimuli defined for trait %q", trait)
			continue
		}
		if len(pool.High) == 0 || len(pool.Low) == 0 {
			logging.LogWarn("trait %q has an empty high or low pool", trait)
			continue
		}

		for _, pair := range s.traitPairs(pool) {
			trial := s.buildTrial(participantID, trait, pair.high, pair.low)
			trial.ID = id
			trials = append(trials, trial)
			id++
		}
	}

	logging.LogEvent("generated %d trials total", len(trials))

	if s.cfg.RandomizeTrialOrder {
		trials = applyOrdering(trials, s.cfg.MinSpacing(), s.rng)
		logging.LogEvent("randomized trial order with min trait spacing of %d", s.cfg.MinSpacing())
	}

	s.trials = trials
	return trials
}

type videoPair struct {
	high string
	low  string
}

// traitPairs enumerates the HIGH x LOW pairs for one trait. With no cap
// configured this is the full factorial; with a cap it cycles both lists,
// so the shorter list repeats until the cap is reached.
func (s *Sequencer) traitPairs(pool catalog.Pool) []videoPair {
	total := len(pool.High) * len(pool.Low)
	if limit := s.cfg.TrialsPerTraitCap; limit > 0 && limit < total {
		pairs := make([]videoPair, 0, limit)
		for i := 0; i < limit; i++ {
			pairs = append(pairs, videoPair{
				high: pool.High[i%len(pool.High)],
				low:  pool.Low[i%len(pool.Low)],
			})
		}
		return pairs
	}

	pairs := make([]videoPair, 0, total)
	for _, high := range pool.High {
		for _, low := range pool.Low {
			pairs = append(pairs, videoPair{high: high, low: low})
		}
	}
	return pairs
}

// buildTrial assembles one comparison trial, deciding the left/right placement
// by the configured policy: randomized draws from the session RNG, otherwise
// the deterministic participant-keyed layout.
func (s *Sequencer) buildTrial(participantID, trait, high, low string) Trial {
	onLeft := highOnLeft(participantID, trait, high, low)
	if s.cfg.RandomizePositions {
		onLeft = s.rng.Intn(2) == 0
	}

	base := s.cfg.VideoBasePath
	trial := Trial{
		Trait:     trait,
		HighVideo: high,
		LowVideo:  low,
	}
	if onLeft {
		trial.VideoLeft = high
		trial.VideoRight = low
		trial.VideoLeftPath = catalog.VideoPath(base, trait, "high", high)
		trial.VideoRightPath = catalog.VideoPath(base, trait, "low", low)
		trial.HighPosition = PositionLeft
	} else {
		trial.VideoLeft = low
		trial.VideoRight = high
		trial.VideoLeftPath = catalog.VideoPath(base, trait, "low", low)
		trial.VideoRightPath = catalog.VideoPath(base, trait, "high", high)
		trial.HighPosition = PositionRight
	}
	return trial
}

// applyOrdering shuffles trials within each trait group, then interleaves the
// groups greedily so that the same trait reappears no sooner than minSpacing
// trials later. When no trait satisfies the spacing (the remaining pool is too
// trait-homogeneous) the constraint is relaxed and any remaining trait
// qualifies; this guarantees termination at the cost of spacing near the end
// of skewed sequences. IDs are reassigned 1..N in the final order.
func applyOrdering(trials []Trial, minSpacing int, rng *rand.Rand) []Trial {
	if len(trials) <= 1 {
		return trials
	}

	var traitOrder []string
	groups := map[string][]Trial{}
	for _, trial := range trials {
		if _, ok := groups[trial.Trait]; !ok {
			traitOrder = append(traitOrder, trial.Trait)
		}
		groups[trial.Trait] = append(groups[trial.Trait], trial)
	}

	for _, trait := range traitOrder {
		group := groups[trait]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
	}

	result := make([]Trial, 0, len(trials))
	var recent []string

	remaining := func(trait string) bool { return len(groups[trait]) > 0 }
	blocked := func(trait string) bool {
		start := len(recent) - minSpacing
		if start < 0 {
			start = 0
		}
		for _, r := range recent[start:] {
			if r == trait {
				return true
			}
		}
		return false
	}

	for len(result) < len(trials) {
		var available []string
		for _, trait := range traitOrder {
			if remaining(trait) && !blocked(trait) {
				available = append(available, trait)
			}
		}
		if len(available) == 0 {
			for _, trait := range traitOrder {
				if remaining(trait) {
					available = append(available, trait)
				}
			}
		}

		chosen := available[rng.Intn(len(available))]
		group := groups[chosen]
		result = append(result, group[0])
		groups[chosen] = group[1:]
		recent = append(recent, chosen)
	}

	for i := range result {
		result[i].ID = i + 1
	}
	return result
}

// GeneratePractice samples distinct traits at random from those usable in the
// catalog, pairing the first HIGH with the first LOW video of each. Placement
// is always randomized, independent of the participant-keyed layout.
func (s *Sequencer) GeneratePractice(cat catalog.Catalog) []Trial {
	var available []string
	for _, trait := range s.cfg.TraitList() {
		if cat.Usable(trait) {
			available = append(available, trait)
		}
	}
	if len(available) == 0 {
		logging.LogWarn("no usable traits found for practice trials")
		s.practice = nil
		return nil
	}

	count := s.cfg.PracticeCount()
	if count > len(available) {
		count = len(available)
	}

	perm := s.rng.Perm(len(available))
	practice := make([]Trial, 0, count)
	for i := 0; i < count; i++ {
		trait := available[perm[i]]
		pool := cat[trait]
		high, low := pool.High[0], pool.Low[0]

		trial := Trial{
			Trait:     trait,
			HighVideo: high,
			LowVideo:  low,
		}
		base := s.cfg.VideoBasePath
		if s.rng.Intn(2) == 0 {
			trial.VideoLeft = high
			trial.VideoRight = low
			trial.VideoLeftPath = catalog.VideoPath(base, trait, "high", high)
			trial.VideoRightPath = catalog.VideoPath(base, trait, "low", low)
			trial.HighPosition = PositionLeft
		} else {
			trial.VideoLeft = low
			trial.VideoRight = high
			trial.VideoLeftPath = catalog.VideoPath(base, trait, "low", low)
			trial.VideoRightPath = catalog.VideoPath(base, trait, "high", high)
			trial.HighPosition = PositionRight
		}
		trial.IsPractice = true
		trial.PracticeSeq = i + 1
		practice = append(practice, trial)
	}

	s.practice = practice
	return practice
}

// Trial returns the main-sequence trial at a 0-based index. The cursor is
// externally driven; restoring an index resumes a session.
func (s *Sequencer) Trial(index int) (Trial, bool) {
	if index < 0 || index >= len(s.trials) {
		return Trial{}, false
	}
	return s.trials[index], true
}

// Len returns the number of main-sequence trials.
func (s *Sequencer) Len() int { return len(s.trials) }

// Trials returns the full main sequence in presentation order.
func (s *Sequencer) Trials() []Trial { return s.trials }

// Progress reports how many main trials a 0-based cursor has completed,
// along with the sequence total.
func (s *Sequencer) Progress(index int) (completed, total int) {
	total = len(s.trials)
	if index < 0 {
		return 0, total
	}
	if index > total {
		return total, total
	}
	return index, total
}

// SetTrials installs a previously saved main sequence, replacing any
// generated one. Used when resuming an interrupted session.
func (s *Sequencer) SetTrials(trials []Trial) { s.trials = trials }

// Practice returns the generated practice block.
func (s *Sequencer) Practice() []Trial { return s.practice }

// ShouldTakeBreak reports whether a rest screen is due before the trial at
// index. Never true on the first or last trial.
func (s *Sequencer) ShouldTakeBreak(index int) bool {
	if !s.cfg.EnableBreaks {
		return false
	}
	if index <= 0 || index >= len(s.trials)-1 {
		return false
	}
	return index%s.cfg.BreakInterval() == 0
}

// Summary aggregates the generated sequence for experimenter review.
type Summary struct {
	TotalTrials    int
	TrialsPerTrait map[string]int
	HighLeftCount  int
	HighRightCount int
}

// Summarize tallies the generated main sequence.
func (s *Sequencer) Summarize() Summary {
	summary := Summary{TrialsPerTrait: map[string]int{}}
	for _, trial := range s.trials {
		summary.TotalTrials++
		summary.TrialsPerTrait[trial.Trait]++
		if trial.HighPosition == PositionLeft {
			summary.HighLeftCount++
		} else {
			summary.HighRightCount++
		}
	}
	return summary
}
