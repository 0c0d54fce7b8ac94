// internal/sequencer/position.go
package sequencer

import (
	"hash/fnv"
	"io"
	"math/rand"
)

// positionSeedVersion identifies the counterbalancing seed function. Bump it
// if the key layout or hash ever changes, so stored layouts remain traceable.
const positionSeedVersion = 1

// positionSeparator keeps the seed key unambiguous when identifiers contain
// underscores or spaces.
const positionSeparator = "\x1f"

// highOnLeft derives the deterministic left/right placement for one pair.
// The same (participant, trait, high, low) tuple always yields the same side,
// so a participant rerunning a session sees an identical layout. Seed function
// v1: FNV-1a 64 over the separator-joined tuple feeding a single coin flip.
func highOnLeft(participantID, trait, highVideo, lowVideo string) bool {
	h := fnv.New64a()
	_, _ = io.WriteString(h, participantID)
	_, _ = io.WriteString(h, positionSeparator)
	_, _ = io.WriteString(h, trait)
	_, _ = io.WriteString(h, positionSeparator)
	_, _ = io.WriteString(h, highVideo)
	_, _ = io.WriteString(h, positionSeparator)
	_, _ = io.WriteString(h, lowVideo)

	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return rng.Intn(2) == 0
}
