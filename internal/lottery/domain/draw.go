package domain

import (
	"math/rand/v2"
	"slices"
	"strings"
)

// DrawMode selects how candidates are picked from the waiting pool.
type DrawMode int

const (
	// DrawModeUnspecified represents an invalid draw mode value.
	DrawModeUnspecified DrawMode = iota
	// DrawModeRandom picks an unbiased random subset of the pool.
	DrawModeRandom
	// DrawModeFIFO picks the earliest-joined entrants in order.
	DrawModeFIFO
)

// DrawModeLabel returns the string label for a draw mode.
func DrawModeLabel(mode DrawMode) string {
	switch mode {
	case DrawModeRandom:
		return "RANDOM"
	case DrawModeFIFO:
		return "FIFO"
	default:
		return "UNSPECIFIED"
	}
}

// DrawModeFromLabel converts a draw mode label to a DrawMode value.
func DrawModeFromLabel(label string) DrawMode {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "RANDOM":
		return DrawModeRandom
	case "FIFO":
		return DrawModeFIFO
	default:
		return DrawModeUnspecified
	}
}

// SelectCandidates picks up to n ids from pool without mutating it.
//
// FIFO returns a prefix of pool in original order. RANDOM shuffles a copy of
// the pool with rng (every permutation equally likely) and takes the first n,
// so callers must seed rng with fresh entropy per draw. The result never
// exceeds min(n, len(pool)) and contains no duplicates.
func SelectCandidates(pool []string, n int, mode DrawMode, rng *rand.Rand) ([]string, error) {
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil, nil
	}

	switch mode {
	case DrawModeFIFO:
		return slices.Clone(pool[:n]), nil
	case DrawModeRandom:
		if rng == nil {
			return nil, ErrInvalidDrawMode
		}
		shuffled := slices.Clone(pool)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[:n], nil
	default:
		return nil, ErrInvalidDrawMode
	}
}

// eligiblePool returns the waiting list minus anyone already invited or
// enrolled. Duplicate membership should never happen; the filter keeps a
// corrupted roster from producing a double invite.
func eligiblePool(event Event) []string {
	pool := make([]string, 0, len(event.Waiting))
	for _, entrantID := range event.Waiting {
		if slices.Contains(event.Invited, entrantID) {
			continue
		}
		if slices.Contains(event.Enrolled, entrantID) {
			continue
		}
		pool = append(pool, entrantID)
	}
	return pool
}
