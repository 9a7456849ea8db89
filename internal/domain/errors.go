package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Lifecycle errors
var (
	// ErrInvalidState is returned when an operation is attempted from the wrong
	// lifecycle state (e.g. settling a pool still in StatusSetup).
	ErrInvalidState = errors.New("operation not allowed in current pool state")

	// ErrInsufficientSupply is returned by assignment when fewer competitors
	// are available than there are participants.
	ErrInsufficientSupply = errors.New("not enough competitors for every participant")

	// ErrEmptyRoster is returned when competitors are assigned to a pool
	// without participants.
	ErrEmptyRoster = errors.New("pool has no participants")

	// ErrNoPairings is returned when settling a pool that has no pairings.
	ErrNoPairings = errors.New("pool has no pairings to settle")
)

// Configuration errors
var (
	// ErrInvalidPool is returned when pool configuration fails validation
	// (empty name, non-positive entry fee, malformed prize shares).
	ErrInvalidPool = errors.New("invalid pool configuration")

	// ErrPrizeOvercommitted flags prize shares summing to more than 100 %.
	// Settlement would pay out more than the pool holds; the engine computes
	// it anyway, so rejecting it is the configuration layer's job.
	ErrPrizeOvercommitted = errors.New("prize shares exceed 100 percent of the pool")

	// ErrInvalidParticipant is returned for a blank participant name or an
	// out-of-range participant index.
	ErrInvalidParticipant = errors.New("invalid participant")

	// ErrInvalidCompetitor is returned for a blank competitor name.
	ErrInvalidCompetitor = errors.New("invalid competitor")
)

// Store errors
var (
	// ErrPoolNotFound is returned when no pool matches the given id.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrCompetitorNotFound is returned when no competitor matches the given id.
	ErrCompetitorNotFound = errors.New("competitor not found")

	// ErrStaleWrite is returned when a pool changed between read and write.
	ErrStaleWrite = errors.New("pool was modified concurrently")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors.
func IsNotFound(err error) bool {
	return isAny(err, ErrPoolNotFound, ErrCompetitorNotFound)
}

// IsConflict returns true for errors that represent a state conflict: a
// transition from the wrong state or a lost optimistic-concurrency race.
func IsConflict(err error) bool {
	return isAny(err, ErrInvalidState, ErrStaleWrite)
}

// IsUnprocessable returns true for requests that are well-formed but cannot be
// carried out against the pool's current contents.
func IsUnprocessable(err error) bool {
	return isAny(err, ErrInsufficientSupply, ErrEmptyRoster, ErrNoPairings)
}

// IsValidation returns true for configuration and input errors.
func IsValidation(err error) bool {
	return isAny(err, ErrInvalidPool, ErrPrizeOvercommitted, ErrInvalidParticipant, ErrInvalidCompetitor)
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
