// Package engine implements the allocation and settlement rules for
// sweepstake pools. Every operation takes a pool snapshot and returns a new
// one; inputs are never modified and no operation performs I/O.
package engine

import (
	"fmt"
	"strings"

	"github.com/jaektomo/SweepstakeManager/internal/domain"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Engine
// ──────────────────────────────────────────────────────────────────────────────

// Engine draws pairings and finishing orders from an injected Source.
// It holds no other state and is safe for concurrent use when its Source is.
type Engine struct {
	src Source
}

// New creates an Engine. A nil src selects the process-wide generator.
func New(src Source) *Engine {
	if src == nil {
		src = DefaultSource()
	}
	return &Engine{src: src}
}

// ──────────────────────────────────────────────────────────────────────────────
// Assign — setup → active
// ──────────────────────────────────────────────────────────────────────────────

// Assign pairs every participant with a distinct competitor drawn from
// supply. supply is shuffled (Fisher–Yates) and participant i receives the
// i-th shuffled competitor. Duplicate names in supply are not removed.
func (e *Engine) Assign(pool *domain.Pool, supply []string) (*domain.Pool, error) {
	if pool.Status != domain.StatusSetup {
		return nil, fmt.Errorf("%w: assign requires %s, pool is %s",
			domain.ErrInvalidState, domain.StatusSetup, pool.Status)
	}
	if len(pool.Participants) == 0 {
		return nil, domain.ErrEmptyRoster
	}
	if len(supply) < len(pool.Participants) {
		return nil, fmt.Errorf("%w: %d competitors for %d participants",
			domain.ErrInsufficientSupply, len(supply), len(pool.Participants))
	}

	drawn := Shuffle(e.src, supply)

	next := pool.Clone()
	next.Pairings = make(domain.Pairings, len(pool.Participants))
	for i, pt := range pool.Participants {
		next.Pairings[i] = domain.Pairing{Participant: pt.Name, Competitor: drawn[i]}
	}
	next.Status = domain.StatusActive
	return next, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Settle — active → completed
// ──────────────────────────────────────────────────────────────────────────────

// Settle draws a uniformly random finishing order over the pool's pairings
// and pays each prize place its share of the total pool.
//
// Winnings are rounded per place to two decimals, half away from zero. The
// rounded sum may differ from the nominal total by up to half a cent per
// place; no place is adjusted to absorb the residual. Prize shares summing
// past 100 % are paid as configured.
func (e *Engine) Settle(pool *domain.Pool) (*domain.Pool, error) {
	if pool.Status != domain.StatusActive {
		return nil, fmt.Errorf("%w: settle requires %s, pool is %s",
			domain.ErrInvalidState, domain.StatusActive, pool.Status)
	}
	if len(pool.Pairings) == 0 {
		return nil, domain.ErrNoPairings
	}

	order := Shuffle(e.src, pool.Pairings)
	places := min(len(pool.PrizeShares), len(order))
	total := pool.TotalPool()

	next := pool.Clone()
	next.Outcomes = make(domain.Outcomes, places)
	for i := 0; i < places; i++ {
		next.Outcomes[i] = domain.Outcome{
			Pairing:  order[i],
			Place:    i + 1,
			Winnings: Payout(total, pool.PrizeShares[i].Percentage),
		}
	}
	next.Status = domain.StatusCompleted
	return next, nil
}

// Payout returns percentage % of total, rounded to cents half away from zero.
func Payout(total, percentage decimal.Decimal) decimal.Decimal {
	return total.Mul(percentage).Div(domain.Hundred).Round(2)
}

// PlacePayout is the projected payout for one prize place.
type PlacePayout struct {
	Place      int             `json:"place"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

// Preview computes what every prize place would pay with the current roster,
// using the same arithmetic as Settle.
func Preview(pool *domain.Pool) []PlacePayout {
	total := pool.TotalPool()
	out := make([]PlacePayout, len(pool.PrizeShares))
	for i, s := range pool.PrizeShares {
		out[i] = PlacePayout{Place: s.Place, Percentage: s.Percentage, Amount: Payout(total, s.Percentage)}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Roster edits
// ──────────────────────────────────────────────────────────────────────────────

// AddParticipant appends an unpaid participant. Only pools in setup accept
// new entrants; once competitors are assigned the roster is closed.
func AddParticipant(pool *domain.Pool, name string) (*domain.Pool, error) {
	if pool.Status != domain.StatusSetup {
		return nil, fmt.Errorf("%w: participants can only join a pool in %s",
			domain.ErrInvalidState, domain.StatusSetup)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidParticipant)
	}

	next := pool.Clone()
	next.Participants = append(next.Participants, domain.Participant{Name: name})
	return next, nil
}

// SetParticipantPaid records whether the participant at index has paid.
// Payment tracking is bookkeeping only and is allowed in every state.
func SetParticipantPaid(pool *domain.Pool, index int, paid bool) (*domain.Pool, error) {
	if index < 0 || index >= len(pool.Participants) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)",
			domain.ErrInvalidParticipant, index, len(pool.Participants))
	}

	next := pool.Clone()
	next.Participants[index].HasPaid = paid
	return next, nil
}
