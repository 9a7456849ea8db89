// Package domain defines the core business entities and types for the
// sweepstake manager: pools, participants, pairings and outcomes.
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// PoolStatus represents the lifecycle state of a pool.
type PoolStatus string

const (
	StatusSetup     PoolStatus = "setup"     // taking participants
	StatusActive    PoolStatus = "active"    // competitors assigned, awaiting result
	StatusCompleted PoolStatus = "completed" // finishing order drawn, winnings computed
)

// IsValid returns true if the status is a recognised lifecycle state.
func (s PoolStatus) IsValid() bool {
	return s == StatusSetup || s == StatusActive || s == StatusCompleted
}

// Hundred is 100 % expressed as a decimal.
var Hundred = decimal.NewFromInt(100)

// ──────────────────────────────────────────────────────────────────────────────
// Value objects
// ──────────────────────────────────────────────────────────────────────────────

// PrizeShare is the percentage of the total pool paid to one finishing place.
type PrizeShare struct {
	Place      int             `json:"place"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Participant is one entrant in a pool. Names are not unique; participants
// are told apart by position.
type Participant struct {
	Name    string `json:"name"`
	HasPaid bool   `json:"has_paid"`
}

// Pairing associates one participant with one competitor.
type Pairing struct {
	Participant string `json:"participant"`
	Competitor  string `json:"competitor"`
}

// Outcome is a pairing that finished in a prize place.
type Outcome struct {
	Pairing
	Place    int             `json:"place"`
	Winnings decimal.Decimal `json:"winnings"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Pool
// ──────────────────────────────────────────────────────────────────────────────

// Pool is one sweepstake: configuration, roster and results.
//
// Pools are treated as immutable values. The engine never edits a Pool in
// place; it returns a new one built from Clone.
type Pool struct {
	ID           uuid.UUID       `json:"id"            db:"id"`
	Name         string          `json:"name"          db:"name"`
	EntryFee     decimal.Decimal `json:"entry_fee"     db:"entry_fee"`
	PrizeShares  PrizeShares     `json:"prize_shares"  db:"prize_shares"`
	Status       PoolStatus      `json:"status"        db:"status"`
	Participants Participants    `json:"participants"  db:"participants"`
	Pairings     Pairings        `json:"pairings"      db:"pairings"`
	Outcomes     Outcomes        `json:"outcomes"      db:"outcomes"`
	Competitors  Competitors     `json:"competitors"   db:"competitors"`
	Version      int64           `json:"version"       db:"version"` // bumped by the store on every write
	CreatedAt    time.Time       `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"    db:"updated_at"`
}

// TotalPool returns the money collected: entry fee × participant count.
func (p *Pool) TotalPool() decimal.Decimal {
	return p.EntryFee.Mul(decimal.NewFromInt(int64(len(p.Participants))))
}

// PrizePercentageTotal returns the sum of all prize share percentages.
func (p *Pool) PrizePercentageTotal() decimal.Decimal {
	return sumPercentages(p.PrizeShares)
}

// RemainingPrizePercentage returns how much of the pool is not yet allocated
// to a prize place. Negative when the shares are overcommitted.
func (p *Pool) RemainingPrizePercentage() decimal.Decimal {
	return Hundred.Sub(p.PrizePercentageTotal())
}

// Overcommitted reports whether settlement would pay out more than the pool
// holds.
func (p *Pool) Overcommitted() bool {
	return p.PrizePercentageTotal().GreaterThan(Hundred)
}

// PaidCount returns how many participants have paid their entry fee.
func (p *Pool) PaidCount() int {
	n := 0
	for _, pt := range p.Participants {
		if pt.HasPaid {
			n++
		}
	}
	return n
}

// IsSetup returns true while the pool is still taking participants.
func (p *Pool) IsSetup() bool { return p.Status == StatusSetup }

// IsActive returns true once competitors are assigned and before settlement.
func (p *Pool) IsActive() bool { return p.Status == StatusActive }

// IsCompleted returns true after the pool has been settled.
func (p *Pool) IsCompleted() bool { return p.Status == StatusCompleted }

// Clone returns a deep copy that shares no slices with p.
func (p *Pool) Clone() *Pool {
	c := *p
	c.PrizeShares = slices.Clone(p.PrizeShares)
	c.Participants = slices.Clone(p.Participants)
	c.Pairings = slices.Clone(p.Pairings)
	c.Outcomes = slices.Clone(p.Outcomes)
	c.Competitors = slices.Clone(p.Competitors)
	return &c
}

// Validate checks the structural invariants of a pool: the status tag agrees
// with which of pairings/outcomes are populated, every participant is paired
// exactly once and in order, and no competitor is paired twice.
func (p *Pool) Validate() error {
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidState, p.Status)
	}

	switch p.Status {
	case StatusSetup:
		if len(p.Pairings) != 0 || len(p.Outcomes) != 0 {
			return fmt.Errorf("%w: setup pool carries pairings or outcomes", ErrInvalidState)
		}
		return nil
	case StatusActive:
		if len(p.Outcomes) != 0 {
			return fmt.Errorf("%w: active pool carries outcomes", ErrInvalidState)
		}
	case StatusCompleted:
		limit := min(len(p.PrizeShares), len(p.Pairings))
		if len(p.Outcomes) > limit {
			return fmt.Errorf("%w: %d outcomes for %d prize places", ErrInvalidState, len(p.Outcomes), limit)
		}
	}

	if len(p.Pairings) != len(p.Participants) {
		return fmt.Errorf("%w: %d pairings for %d participants",
			ErrInvalidState, len(p.Pairings), len(p.Participants))
	}
	seen := make(map[string]struct{}, len(p.Pairings))
	for i, pr := range p.Pairings {
		if pr.Participant != p.Participants[i].Name {
			return fmt.Errorf("%w: pairing %d is for %q, want %q",
				ErrInvalidState, i, pr.Participant, p.Participants[i].Name)
		}
		if _, dup := seen[pr.Competitor]; dup {
			return fmt.Errorf("%w: competitor %q paired twice", ErrInvalidState, pr.Competitor)
		}
		seen[pr.Competitor] = struct{}{}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Construction
// ──────────────────────────────────────────────────────────────────────────────

// DefaultPrizeShares is used when a pool is created without prize places.
func DefaultPrizeShares() PrizeShares {
	return PrizeShares{{Place: 1, Percentage: decimal.NewFromInt(60)}}
}

// NewPoolParams carries the validated inputs for creating a pool.
type NewPoolParams struct {
	Name        string
	EntryFee    decimal.Decimal
	PrizeShares PrizeShares
	Competitors []string
}

// NewPool builds a pool in StatusSetup. It is the configuration gate: prize
// shares summing past 100 % are rejected here so the engine never sees them
// from this path.
func NewPool(params NewPoolParams, now time.Time) (*Pool, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPool)
	}
	if !params.EntryFee.IsPositive() {
		return nil, fmt.Errorf("%w: entry fee must be positive", ErrInvalidPool)
	}

	shares := params.PrizeShares
	if len(shares) == 0 {
		shares = DefaultPrizeShares()
	}
	if err := ValidatePrizeShares(shares); err != nil {
		return nil, err
	}

	// A horse may be drawn once, so repeated names collapse to the first.
	competitors := make(Competitors, 0, len(params.Competitors))
	seen := make(map[string]struct{}, len(params.Competitors))
	for _, c := range params.Competitors {
		c = strings.TrimSpace(c)
		if _, dup := seen[c]; c == "" || dup {
			continue
		}
		seen[c] = struct{}{}
		competitors = append(competitors, c)
	}
	if len(competitors) == 0 {
		return nil, fmt.Errorf("%w: at least one competitor is required", ErrInvalidPool)
	}

	now = now.UTC()
	return &Pool{
		ID:           uuid.New(),
		Name:         name,
		EntryFee:     params.EntryFee,
		PrizeShares:  slices.Clone(shares),
		Status:       StatusSetup,
		Participants: Participants{},
		Pairings:     Pairings{},
		Outcomes:     Outcomes{},
		Competitors:  competitors,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidatePrizeShares checks that places run 1..n in order and every
// percentage lies in [0,100]. A total above 100 returns ErrPrizeOvercommitted.
func ValidatePrizeShares(shares PrizeShares) error {
	for i, s := range shares {
		if s.Place != i+1 {
			return fmt.Errorf("%w: prize share %d has place %d, want %d", ErrInvalidPool, i, s.Place, i+1)
		}
		if s.Percentage.IsNegative() || s.Percentage.GreaterThan(Hundred) {
			return fmt.Errorf("%w: place %d percentage %s outside [0,100]", ErrInvalidPool, s.Place, s.Percentage)
		}
	}
	if total := sumPercentages(shares); total.GreaterThan(Hundred) {
		return fmt.Errorf("%w: total %s%%", ErrPrizeOvercommitted, total)
	}
	return nil
}

// NextPrizeShare returns the share for the next place, taking whatever
// percentage is still unallocated. ok is false when nothing remains.
func NextPrizeShare(shares PrizeShares) (share PrizeShare, ok bool) {
	remaining := Hundred.Sub(sumPercentages(shares))
	if !remaining.IsPositive() {
		return PrizeShare{}, false
	}
	return PrizeShare{Place: len(shares) + 1, Percentage: remaining}, true
}

func sumPercentages(shares PrizeShares) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Percentage)
	}
	return total
}

// ──────────────────────────────────────────────────────────────────────────────
// Listing
// ──────────────────────────────────────────────────────────────────────────────

// FilterAndSort returns the pools whose name or status contains query
// (case-insensitively), most recently created first. Pools created at the
// same instant keep their input order. The input slice is not modified.
func FilterAndSort(pools []*Pool, query string) []*Pool {
	fold := cases.Fold()
	q := fold.String(query)

	out := make([]*Pool, 0, len(pools))
	for _, p := range pools {
		if strings.Contains(fold.String(p.Name), q) || strings.Contains(fold.String(string(p.Status)), q) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *Pool) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}
