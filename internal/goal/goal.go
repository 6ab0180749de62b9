// Package goal models savings goals and classifies how a user is
// tracking against them.
package goal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the coarse progress label attached to a goal.
type Status string

const (
	StatusCompleted      Status = "Completed"
	StatusNoPlan         Status = "No plan yet"
	StatusOnTrack        Status = "On track"
	StatusSlightlyBehind Status = "Slightly behind"
	StatusOffTrack       Status = "Off track"
)

// Goal types.
const (
	TypeSafety  = "safety"
	TypeDebt    = "debt"
	TypeFun     = "fun"
	TypeBigLife = "big_life"
)

// DefaultPriority is used when a goal is created without one.
const DefaultPriority = "medium"

// Goal is a savings target with an optional deadline and a planned
// monthly contribution.
type Goal struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	Name           string          `json:"name"`
	Type           string          `json:"goal_type"`
	Priority       string          `json:"priority"`
	Notes          string          `json:"notes,omitempty"`
	TargetAmount   decimal.Decimal `json:"target_amount"`
	CurrentAmount  decimal.Decimal `json:"current_amount"`
	PlannedMonthly decimal.Decimal `json:"planned_monthly"`
	TargetDate     *time.Time      `json:"target_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Classify labels the goal's progress as of now. A goal whose balance
// has reached the target is Completed regardless of plan or deadline.
// Without a deadline or a positive monthly contribution there is
// nothing to measure against, so the status is "No plan yet".
func (g *Goal) Classify(now time.Time) Status {
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		return StatusCompleted
	}
	if g.TargetDate == nil || !g.PlannedMonthly.IsPositive() {
		return StatusNoPlan
	}

	months := monthsBetween(now, *g.TargetDate)
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	required := remaining.Div(decimal.NewFromInt(int64(months)))
	if !required.IsPositive() {
		return StatusOnTrack
	}

	ratio := g.PlannedMonthly.Div(required)
	switch {
	case ratio.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return StatusOnTrack
	case ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.6)):
		return StatusSlightlyBehind
	default:
		return StatusOffTrack
	}
}

// RequiredMonthly is the contribution needed each remaining month to
// hit the target on time. Zero when the goal is met or has no deadline.
func (g *Goal) RequiredMonthly(now time.Time) decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if !remaining.IsPositive() || g.TargetDate == nil {
		return decimal.Zero
	}
	return remaining.Div(decimal.NewFromInt(int64(monthsBetween(now, *g.TargetDate))))
}

// monthsBetween counts calendar months from now to the deadline,
// flooring at 1 so a past-due goal still divides by a full month.
func monthsBetween(now, target time.Time) int {
	months := (target.Year()-now.Year())*12 + int(target.Month()) - int(now.Month())
	if months < 1 {
		return 1
	}
	return months
}
