package lifecycle

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// DefaultWarningThreshold is the near-miss band before a deadline.
const DefaultWarningThreshold = 5 * time.Minute

// Deadlines carries SLA-derived fields for a ticket at a given instant.
// Nil pointers mean the corresponding SLA minutes are unset and no SLA is
// tracked for that milestone.
type Deadlines struct {
	ResponseDeadline   *time.Time
	ResolutionDeadline *time.Time

	RemainingResponse   *time.Duration
	RemainingResolution *time.Duration

	ResponseOverdue   bool
	ResponseWarning   bool
	ResolutionOverdue bool
	ResolutionWarning bool
}

// ComputeDeadlines derives deadline fields from (ticket, now). It is a
// pure function: callers recompute on every tick so a warning ticket
// becomes overdue without a fresh fetch.
//
// A milestone is overdue when its remaining time is <= 0 and the matching
// timestamp (responded_at / resolved_at) is still unset; once the
// timestamp is set the milestone can never report overdue or warning
// again. The warning band is 0 < remaining <= warnThreshold.
func ComputeDeadlines(t *domain.Ticket, now time.Time, warnThreshold time.Duration) Deadlines {
	if warnThreshold <= 0 {
		warnThreshold = DefaultWarningThreshold
	}
	var d Deadlines

	if t.SLAResponseMinutes > 0 {
		deadline := t.CreatedAt.Add(time.Duration(t.SLAResponseMinutes) * time.Minute)
		remaining := deadline.Sub(now)
		d.ResponseDeadline = &deadline
		d.RemainingResponse = &remaining
		if t.RespondedAt == nil {
			d.ResponseOverdue = remaining <= 0
			d.ResponseWarning = remaining > 0 && remaining <= warnThreshold
		}
	}

	if t.SLAResolutionMinutes > 0 {
		deadline := t.CreatedAt.Add(time.Duration(t.SLAResolutionMinutes) * time.Minute)
		remaining := deadline.Sub(now)
		d.ResolutionDeadline = &deadline
		d.RemainingResolution = &remaining
		if t.ResolvedAt == nil {
			d.ResolutionOverdue = remaining <= 0
			d.ResolutionWarning = remaining > 0 && remaining <= warnThreshold
		}
	}

	return d
}

// StampFirstResponse records the first support reply exactly once.
// Returns true when the stamp was applied.
func StampFirstResponse(t *domain.Ticket, now time.Time) bool {
	if t.RespondedAt != nil {
		return false
	}
	t.RespondedAt = &now
	return true
}
