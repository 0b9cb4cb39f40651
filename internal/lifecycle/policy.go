package lifecycle

import "github.com/spec-kit/helpdesk-service/internal/domain"

// SLABudget holds the allotted minutes from ticket creation to first
// response and to resolution.
type SLABudget struct {
	ResponseMinutes   int
	ResolutionMinutes int
}

// policyTable is the single source of truth for SLA budgets per priority.
// Ticket rows cache these values; cached values that disagree with the
// table are stale and get rewritten on read.
var policyTable = map[domain.TicketPriority]SLABudget{
	domain.TicketPriorityCritical: {ResponseMinutes: 30, ResolutionMinutes: 480},
	domain.TicketPriorityHigh:     {ResponseMinutes: 60, ResolutionMinutes: 1440},
	domain.TicketPriorityMedium:   {ResponseMinutes: 240, ResolutionMinutes: 4320},
	domain.TicketPriorityLow:      {ResponseMinutes: 1440, ResolutionMinutes: 7200},
}

// BudgetFor returns the SLA budget for a priority. Unknown priorities get
// a zero budget, meaning no SLA is tracked.
func BudgetFor(priority domain.TicketPriority) SLABudget {
	return policyTable[priority]
}

// Priorities lists every priority the policy table covers.
func Priorities() []domain.TicketPriority {
	out := make([]domain.TicketPriority, 0, len(policyTable))
	for p := range policyTable {
		out = append(out, p)
	}
	return out
}

// StaleSLA reports whether the ticket's cached SLA minutes disagree with
// the policy table for its current priority.
func StaleSLA(t *domain.Ticket) bool {
	budget := BudgetFor(t.Priority)
	return t.SLAResponseMinutes != budget.ResponseMinutes || t.SLAResolutionMinutes != budget.ResolutionMinutes
}
