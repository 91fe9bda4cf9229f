package quotes

import "time"

// Action is a lifecycle operation a caller may attempt on a quotation.
type Action string

const (
	ActionSend    Action = "send"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionConvert Action = "convert"
)

// EffectiveStatus derives the status a reader should act on. A sent or
// approved quotation past its valid_until is expired regardless of what the
// stored status column says, because the background sweep updates it lazily.
func EffectiveStatus(q *Quotation, now time.Time) Status {
	if (q.Status == StatusSent || q.Status == StatusApproved) && now.After(q.ValidUntil) {
		return StatusExpired
	}
	return q.Status
}

// IsUsable reports whether the quotation can still move forward: sent or
// approved and not past validity.
func IsUsable(q *Quotation, now time.Time) bool {
	s := EffectiveStatus(q, now)
	return s == StatusSent || s == StatusApproved
}

// IsEditable reports whether items and customer fields may be mutated.
// Only drafts are editable.
func IsEditable(q *Quotation) bool {
	return q.Status == StatusDraft
}

// CanPerform evaluates the transition guard for a single action. It never
// mutates anything; persisting an allowed transition is the service's job.
func CanPerform(q *Quotation, action Action, now time.Time) bool {
	status := EffectiveStatus(q, now)
	switch action {
	case ActionSend:
		return status == StatusDraft && q.TotalAmount > 0
	case ActionApprove, ActionReject:
		return status == StatusSent
	case ActionConvert:
		return status == StatusApproved && q.ConvertedOrderID == nil
	}
	return false
}

// AllowedActions lists every action whose guard currently passes, in the
// order the UI renders its buttons.
func AllowedActions(q *Quotation, now time.Time) []Action {
	actions := make([]Action, 0, 4)
	for _, a := range []Action{ActionSend, ActionApprove, ActionReject, ActionConvert} {
		if CanPerform(q, a, now) {
			actions = append(actions, a)
		}
	}
	return actions
}
