package quotes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func validQuotation(status Status) *Quotation {
	return &Quotation{
		ID:          1,
		Status:      status,
		ValidUntil:  testNow.Add(72 * time.Hour),
		TotalAmount: 61.70,
	}
}

func TestEffectiveStatusDerivesExpiration(t *testing.T) {
	overdue := testNow.Add(-time.Hour)

	q := validQuotation(StatusSent)
	q.ValidUntil = overdue
	require.Equal(t, StatusExpired, EffectiveStatus(q, testNow))

	q = validQuotation(StatusApproved)
	q.ValidUntil = overdue
	require.Equal(t, StatusExpired, EffectiveStatus(q, testNow))

	// Draft and terminal statuses do not expire.
	for _, s := range []Status{StatusDraft, StatusRejected, StatusConverted, StatusExpired} {
		q = validQuotation(s)
		q.ValidUntil = overdue
		require.Equal(t, s, EffectiveStatus(q, testNow))
	}
}

func TestEffectiveStatusExactBoundaryStillUsable(t *testing.T) {
	q := validQuotation(StatusSent)
	q.ValidUntil = testNow
	require.Equal(t, StatusSent, EffectiveStatus(q, testNow))
	require.True(t, IsUsable(q, testNow))
}

func TestCannotSendZeroTotal(t *testing.T) {
	q := validQuotation(StatusDraft)
	q.TotalAmount = 0
	require.False(t, CanPerform(q, ActionSend, testNow))

	q.TotalAmount = 0.01
	require.True(t, CanPerform(q, ActionSend, testNow))
}

func TestSentPastValidityCannotBeDecided(t *testing.T) {
	q := validQuotation(StatusSent)
	q.ValidUntil = testNow.Add(-time.Minute)
	require.False(t, CanPerform(q, ActionApprove, testNow))
	require.False(t, CanPerform(q, ActionReject, testNow))
	require.Empty(t, AllowedActions(q, testNow))
}

func TestNoDoubleConversion(t *testing.T) {
	q := validQuotation(StatusApproved)
	require.True(t, CanPerform(q, ActionConvert, testNow))

	orderID := "ORD-1001"
	q.ConvertedOrderID = &orderID
	require.False(t, CanPerform(q, ActionConvert, testNow))
}

func TestTerminalStatusesAllowNothing(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusConverted, StatusExpired} {
		q := validQuotation(s)
		require.Empty(t, AllowedActions(q, testNow), "status %s", s)
	}
}

func TestAllowedActionsPerStatus(t *testing.T) {
	require.Equal(t, []Action{ActionSend}, AllowedActions(validQuotation(StatusDraft), testNow))
	require.Equal(t, []Action{ActionApprove, ActionReject}, AllowedActions(validQuotation(StatusSent), testNow))
	require.Equal(t, []Action{ActionConvert}, AllowedActions(validQuotation(StatusApproved), testNow))
}

func TestIsEditableOnlyDraft(t *testing.T) {
	require.True(t, IsEditable(validQuotation(StatusDraft)))
	for _, s := range []Status{StatusSent, StatusApproved, StatusRejected, StatusConverted, StatusExpired} {
		require.False(t, IsEditable(validQuotation(s)), "status %s", s)
	}
}

func TestIsUsableIgnoresStaleStoredStatus(t *testing.T) {
	// Stored status says approved, but validity lapsed without the sweep
	// having run yet.
	q := validQuotation(StatusApproved)
	q.ValidUntil = testNow.Add(-24 * time.Hour)
	require.False(t, IsUsable(q, testNow))
}
