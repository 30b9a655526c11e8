package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGigStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to GigStatus
		want     bool
	}{
		{GigStatusRequested, GigStatusAssigned, true},
		{GigStatusOpen, GigStatusAssigned, false},
		{GigStatusRequested, GigStatusNotAssigned, true},
		{GigStatusAssigned, GigStatusInProgress, true},
		{GigStatusRequested, GigStatusInProgress, false},
		{GigStatusInProgress, GigStatusCompleted, true},
		{GigStatusAssigned, GigStatusCompleted, false},
		{GigStatusCompleted, GigStatusApproved, true},
		{GigStatusRejected, GigStatusApproved, true},
		{GigStatusInProgress, GigStatusApproved, false},
		{GigStatusCompleted, GigStatusRejected, true},
		{GigStatusRejected, GigStatusRejected, true},
		{GigStatusApproved, GigStatusRejected, false},
		// административный override
		{GigStatusCompleted, GigStatusOpen, true},
		{GigStatusApproved, GigStatusRequested, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestGigStatus_Predicates(t *testing.T) {
	assert.True(t, GigStatusOpen.AcceptsBids())
	assert.True(t, GigStatusRequested.AcceptsBids())
	assert.False(t, GigStatusAssigned.AcceptsBids())

	assert.False(t, GigStatusApproved.RequiresBid())
	assert.False(t, GigStatusRejected.RequiresBid())
	assert.True(t, GigStatusInProgress.RequiresBid())

	assert.True(t, GigStatusApproved.IsTerminal())
	assert.False(t, GigStatusCompleted.IsTerminal())

	assert.True(t, GigStatusNotAssigned.SetByGigCreator())
	assert.True(t, GigStatusCompleted.SetByBidCreator())
	assert.False(t, GigStatusCompleted.SetByGigCreator())
}

func TestNewGigStatus(t *testing.T) {
	s, err := NewGigStatus("In-Progress")
	require.NoError(t, err)
	assert.Equal(t, GigStatusInProgress, s)

	_, err = NewGigStatus("in-progress")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid gig status")
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("bidAmount", " 100.456 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("100.46").Equal(amount))

	_, err = ParseAmount("bidAmount", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bidAmount is required")

	_, err = ParseAmount("bidAmount", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bidAmount must be a number")

	_, err = ParseAmount("bidAmount", "-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(15000), ToMinorUnits(decimal.RequireFromString("150")))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.99")))
	assert.True(t, decimal.RequireFromString("19.99").Equal(FromMinorUnits(1999)))
}

func TestClassifyPayoutAccount(t *testing.T) {
	assert.Equal(t, PayoutAccountNeedsOnboarding, ClassifyPayoutAccount(false, 0, true, true))
	assert.Equal(t, PayoutAccountNeedsOnboarding, ClassifyPayoutAccount(true, 2, true, true))
	assert.Equal(t, PayoutAccountActive, ClassifyPayoutAccount(true, 0, true, true))
	assert.Equal(t, PayoutAccountInReview, ClassifyPayoutAccount(true, 0, true, false))
}

func TestRoles(t *testing.T) {
	_, err := NewSelfServiceRole("Admin")
	require.Error(t, err)

	r, err := NewSelfServiceRole("Provider")
	require.NoError(t, err)
	assert.Equal(t, RoleProvider, r)

	_, err = NewPlanTier("Enterprise")
	require.Error(t, err)
}
