package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ignatzorin/gig-marketplace/internal/domain/repository"
	"github.com/ignatzorin/gig-marketplace/internal/domain/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentHistoryCount_IgnoresPage(t *testing.T) {
	payer := uuid.New()
	filter := repository.PaymentHistoryFilter{
		PayerID:  payer,
		Statuses: valueobject.CompletedBucket,
		Limit:    10,
		Offset:   10,
	}

	query, args, err := paymentHistoryCount(filter).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(DISTINCT pl.gig_id) FROM payment_logs pl JOIN gigs g ON g.id = pl.gig_id WHERE pl.created_by = $1 AND g.status IN ($2,$3)",
		query)
	assert.Equal(t, []interface{}{payer.String(), "Completed", "Approved"}, args)
	assert.NotContains(t, query, "LIMIT")
	assert.NotContains(t, query, "OFFSET")
}

func TestPaymentHistoryPage(t *testing.T) {
	payer := uuid.New()
	query, args, err := paymentHistoryPage(repository.PaymentHistoryFilter{PayerID: payer, Limit: 10, Offset: 20}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE pl.created_by = $1")
	assert.Contains(t, query, "b.status IN ('Accepted', 'Approved')")
	assert.Contains(t, query, "LIMIT 10 OFFSET 20")
	assert.NotContains(t, query, "OVER()")
	assert.Equal(t, []interface{}{payer.String()}, args)
}

func TestApplyGigFilter(t *testing.T) {
	owner := uuid.New()
	query, args, err := applyGigFilter(psql.Select("COUNT(*)").From("gigs"), repository.GigFilter{
		CreatedBy: &owner,
		Skill:     "go",
		Limit:     5,
		Offset:    50,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM gigs WHERE created_by = $1 AND $2 = ANY(skills)", query)
	assert.Equal(t, []interface{}{owner.String(), "go"}, args)
}
