package billing

import (
	"context"
	"testing"

	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileVendorInSync(t *testing.T) {
	repo := newFakeRepository()
	repo.addVendor(&models.Vendor{ID: 1})
	svc := NewService(repo, nil)

	_, err := svc.GrantBonus(context.Background(), 1, 100, "seed")
	require.NoError(t, err)

	report, err := svc.ReconcileVendor(context.Background(), 1, false)
	require.NoError(t, err)
	assert.True(t, report.InSync())
	assert.Equal(t, 100.0, report.Balance)
	assert.Equal(t, 100.0, report.LedgerSum)
	assert.False(t, report.Repaired)
}

func TestReconcileVendorRepairsDrift(t *testing.T) {
	repo := newFakeRepository()
	repo.addVendor(&models.Vendor{ID: 1})
	svc := NewService(repo, nil)

	_, err := svc.GrantBonus(context.Background(), 1, 100, "seed")
	require.NoError(t, err)

	// Simulate drift from manual data surgery.
	repo.vendors[1].ViewCredits = 130

	report, err := svc.ReconcileVendor(context.Background(), 1, false)
	require.NoError(t, err)
	assert.False(t, report.InSync())
	assert.Equal(t, 30.0, report.Drift)
	assert.False(t, report.Repaired)
	assert.Equal(t, 130.0, repo.vendors[1].ViewCredits)

	report, err = svc.ReconcileVendor(context.Background(), 1, true)
	require.NoError(t, err)
	assert.True(t, report.Repaired)
	assert.Equal(t, 100.0, repo.vendors[1].ViewCredits)
}

// racingRepository mutates the vendor balance while the ledger sum is being
// computed, like a charge committing mid-reconciliation.
type racingRepository struct {
	*fakeRepository
	bump float64
}

func (r *racingRepository) SumCreditChanges(vendorID uint) (float64, error) {
	sum, err := r.fakeRepository.SumCreditChanges(vendorID)
	if r.bump != 0 {
		r.vendors[vendorID].ViewCredits += r.bump
		r.bump = 0
	}
	return sum, err
}

func TestReconcileVendorSkipsRepairWhenBalanceMoves(t *testing.T) {
	base := newFakeRepository()
	base.addVendor(&models.Vendor{ID: 1})
	svc := NewService(base, nil)

	_, err := svc.GrantBonus(context.Background(), 1, 100, "seed")
	require.NoError(t, err)
	base.vendors[1].ViewCredits = 130 // drift

	// A debit of 10 lands between the balance snapshot and the repair write.
	racing := &racingRepository{fakeRepository: base, bump: -10}
	report, err := NewService(racing, nil).ReconcileVendor(context.Background(), 1, true)
	require.NoError(t, err)

	assert.False(t, report.Repaired)
	assert.Equal(t, 120.0, base.vendors[1].ViewCredits) // debit preserved, not overwritten
}

func TestReconcileAllReportsOnlyDrifted(t *testing.T) {
	repo := newFakeRepository()
	repo.addVendor(&models.Vendor{ID: 1})
	repo.addVendor(&models.Vendor{ID: 2})
	svc := NewService(repo, nil)

	_, err := svc.GrantBonus(context.Background(), 1, 100, "seed")
	require.NoError(t, err)
	_, err = svc.GrantBonus(context.Background(), 2, 100, "seed")
	require.NoError(t, err)

	repo.vendors[2].ViewCredits = 90

	drifted, err := svc.ReconcileAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	assert.Equal(t, uint(2), drifted[0].VendorID)
}
