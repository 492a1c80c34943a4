package changeorder_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcpanel/costcore/internal/changeorder"
	"github.com/gcpanel/costcore/internal/contracts"
	"github.com/gcpanel/costcore/internal/memstore"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}

	return d
}

func newFixture(t *testing.T) (*changeorder.Service, *contracts.Service, *contracts.Contract) {
	t.Helper()

	contractSvc := contracts.NewService(memstore.NewContractStore())

	contract, err := contractSvc.Create(context.Background(), contracts.CreateParams{
		Name:          "Highland Tower Development",
		Contractor:    "Highland Construction Co.",
		ContractValue: dec("45500000"),
	})
	require.NoError(t, err)

	svc := changeorder.NewService(memstore.NewChangeOrderStore(), contractSvc)

	return svc, contractSvc, contract
}

func TestService_ApproveIncrementsContractOnce(t *testing.T) {
	svc, contractSvc, contract := newFixture(t)
	ctx := context.Background()

	co, err := svc.Submit(ctx, changeorder.SubmitParams{
		ContractID:  contract.ID,
		Amount:      dec("125000"),
		Type:        changeorder.TypeAddition,
		Reason:      "Additional structural reinforcement for Level 15",
		SubmittedBy: "PM",
	})
	require.NoError(t, err)
	assert.Equal(t, changeorder.StatusSubmitted, co.Status)

	res, err := svc.Approve(ctx, co.ID, "Director")
	require.NoError(t, err)
	assert.Equal(t, changeorder.StatusApproved, res.Order.Status)
	assert.NotNil(t, res.Order.ApprovedDate)
	assert.Equal(t, "Director", res.Order.ApprovedBy)
	assert.True(t, res.NewContractValue.Equal(dec("45625000")),
		"contract value %s", res.NewContractValue)

	// Second approval is an idempotent no-op.
	res2, err := svc.Approve(ctx, co.ID, "Director")
	assert.ErrorIs(t, err, changeorder.ErrAlreadyApproved)
	require.NotNil(t, res2)
	assert.True(t, res2.NewContractValue.Equal(dec("45625000")))

	value, err := contractSvc.GetContractValue(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("45625000")), "contract value after double approve %s", value)
}

func TestService_ApproveConcurrently(t *testing.T) {
	svc, contractSvc, contract := newFixture(t)
	ctx := context.Background()

	co, err := svc.Submit(ctx, changeorder.SubmitParams{
		ContractID:  contract.ID,
		Amount:      dec("50000"),
		Type:        changeorder.TypeAddition,
		Reason:      "MEP rework",
		SubmittedBy: "PM",
	})
	require.NoError(t, err)

	// Double-click: N concurrent approvals must apply the delta once.
	const n = 8

	var wg sync.WaitGroup

	for range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Approve(ctx, co.ID, "Director")
			if err != nil {
				assert.ErrorIs(t, err, changeorder.ErrAlreadyApproved)
			}
		}()
	}

	wg.Wait()

	value, err := contractSvc.GetContractValue(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("45550000")), "contract value %s", value)
}

func TestService_Deduction(t *testing.T) {
	svc, contractSvc, contract := newFixture(t)
	ctx := context.Background()

	co, err := svc.Submit(ctx, changeorder.SubmitParams{
		ContractID:  contract.ID,
		Amount:      dec("-200000"),
		Type:        changeorder.TypeDeduction,
		Reason:      "Descoped site work",
		SubmittedBy: "PM",
	})
	require.NoError(t, err)

	res, err := svc.Approve(ctx, co.ID, "Director")
	require.NoError(t, err)
	assert.True(t, res.NewContractValue.Equal(dec("45300000")))

	value, err := contractSvc.GetContractValue(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("45300000")))
}

func TestService_RejectIsTerminalAndLeavesContract(t *testing.T) {
	svc, contractSvc, contract := newFixture(t)
	ctx := context.Background()

	co, err := svc.Submit(ctx, changeorder.SubmitParams{
		ContractID:  contract.ID,
		Amount:      dec("99000"),
		Type:        changeorder.TypeAddition,
		Reason:      "Speculative extras",
		SubmittedBy: "PM",
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, co.ID, "Not in scope")
	require.NoError(t, err)
	assert.Equal(t, changeorder.StatusRejected, rejected.Status)
	assert.Equal(t, "Not in scope", rejected.RejectionReason)

	// No contract mutation, and no way back.
	value, err := contractSvc.GetContractValue(ctx, contract.ID)
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("45500000")))

	_, err = svc.Approve(ctx, co.ID, "Director")
	assert.ErrorIs(t, err, changeorder.ErrAlreadyFinal)

	_, err = svc.Reject(ctx, co.ID, "again")
	assert.ErrorIs(t, err, changeorder.ErrAlreadyFinal)
}

func TestService_UnderReviewFlow(t *testing.T) {
	svc, _, contract := newFixture(t)
	ctx := context.Background()

	co, err := svc.Submit(ctx, changeorder.SubmitParams{
		ContractID:  contract.ID,
		Amount:      dec("10000"),
		Type:        changeorder.TypeAddition,
		Reason:      "Owner requested finish upgrade",
		SubmittedBy: "PM",
	})
	require.NoError(t, err)

	reviewed, err := svc.MarkUnderReview(ctx, co.ID)
	require.NoError(t, err)
	assert.Equal(t, changeorder.StatusUnderReview, reviewed.Status)

	// Approvable from review.
	res, err := svc.Approve(ctx, co.ID, "Director")
	require.NoError(t, err)
	assert.Equal(t, changeorder.StatusApproved, res.Order.Status)

	_, err = svc.MarkUnderReview(ctx, co.ID)
	assert.ErrorIs(t, err, changeorder.ErrAlreadyFinal)
}

func TestService_SubmitValidation(t *testing.T) {
	svc, _, contract := newFixture(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, changeorder.SubmitParams{
		ContractID: contract.ID,
		Amount:     decimal.Zero,
		Type:       changeorder.TypeAddition,
	})
	assert.ErrorIs(t, err, changeorder.ErrInvalidAmount)

	_, err = svc.Submit(ctx, changeorder.SubmitParams{
		ContractID: contract.ID,
		Amount:     dec("100"),
		Type:       changeorder.Type("Rebate"),
	})
	assert.ErrorIs(t, err, changeorder.ErrInvalidType)

	_, err = svc.Submit(ctx, changeorder.SubmitParams{
		ContractID: uuid.New(),
		Amount:     dec("100"),
		Type:       changeorder.TypeAddition,
	})
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestService_ApproveUnknown(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Approve(context.Background(), uuid.New(), "Director")
	assert.ErrorIs(t, err, changeorder.ErrNotFound)
}
