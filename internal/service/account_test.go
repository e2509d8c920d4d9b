package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

func requireStored(t *testing.T, repo *fakeAccounts, id uuid.UUID, want string) {
	t.Helper()
	got := repo.balance(id)
	require.True(t, got.Valid, "running balance not set")
	assert.True(t, dec(want).Equal(got.Decimal), "want %s, got %s", want, got.Decimal)
}

func TestCreateAccount_PropagatesOpeningRunningBalance(t *testing.T) {
	assets := newAccount("1000", domain.AccountTypeAsset, nil, true, "0")
	current := newAccount("1100", domain.AccountTypeAsset, assets, true, "0")
	repo := newFakeAccounts(assets, current)
	rec := &fakeRecorder{}
	svc := NewAccountService(repo, &fakeDB{}, rec)

	cash, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Code:           "1110",
		Name:           "Cash",
		Type:           domain.AccountTypeAsset,
		ParentID:       &current.ID,
		RunningBalance: ptr(dec("1000")),
		CreatedBy:      "ops",
	})

	require.NoError(t, err)
	requireStored(t, repo, cash.ID, "1000")
	requireStored(t, repo, current.ID, "1000")
	requireStored(t, repo, assets.ID, "1000")
	assert.Equal(t, []string{"root"}, rec.propagations)
}

func TestCreateAccount_WithoutRunningBalanceDoesNotPropagate(t *testing.T) {
	root := newAccount("1000", domain.AccountTypeAsset, nil, true, "25")
	repo := newFakeAccounts(root)
	rec := &fakeRecorder{}
	svc := NewAccountService(repo, &fakeDB{}, rec)

	a, err := svc.CreateAccount(context.Background(), CreateAccountInput{
		Code: "1010", Name: "Petty Cash", Type: domain.AccountTypeAsset, ParentID: &root.ID,
	})

	require.NoError(t, err)
	assert.False(t, repo.balance(a.ID).Valid)
	requireStored(t, repo, root.ID, "25")
	assert.Empty(t, rec.propagations)
}

func TestCreateAccount_Rejections(t *testing.T) {
	leaf := newAccount("1110", domain.AccountTypeAsset, nil, false, "0")
	missing := uuid.New()

	tests := []struct {
		name    string
		in      CreateAccountInput
		wantErr error
	}{
		{
			name:    "missing code",
			in:      CreateAccountInput{Name: "Cash", Type: domain.AccountTypeAsset},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "unknown type",
			in:      CreateAccountInput{Code: "9", Name: "X", Type: "bogus"},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "parent does not exist",
			in:      CreateAccountInput{Code: "9", Name: "X", Type: domain.AccountTypeAsset, ParentID: &missing},
			wantErr: domain.ErrInvalidOperation,
		},
		{
			name:    "parent is a leaf",
			in:      CreateAccountInput{Code: "9", Name: "X", Type: domain.AccountTypeAsset, ParentID: &leaf.ID},
			wantErr: domain.ErrInvalidOperation,
		},
		{
			name:    "duplicate code",
			in:      CreateAccountInput{Code: "1110", Name: "Again", Type: domain.AccountTypeAsset},
			wantErr: domain.ErrDuplicate,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAccountService(newFakeAccounts(leaf), &fakeDB{}, &fakeRecorder{})
			_, err := svc.CreateAccount(context.Background(), tc.in)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUpdateAccount_RunningBalanceChangePropagatesDelta(t *testing.T) {
	b := newAccount("2000", domain.AccountTypeLiability, nil, true, "300")
	a := newAccount("2100", domain.AccountTypeLiability, b, false, "100")
	repo := newFakeAccounts(a, b)
	svc := NewAccountService(repo, &fakeDB{}, &fakeRecorder{})

	updated, err := svc.UpdateAccount(context.Background(), a.ID, UpdateAccountInput{
		RunningBalance: ptr(dec("150")),
	})

	require.NoError(t, err)
	assert.True(t, dec("150").Equal(updated.Balance()))
	requireStored(t, repo, a.ID, "150")
	requireStored(t, repo, b.ID, "350")
}

func TestUpdateAccount_OtherFieldsDoNotTouchAncestors(t *testing.T) {
	b := newAccount("2000", domain.AccountTypeLiability, nil, true, "300")
	a := newAccount("2100", domain.AccountTypeLiability, b, false, "100")
	repo := newFakeAccounts(a, b)
	svc := NewAccountService(repo, &fakeDB{}, &fakeRecorder{})

	updated, err := svc.UpdateAccount(context.Background(), a.ID, UpdateAccountInput{
		Name:     ptr("Accounts Payable"),
		IsActive: ptr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, "Accounts Payable", updated.Name)
	assert.False(t, updated.IsActive)
	requireStored(t, repo, b.ID, "300")
	assert.Zero(t, repo.saves)
}

func TestUpdateAccount_NotFound(t *testing.T) {
	svc := NewAccountService(newFakeAccounts(), &fakeDB{}, &fakeRecorder{})
	_, err := svc.UpdateAccount(context.Background(), uuid.New(), UpdateAccountInput{Name: ptr("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAccount(t *testing.T) {
	t.Run("refuses when children exist", func(t *testing.T) {
		root := newAccount("1000", domain.AccountTypeAsset, nil, true, "0")
		child := newAccount("1100", domain.AccountTypeAsset, root, false, "0")
		svc := NewAccountService(newFakeAccounts(root, child), &fakeDB{}, &fakeRecorder{})

		err := svc.DeleteAccount(context.Background(), root.ID)
		require.ErrorIs(t, err, domain.ErrHasChildren)
	})

	t.Run("refuses when referenced", func(t *testing.T) {
		leaf := newAccount("1100", domain.AccountTypeAsset, nil, false, "0")
		repo := newFakeAccounts(leaf)
		repo.referenced[leaf.ID] = true
		svc := NewAccountService(repo, &fakeDB{}, &fakeRecorder{})

		err := svc.DeleteAccount(context.Background(), leaf.ID)
		require.ErrorIs(t, err, domain.ErrInvalidOperation)
		_, err = repo.get(leaf.ID)
		require.NoError(t, err)
	})

	t.Run("withdraws the leaf balance from its ancestors", func(t *testing.T) {
		root := newAccount("1000", domain.AccountTypeAsset, nil, true, "500")
		leaf := newAccount("1100", domain.AccountTypeAsset, root, false, "200")
		repo := newFakeAccounts(root, leaf)
		svc := NewAccountService(repo, &fakeDB{}, &fakeRecorder{})

		require.NoError(t, svc.DeleteAccount(context.Background(), leaf.ID))

		_, err := repo.get(leaf.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
		requireStored(t, repo, root.ID, "300")
	})
}

func TestCheckRollups(t *testing.T) {
	root := newAccount("1000", domain.AccountTypeAsset, nil, true, "100")
	a := newAccount("1100", domain.AccountTypeAsset, root, false, "60")
	b := newAccount("1200", domain.AccountTypeAsset, root, false, "40")
	drifted := newAccount("2000", domain.AccountTypeLiability, nil, true, "10")
	c := newAccount("2100", domain.AccountTypeLiability, drifted, false, "7")
	svc := NewAccountService(newFakeAccounts(root, a, b, drifted, c), &fakeDB{}, &fakeRecorder{})

	drifts, err := svc.CheckRollups(context.Background())

	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, drifted.ID, drifts[0].Account.ID)
	assert.True(t, dec("7").Equal(drifts[0].Expected))
	assert.True(t, dec("3").Equal(drifts[0].Drift))
}

func TestPostingBatch(t *testing.T) {
	t.Run("debits and credits follow the normal side", func(t *testing.T) {
		assets := newAccount("1000", domain.AccountTypeAsset, nil, true, "0")
		cash := newAccount("1100", domain.AccountTypeAsset, assets, false, "0")
		income := newAccount("4000", domain.AccountTypeIncome, nil, true, "0")
		sales := newAccount("4100", domain.AccountTypeIncome, income, false, "0")
		repo := newFakeAccounts(assets, cash, income, sales)
		svc := NewAccountService(repo, &fakeDB{}, &fakeRecorder{})

		batch := svc.NewPostingBatch(nil)
		_, err := batch.PostToAccount(context.Background(), cash.ID, dec("250"), decimal.Zero)
		require.NoError(t, err)
		_, err = batch.PostToAccount(context.Background(), sales.ID, decimal.Zero, dec("250"))
		require.NoError(t, err)
		require.NoError(t, batch.Flush(context.Background()))

		requireStored(t, repo, cash.ID, "250")
		requireStored(t, repo, assets.ID, "250")
		requireStored(t, repo, sales.ID, "250")
		requireStored(t, repo, income.ID, "250")
	})

	t.Run("repeated postings to one leaf accumulate", func(t *testing.T) {
		root := newAccount("5000", domain.AccountTypeExpense, nil, true, "0")
		rent := newAccount("5100", domain.AccountTypeExpense, root, false, "10")
		repo := newFakeAccounts(root, rent)
		svc := NewAccountService(repo, &fakeDB{}, &fakeRecorder{})

		batch := svc.NewPostingBatch(nil)
		for i := 0; i < 3; i++ {
			_, err := batch.PostToAccount(context.Background(), rent.ID, dec("5"), decimal.Zero)
			require.NoError(t, err)
		}
		require.NoError(t, batch.Flush(context.Background()))

		requireStored(t, repo, rent.ID, "25")
		requireStored(t, repo, root.ID, "15")
		assert.Equal(t, 1, repo.saves)
	})

	t.Run("aggregators cannot be posted to", func(t *testing.T) {
		root := newAccount("1000", domain.AccountTypeAsset, nil, true, "0")
		svc := NewAccountService(newFakeAccounts(root), &fakeDB{}, &fakeRecorder{})

		_, err := svc.NewPostingBatch(nil).PostToAccount(context.Background(), root.ID, dec("1"), decimal.Zero)
		require.ErrorIs(t, err, domain.ErrInvalidOperation)
	})
}
