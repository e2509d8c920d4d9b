package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

func TestCreateItem(t *testing.T) {
	income := newAccount("4100", domain.AccountTypeIncome, nil, false, "0")
	missing := uuid.New()

	tests := []struct {
		name    string
		in      CreateItemInput
		wantErr error
	}{
		{
			name: "valid",
			in: CreateItemInput{
				SKU: "W-1", Name: "Widget", Kind: domain.ItemKindInventory,
				UnitPrice: dec("12.50"), IncomeAccountID: &income.ID,
			},
		},
		{
			name:    "missing sku",
			in:      CreateItemInput{Name: "Widget", Kind: domain.ItemKindInventory},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "unknown kind",
			in:      CreateItemInput{SKU: "W-1", Name: "Widget", Kind: "bundle"},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "negative price",
			in:      CreateItemInput{SKU: "W-1", Name: "Widget", Kind: domain.ItemKindService, UnitPrice: dec("-1")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "income account does not exist",
			in:      CreateItemInput{SKU: "W-1", Name: "Widget", Kind: domain.ItemKindService, IncomeAccountID: &missing},
			wantErr: domain.ErrInvalidOperation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items := newFakeItems()
			svc := NewItemService(items, newFakeAccounts(income))

			item, err := svc.CreateItem(context.Background(), tc.in)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, items.rows)
				return
			}
			require.NoError(t, err)
			assert.True(t, item.QuantityOnHand.IsZero())
			assert.Contains(t, items.rows, item.ID)
		})
	}
}

func TestUpdateItem(t *testing.T) {
	item := &domain.Item{ID: uuid.New(), SKU: "W-1", Name: "Widget", Kind: domain.ItemKindInventory, UnitPrice: dec("10")}
	items := newFakeItems(item)
	svc := NewItemService(items, newFakeAccounts())

	updated, err := svc.UpdateItem(context.Background(), item.ID, UpdateItemInput{UnitPrice: ptr(dec("11"))})
	require.NoError(t, err)
	assert.Equal(t, "11", updated.UnitPrice.String())

	missing := uuid.New()
	_, err = svc.UpdateItem(context.Background(), item.ID, UpdateItemInput{ExpenseAccountID: &missing})
	require.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.Nil(t, items.rows[item.ID].ExpenseAccountID)
}
