package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/backoffice/internal/domain"
)

func TestPartyService(t *testing.T) {
	ctx := context.Background()
	svc := NewPartyService(newFakeParties())

	vendor, err := svc.CreateParty(ctx, domain.PartyKindVendor, CreatePartyInput{Name: "  Supplies Ltd "})
	require.NoError(t, err)
	assert.Equal(t, "Supplies Ltd", vendor.Name)
	assert.True(t, vendor.IsActive)

	_, err = svc.GetParty(ctx, domain.PartyKindCustomer, vendor.ID)
	require.ErrorIs(t, err, domain.ErrNotFound, "a vendor is not a customer")

	updated, err := svc.UpdateParty(ctx, domain.PartyKindVendor, vendor.ID, UpdatePartyInput{
		Email:    ptr("ap@supplies.test"),
		IsActive: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "ap@supplies.test", *updated.Email)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateParty(ctx, domain.PartyKindVendor, vendor.ID, UpdatePartyInput{Name: ptr(" ")})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.CreateParty(ctx, "employee", CreatePartyInput{Name: "Bob"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.GetParty(ctx, domain.PartyKindVendor, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}
