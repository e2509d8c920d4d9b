package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/backoffice/internal/domain"
	"github.com/josh-kwaku/backoffice/internal/service"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	entries, err := c.Flatten()
	require.NoError(t, err)

	byCode := make(map[string]Entry, len(entries))
	pos := make(map[string]int, len(entries))
	for i, e := range entries {
		byCode[e.Code] = e
		pos[e.Code] = i
	}

	cash := byCode["1110"]
	assert.Equal(t, "Cash", cash.Name)
	assert.Equal(t, domain.AccountTypeAsset, cash.Type)
	assert.Equal(t, "1100", cash.ParentCode)
	assert.False(t, cash.IsParent)
	assert.True(t, byCode["1100"].IsParent)
	assert.Equal(t, "1000", byCode["1100"].ParentCode)

	for _, e := range entries {
		if e.ParentCode != "" {
			assert.Less(t, pos[e.ParentCode], pos[e.Code], "%s listed before its parent", e.Code)
		}
	}
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "empty", yaml: `name: x`},
		{name: "not yaml", yaml: `accounts: [`},
		{name: "missing type", yaml: "accounts:\n  - code: '1'\n    name: A"},
		{name: "bad type", yaml: "accounts:\n  - code: '1'\n    name: A\n    type: revenue"},
		{name: "duplicate code", yaml: "accounts:\n  - code: '1'\n    name: A\n    type: asset\n  - code: '1'\n    name: B\n    type: asset"},
		{name: "balance on aggregator", yaml: "accounts:\n  - code: '1'\n    name: A\n    type: asset\n    running_balance: '5'\n    children:\n      - code: '2'\n        name: B"},
		{name: "bad amount", yaml: "accounts:\n  - code: '1'\n    name: A\n    type: asset\n    running_balance: lots"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: tiny\naccounts:\n  - code: '1000'\n    name: Assets\n    type: asset\n    children:\n      - code: '1010'\n        name: Cash\n        running_balance: '1000'\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	entries, err := c.Flatten()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[1].RunningBalance)
	assert.Equal(t, "1000", entries[1].RunningBalance.String())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type recordingCreator struct {
	inputs []service.CreateAccountInput
	failOn string
}

func (r *recordingCreator) CreateAccount(_ context.Context, in service.CreateAccountInput) (*domain.Account, error) {
	if in.Code == r.failOn {
		return nil, fmt.Errorf("Create: %w", domain.ErrDuplicate)
	}
	r.inputs = append(r.inputs, in)
	return &domain.Account{ID: uuid.New(), Code: in.Code, ParentID: in.ParentID}, nil
}

func TestSeed_LinksParents(t *testing.T) {
	c, err := Parse([]byte("name: tiny\naccounts:\n  - code: '1000'\n    name: Assets\n    type: asset\n    children:\n      - code: '1010'\n        name: Cash\n        running_balance: '250'\n"))
	require.NoError(t, err)
	rec := &recordingCreator{}

	created, err := Seed(context.Background(), rec, c, "seeder")
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Nil(t, rec.inputs[0].ParentID)
	assert.True(t, rec.inputs[0].IsParent)
	require.NotNil(t, rec.inputs[1].ParentID)
	assert.Equal(t, created[0].ID, *rec.inputs[1].ParentID)
	assert.Equal(t, "seeder", rec.inputs[1].CreatedBy)
	require.NotNil(t, rec.inputs[1].RunningBalance)
	assert.Equal(t, "250", rec.inputs[1].RunningBalance.String())
}

func TestSeed_StopsAtFirstFailure(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	rec := &recordingCreator{failOn: "2000"}

	created, err := Seed(context.Background(), rec, c, "seeder")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NotEmpty(t, created)
	for _, a := range created {
		assert.NotEqual(t, "2000", a.Code)
	}
}
