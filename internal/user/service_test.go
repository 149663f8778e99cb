package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	_, err := svc.GetByID(ctx, "sub-1")
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := svc.Provision(ctx, Identity{Subject: "sub-1", GivenName: "Ada", FamilyName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", first.ID)
	assert.Equal(t, "Ada Lovelace", first.DisplayName())
	assert.False(t, first.CreatedAt.IsZero())

	again, err := svc.Provision(ctx, Identity{Subject: "sub-1", GivenName: "Ada", FamilyName: "King"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
	assert.Equal(t, "King", again.FamilyName)

	_, err = svc.Provision(ctx, Identity{Subject: "sub-2"})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "sub-1", all[0].ID)
	assert.Equal(t, "King", all[0].FamilyName)
	assert.Equal(t, "sub-2", all[1].ID)
}

func TestProvisionRequiresSubject(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	_, err := svc.Provision(context.Background(), Identity{Subject: "  ", GivenName: "Nobody"})
	assert.ErrorIs(t, err, ErrSubjectMissing)
}
