package seed

import (
	"context"
	"errors"
	"testing"

	"familyhub/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategories struct {
	byName map[string]*types.DocumentCategory
	err    error
}

func (f *fakeCategories) UpsertCategory(_ context.Context, c *types.DocumentCategory) (*types.DocumentCategory, error) {
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.byName[c.Name]; ok {
		existing.Description = c.Description
		return existing, nil
	}
	f.byName[c.Name] = c
	return c, nil
}

func TestSeedCategoriesIsIdempotent(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := &fakeCategories{byName: map[string]*types.DocumentCategory{
		"Bylaws": {ID: "existing", Name: "Bylaws"},
	}}

	require.NoError(t, SeedCategories(context.Background(), repo, logger))
	require.NoError(t, SeedCategories(context.Background(), repo, logger))

	assert.Len(t, repo.byName, len(defaultCategories))
	assert.Equal(t, "existing", repo.byName["Bylaws"].ID)
	assert.NotNil(t, repo.byName["Bylaws"].Description)
}

func TestSeedCategoriesStopsOnError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := &fakeCategories{err: errors.New("connection reset")}

	err := SeedCategories(context.Background(), repo, logger)
	assert.ErrorContains(t, err, "Meeting Minutes")
}

func TestDefaultCategoryIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range defaultCategories {
		assert.Len(t, c.ID, 32, c.Name)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

type fakeMembers struct {
	created []*types.Member
	err     error
}

func (f *fakeMembers) CreateMember(_ context.Context, m *types.Member) (*types.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	m.ID = "admin-1"
	f.created = append(f.created, m)
	return m, nil
}

func TestSeedAdmin(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	repo := &fakeMembers{}
	require.NoError(t, SeedAdmin(ctx, repo, logger, " head@family.test ", ""))
	require.Len(t, repo.created, 1)
	assert.Equal(t, types.RoleAdmin, repo.created[0].Role)
	assert.Equal(t, "head@family.test", repo.created[0].Email)
	assert.Equal(t, "Administrator", repo.created[0].FullName)
	assert.True(t, repo.created[0].IsActive)

	assert.NoError(t, SeedAdmin(ctx, &fakeMembers{err: types.ErrConflict}, logger, "head@family.test", "Head"))
	assert.Error(t, SeedAdmin(ctx, &fakeMembers{err: errors.New("boom")}, logger, "head@family.test", "Head"))
	assert.Error(t, SeedAdmin(ctx, repo, logger, "  ", "Head"))
}
