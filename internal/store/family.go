package store

import (
	"context"

	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const familyTreeTableName = "family_tree_members"

type FamilyTreeRepository struct {
	table *Table[types.FamilyTreeMember]
}

func NewFamilyTreeRepository(db DB) *FamilyTreeRepository {
	return &FamilyTreeRepository{
		table: NewTable[types.FamilyTreeMember](db, familyTreeTableName).
			Immutable("created_by").
			OrderBy("birth_date ASC NULLS LAST", "full_name ASC"),
	}
}

func (r *FamilyTreeRepository) TreeMember(ctx context.Context, id string) (*types.FamilyTreeMember, error) {
	return r.table.Get(ctx, id)
}

// Tree returns every node; the client assembles the graph.
func (r *FamilyTreeRepository) Tree(ctx context.Context) ([]*types.FamilyTreeMember, error) {
	return r.table.List(ctx, nil, Page{})
}

func (r *FamilyTreeRepository) Children(ctx context.Context, id string) ([]*types.FamilyTreeMember, error) {
	return r.table.List(ctx, sq.Or{sq.Eq{"father_id": id}, sq.Eq{"mother_id": id}}, Page{})
}

func (r *FamilyTreeRepository) CreateTreeMember(ctx context.Context, member *types.FamilyTreeMember) (*types.FamilyTreeMember, error) {
	return r.table.Create(ctx, member)
}

func (r *FamilyTreeRepository) UpdateTreeMember(ctx context.Context, id string, changes types.Changes) (*types.FamilyTreeMember, error) {
	return r.table.Update(ctx, id, changes)
}

func (r *FamilyTreeRepository) DeleteTreeMember(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}
