package store

import (
	"context"

	"familyhub/pkg/types"
)

const categoryTableName = "document_categories"

type CategoryRepository struct {
	table *Table[types.DocumentCategory]
}

func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{
		table: NewTable[types.DocumentCategory](db, categoryTableName).OrderBy("name ASC"),
	}
}

func (r *CategoryRepository) Categories(ctx context.Context) ([]*types.DocumentCategory, error) {
	return r.table.List(ctx, nil, Page{})
}

func (r *CategoryRepository) Category(ctx context.Context, id string) (*types.DocumentCategory, error) {
	return r.table.Get(ctx, id)
}

// CreateCategory returns types.ErrConflict for a duplicate name.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category *types.DocumentCategory) (*types.DocumentCategory, error) {
	return r.table.Create(ctx, category)
}

// UpsertCategory is used by the seeder and keys on the category name.
func (r *CategoryRepository) UpsertCategory(ctx context.Context, category *types.DocumentCategory) (*types.DocumentCategory, error) {
	return r.table.Upsert(ctx, category, []string{"name"}, []string{"description"})
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, id string, changes types.Changes) (*types.DocumentCategory, error) {
	return r.table.Update(ctx, id, changes)
}

// DeleteCategory leaves documents in place; their category_id is cleared by
// the foreign key.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}
