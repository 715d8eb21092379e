package store

import (
	"context"

	"familyhub/pkg/types"

	sq "github.com/Masterminds/squirrel"
)

const documentTableName = "documents"

type DocumentRepository struct {
	table *Table[types.Document]
}

func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{
		table: NewTable[types.Document](db, documentTableName).Immutable("uploaded_by"),
	}
}

func (r *DocumentRepository) Document(ctx context.Context, id string) (*types.Document, error) {
	return r.table.Get(ctx, id)
}

func (r *DocumentRepository) Documents(ctx context.Context, filter types.DocumentFilter, page Page) ([]*types.Document, error) {
	where := sq.And{}
	if filter.CategoryID != "" {
		where = append(where, sq.Eq{"category_id": filter.CategoryID})
	}
	if filter.UploadedBy != "" {
		where = append(where, sq.Eq{"uploaded_by": filter.UploadedBy})
	}
	where = search(where, filter.Search, "name", "description")

	return r.table.List(ctx, where, page)
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, document *types.Document) (*types.Document, error) {
	return r.table.Create(ctx, document)
}

func (r *DocumentRepository) UpdateDocument(ctx context.Context, id string, changes types.Changes) (*types.Document, error) {
	return r.table.Update(ctx, id, changes)
}

func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) (bool, error) {
	return r.table.Delete(ctx, id)
}
