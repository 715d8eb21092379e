package types

import "time"

type DocumentCategory struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type DocumentCategoryInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type DocumentCategoryPatch struct {
	Name        Optional[string] `db:"name" json:"name" validate:"omitnil,min=1,max=120"`
	Description Optional[string] `db:"description" json:"description" validate:"omitnil,max=2000"`
}

// Document is a stored file. FilePath is relative to the upload root.
type Document struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	FilePath    string    `db:"file_path" json:"file_path"`
	FileType    string    `db:"file_type" json:"file_type"`
	FileSize    int64     `db:"file_size" json:"file_size"`
	CategoryID  *string   `db:"category_id" json:"category_id"`
	UploadedBy  string    `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type DocumentInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"max=2000"`
	CategoryID  string `json:"category_id" form:"category_id"`
}

type DocumentPatch struct {
	Name        Optional[string] `db:"name" json:"name" form:"name" validate:"omitnil,min=1,max=200"`
	Description Optional[string] `db:"description" json:"description" form:"description" validate:"omitnil,max=2000"`
	CategoryID  Optional[string] `db:"category_id" json:"category_id" form:"category_id"`
}

type DocumentFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	UploadedBy string `form:"uploaded_by"`
}
