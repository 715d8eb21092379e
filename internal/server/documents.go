package server

import (
	"net/http"
	"strings"

	"familyhub/internal/storage"
	"familyhub/internal/utils"
	"familyhub/pkg/types"
)

func (s *Service) handleListCategories(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	categories, err := s.deps.Categories.Categories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, categories)
}

func (s *Service) handleCreateCategory(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var input types.DocumentCategoryInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityDocuments); err != nil {
		s.writeError(w, r, err)
		return
	}

	category, err := s.deps.Categories.CreateCategory(r.Context(), &types.DocumentCategory{
		Name:        strings.TrimSpace(input.Name),
		Description: utils.NullableString(input.Description),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetCategory, category.ID, map[string]any{"name": category.Name})

	writeJSON(w, http.StatusCreated, category)
}

func (s *Service) handleUpdateCategory(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.DocumentCategoryPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityDocuments); err != nil {
		s.writeError(w, r, err)
		return
	}

	changes := utils.ChangesFromPatch(patch)

	category, err := s.deps.Categories.UpdateCategory(r.Context(), id, changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetCategory, category.ID, changes)

	writeJSON(w, http.StatusOK, category)
}

// Documents of a deleted category become uncategorized.
func (s *Service) handleDeleteCategory(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityDocuments); err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Categories.DeleteCategory(r.Context(), id)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditDelete, actor, targetCategory, id, nil)

	noContent(w)
}

func (s *Service) handleListDocuments(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	var filter types.DocumentFilter
	page, err := decodeQuery(r, &filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	documents, err := s.deps.Documents.Documents(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeList(w, documents)
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	document, err := s.deps.Documents.Document(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, document)
}

func (s *Service) handleCreateDocument(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	if !isMultipart(r) {
		s.writeError(w, r, types.NewValidationError("file", "must be sent as multipart/form-data"))
		return
	}

	var input types.DocumentInput
	if err := s.decodeInput(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityDocuments); err != nil {
		s.writeError(w, r, err)
		return
	}

	file, err := s.stageFile(r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if file == nil {
		s.writeError(w, r, required("file"))
		return
	}
	defer s.deps.Files.Discard(file)

	key, err := s.deps.Files.Commit(r.Context(), file, storage.FolderDocuments)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	document, err := s.deps.Documents.CreateDocument(r.Context(), &types.Document{
		Name:        strings.TrimSpace(input.Name),
		Description: utils.NullableString(input.Description),
		FilePath:    key,
		FileType:    file.ContentType,
		FileSize:    file.Size,
		CategoryID:  utils.NullableString(input.CategoryID),
		UploadedBy:  actor.UserID,
	})
	if err != nil {
		s.deps.Files.PurgeQuietly(r.Context(), key)
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditCreate, actor, targetDocument, document.ID, map[string]any{
		"name":      document.Name,
		"file_size": document.FileSize,
	})

	writeJSON(w, http.StatusCreated, document)
}

// handleUpdateDocument patches metadata and, when a new file is attached,
// replaces the stored file along with its type and size.
func (s *Service) handleUpdateDocument(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch types.DocumentPatch
	if err := s.decodeInput(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityDocuments); err != nil {
		s.writeError(w, r, err)
		return
	}

	file, err := s.stageFile(r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer s.deps.Files.Discard(file)

	changes := utils.ChangesFromPatch(patch)

	var document *types.Document
	if file == nil {
		document, err = s.deps.Documents.UpdateDocument(r.Context(), id, changes)
	} else {
		var current *types.Document
		current, err = s.deps.Documents.Document(r.Context(), id)
		if err == nil {
			_, err = s.deps.Files.Replace(r.Context(), current.FilePath, file, storage.FolderDocuments, func(key string) error {
				changes = changes.
					With("file_path", key).
					With("file_type", file.ContentType).
					With("file_size", file.Size)
				var perr error
				document, perr = s.deps.Documents.UpdateDocument(r.Context(), id, changes)
				return perr
			})
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.recordUpdate(r, actor, targetDocument, document.ID, changes)

	writeJSON(w, http.StatusOK, document)
}

func (s *Service) handleDeleteDocument(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.policy.Authorize(actor, entityDocuments); err != nil {
		s.writeError(w, r, err)
		return
	}

	current, err := s.deps.Documents.Document(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ok, err := s.deps.Documents.DeleteDocument(r.Context(), id)
	if err == nil {
		err = deleted(ok)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.deps.Files.PurgeQuietly(r.Context(), current.FilePath)

	s.record(r, types.AuditDelete, actor, targetDocument, id, map[string]any{"name": current.Name})

	noContent(w)
}

func (s *Service) handleDownloadDocument(w http.ResponseWriter, r *http.Request, actor *types.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	document, err := s.deps.Documents.Document(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.download(w, r, actor, document.FilePath, document.Name, document.FileType, targetDocument, document.ID)
}
