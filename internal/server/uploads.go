package server

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"familyhub/internal/storage"
	"familyhub/pkg/types"
)

// stageFile stages the first file sent under field. It returns nil when the
// request carries no such file. Callers defer Discard on the result.
func (s *Service) stageFile(r *http.Request, field string) (*storage.StagedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}

	return s.stageHeader(field, headers[0])
}

// stageFiles stages every file sent under field, discarding all of them when
// one fails.
func (s *Service) stageFiles(r *http.Request, field string) ([]*storage.StagedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var staged []*storage.StagedFile
	for _, header := range r.MultipartForm.File[field] {
		file, err := s.stageHeader(field, header)
		if err != nil {
			s.discardAll(staged)
			return nil, err
		}
		staged = append(staged, file)
	}

	return staged, nil
}

func (s *Service) stageHeader(field string, header *multipart.FileHeader) (*storage.StagedFile, error) {
	if header.Size > s.config.MaxUploadMB<<20 {
		return nil, types.NewValidationError(field, fmt.Sprintf("must be smaller than %d MB", s.config.MaxUploadMB))
	}
	if header.Size == 0 {
		return nil, types.NewValidationError(field, "is empty")
	}

	return s.deps.Files.StageUpload(header)
}

func (s *Service) discardAll(staged []*storage.StagedFile) {
	for _, f := range staged {
		s.deps.Files.Discard(f)
	}
}

// download streams key under the logical name and records the download.
func (s *Service) download(w http.ResponseWriter, r *http.Request, actor *types.Actor, key, name, contentType, targetType, targetID string) {
	body, err := s.deps.Files.Open(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.record(r, types.AuditDownload, actor, targetType, targetID, map[string]any{"file": key})

	s.writeFile(w, r, body, storage.DownloadName(name, key), contentType)
}
