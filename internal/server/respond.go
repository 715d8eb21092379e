package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"familyhub/pkg/types"

	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Detail string            `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeList never renders a nil slice as null.
func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

// writeError maps err onto the response taxonomy. Unexpected errors are logged
// in full and only described to the client in development.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *types.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, types.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
	case errors.Is(err, types.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.Is(err, types.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, types.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "already exists"})
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID(r.Context()),
		}).Error("request failed")

		body := errorBody{Error: "internal server error"}
		if s.config.IsDevelopment() {
			body.Detail = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

// writeFile streams a stored file as an attachment download.
func (s *Service) writeFile(w http.ResponseWriter, r *http.Request, body io.ReadCloser, filename, contentType string) {
	defer body.Close()

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition(filename))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		s.logger.WithError(err).WithField("path", r.URL.Path).Warn("download interrupted")
	}
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", "")

func contentDisposition(filename string) string {
	disposition := `attachment; filename="` + quoteEscaper.Replace(filename) + `"`
	// RFC 6266 extended parameter for names outside ASCII
	if ext := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); strings.Contains(ext, "filename*=") {
		disposition += "; " + strings.TrimPrefix(ext, "attachment; ")
	}
	return disposition
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func deleted(ok bool) error {
	if !ok {
		return types.ErrNotFound
	}
	return nil
}

func required(field string) error {
	return types.NewValidationError(field, "is required")
}
