package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"fintrack/internal/backend/fsblob"
	"fintrack/internal/log"
)

// handleServeFile streams a receipt blob after verifying the HMAC
// signature from the signed URL. No session is required: the signature is
// the authorization.
func (s *Server) handleServeFile(w http.ResponseWriter, r *http.Request) {
	if s.files == nil {
		http.NotFound(w, r)
		return
	}

	blobPath := r.PathValue("path")
	exp := r.URL.Query().Get("exp")
	sig := r.URL.Query().Get("sig")

	if err := s.files.Verify(blobPath, exp, sig); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, fsblob.ErrSignatureExpired) {
			status = http.StatusGone
		}
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rejected file request",
			log.FieldError, err, log.FieldBlobPath, blobPath)
		writeError(w, status, "invalid or expired link")
		return
	}

	f, err := s.files.Open(blobPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(path.Ext(blobPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	_, _ = io.Copy(w, f)
}
