// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/entitylink/internal/logger"
	"github.com/pdiddy/entitylink/internal/textextract"
	"github.com/pdiddy/entitylink/pkg/types"
)

// FileField is the multipart form field carrying the document.
const FileField = "file"

// LinkFunc links the entities of one document.
type LinkFunc func(ctx context.Context, doc io.Reader) (*types.EntityLinks, error)

// LinkHandler reads the uploaded document, links it with link, and writes
// the serialized result as JSON.
func LinkHandler(link LinkFunc, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

		file, _, err := r.FormFile(FileField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				RenderError(w, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
				return
			}
			RenderError(w, fmt.Errorf("reading upload field %q: %w", FileField, err), http.StatusBadRequest)
			return
		}
		defer file.Close()

		links, err := link(r.Context(), file)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, textextract.ErrInvalidPDF) {
				status = http.StatusUnprocessableEntity
			}
			RenderError(w, err, status)
			return
		}

		out, err := links.Serialize()
		if err != nil {
			RenderError(w, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			logger.Get().WithError(err).Error("writing response")
		}
	}
}

// RenderError logs err and writes its text with status.
func RenderError(w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		logger.Get().Error(err)
	} else {
		logger.Get().Warn(err)
	}
	http.Error(w, err.Error(), status)
}
