package handler

import (
	"net/http"

	"provider-booking-api/internal/model"
)

// UploadFile stores the multipart field "file" and records it.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File not provided")
		return
	}
	defer file.Close()

	key, err := h.files.Put(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	f := &model.File{Name: header.Filename, Path: key}
	if err := h.store.CreateFile(r.Context(), f); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.withURL(f))
}
