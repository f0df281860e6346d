package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	internal_errors "github.com/lazythumb/lazythumb/internal/errors"
	"github.com/lazythumb/lazythumb/internal/utils"

	"github.com/lazythumb/lazythumb/internal/domain"
)

// UploadMedia accepts a multipart form with an "image" file field and an
// optional "title" field, stores the original and returns the attachment
// record including its precomputed size metadata.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.Public.Media.MaxUploadSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		http.Error(w, "Upload too large or malformed", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		http.Error(w, `Missing file: form field key should be "image"`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	att, err := h.media.Upload(file, fileHeader.Filename, r.FormValue("title"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, att)
}

func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := attachmentId(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	att, err := h.media.Get(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, att)
}

func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := attachmentId(r)
	if err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if err := h.media.Delete(id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetSizes lists the live size catalog.
func (h *Handler) GetSizes(w http.ResponseWriter, r *http.Request) {
	type sizeJson struct {
		Name   string `json:"name"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Crop   bool   `json:"crop"`
	}
	defs := h.catalog.All()
	out := make([]sizeJson, 0, len(defs))
	for _, d := range defs {
		out = append(out, sizeJson{Name: d.Name, Width: d.Width, Height: d.Height, Crop: d.Crop.Enabled})
	}
	writeJSON(w, http.StatusOK, out)
}

func attachmentId(r *http.Request) (domain.AttachmentId, error) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid attachment id", StatusCode: 400}
	}
	return id, nil
}
