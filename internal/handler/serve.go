package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	internal_errors "github.com/lazythumb/lazythumb/internal/errors"
	"github.com/lazythumb/lazythumb/internal/logger"
)

// ServeMedia serves files under the public media prefix. A present file is
// streamed as-is; a miss is the not-found condition that triggers the
// on-demand resolver. Paths the resolver does not recognize fall through
// to a plain 404, exactly as if the resolver were not installed.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := h.mediaRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	fullPath := h.resolver.AbsMediaPath(rel)
	if info, err := os.Stat(fullPath); err == nil && info.Mode().IsRegular() {
		http.ServeFile(w, r, fullPath)
		return
	}

	resolved, err := h.resolver.Resolve(r.URL.Path)
	if err != nil {
		if errors.Is(err, internal_errors.ErrNotHandled) {
			http.NotFound(w, r)
			return
		}
		logger.Log.Info("variant resolution failed", "path", r.URL.Path, "err", err)
		http.Error(w, err.Error(), internal_errors.StatusCode(err))
		return
	}

	h.stream(w, r, resolved.Path, resolved.MimeType)
}

// stream writes the resolved variant with explicit success headers. A
// failure to open the file is a stream error (500); a failure mid-copy can
// only be logged since the status line is already on the wire.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request, fullPath, mimeType string) {
	f, err := os.Open(fullPath)
	if err != nil {
		logger.Log.Error("cannot open resolved variant", "path", fullPath, "err", err)
		http.Error(w, internal_errors.ErrStream.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Log.Error("cannot stat resolved variant", "path", fullPath, "err", err)
		http.Error(w, internal_errors.ErrStream.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, f); err != nil {
		logger.Log.Error("streaming variant failed", "path", fullPath, "err", err)
	}
}

// mediaRelPath strips the public prefix and rejects traversal attempts.
func (h *Handler) mediaRelPath(urlPath string) (string, bool) {
	prefix := h.resolver.MediaPrefix() + "/"
	rel, ok := strings.CutPrefix(urlPath, prefix)
	if !ok || rel == "" {
		return "", false
	}
	cleaned := path.Clean("/" + rel)[1:]
	if cleaned == "" || cleaned != rel {
		return "", false
	}
	return rel, true
}
