package service

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	internal_errors "github.com/lazythumb/lazythumb/internal/errors"
	"github.com/lazythumb/lazythumb/internal/logger"

	"github.com/lazythumb/lazythumb/internal/domain"
	"github.com/lazythumb/lazythumb/internal/resizer"
	"github.com/lazythumb/lazythumb/internal/sizes"
	"github.com/lazythumb/lazythumb/internal/urlparse"
)

// AttachmentLookup resolves an original's relative path to its attachment.
// (nil, nil) means no attachment matched.
type AttachmentLookup interface {
	ByFile(relPath string) (*domain.Attachment, error)
}

// AttachmentFilter lets the host veto or swap a lookup result. Returning
// nil discards the attachment.
type AttachmentFilter func(*domain.Attachment) *domain.Attachment

// ResizeExecutor is the image-editing capability the resolver drives.
type ResizeExecutor interface {
	Resize(path string, w, h int, crop domain.CropPolicy) (*resizer.Result, error)
	EnsureExact(res *resizer.Result, w, h int) error
}

// Resolved is a variant ready to stream.
type Resolved struct {
	Path      string
	MimeType  string
	Generated bool // false when the file was already on disk
}

// Resolver turns missed media requests into generated variants. It only
// ever produces dimensions that are both recorded in the attachment's
// persisted size metadata and still present in the live catalog, so a
// crafted URL cannot demand arbitrary sizes.
type Resolver struct {
	parser   *urlparse.Parser
	catalog  *sizes.Catalog
	lookup   AttachmentLookup
	filter   AttachmentFilter
	executor ResizeExecutor
	locks    *keyedMutex
}

func NewResolver(parser *urlparse.Parser, catalog *sizes.Catalog, lookup AttachmentLookup, filter AttachmentFilter, executor ResizeExecutor) *Resolver {
	return &Resolver{
		parser:   parser,
		catalog:  catalog,
		lookup:   lookup,
		filter:   filter,
		executor: executor,
		locks:    newKeyedMutex(),
	}
}

// AbsMediaPath resolves a relative media path against the upload root.
func (r *Resolver) AbsMediaPath(rel string) string {
	return r.parser.AbsPath(rel)
}

// MediaPrefix is the URL path prefix the resolver answers under.
func (r *Resolver) MediaPrefix() string {
	return r.parser.BasePath()
}

// Resolve runs the full flow: parse, original check, attachment lookup,
// size match, resize, and hands back the file to stream. ErrNotHandled
// means the path is not a sized-variant request at all and the caller
// should fall through to its normal not-found handling.
func (r *Resolver) Resolve(requestPath string) (*Resolved, error) {
	req, ok := r.parser.Parse(requestPath)
	if !ok {
		resolutionsTotal.WithLabelValues("not_handled").Inc()
		return nil, internal_errors.ErrNotHandled
	}

	info, err := os.Stat(req.OriginalPath)
	if err != nil || !info.Mode().IsRegular() {
		resolutionsTotal.WithLabelValues("missing_original").Inc()
		return nil, fmt.Errorf("%w: %s", internal_errors.ErrMissingOriginal, req.RelPath)
	}

	att, err := r.lookup.ByFile(req.RelPath)
	if err != nil {
		resolutionsTotal.WithLabelValues("lookup_error").Inc()
		return nil, fmt.Errorf("attachment lookup failed: %w", err)
	}
	if att != nil && r.filter != nil {
		att = r.filter(att)
	}
	if att == nil || att.Id == 0 {
		resolutionsTotal.WithLabelValues("unknown_attachment").Inc()
		return nil, fmt.Errorf("%w: %s", internal_errors.ErrUnknownAttachment, req.RelPath)
	}

	name, entry, ok := r.matchSize(att, req.Width, req.Height)
	if !ok {
		resolutionsTotal.WithLabelValues("unknown_size").Inc()
		return nil, fmt.Errorf("%w: %dx%d", internal_errors.ErrUnknownSize, req.Width, req.Height)
	}
	def, _ := r.catalog.Lookup(name)

	variantPath := filepath.Join(filepath.Dir(req.OriginalPath), entry.File)

	unlock := r.locks.Lock(variantPath)
	defer unlock()

	// Another request may have generated the file while we waited.
	if fi, err := os.Stat(variantPath); err == nil && fi.Mode().IsRegular() {
		resolutionsTotal.WithLabelValues("already_present").Inc()
		return &Resolved{Path: variantPath, MimeType: entryMime(entry)}, nil
	}

	start := time.Now()
	res, err := r.executor.Resize(req.OriginalPath, def.Width, def.Height, def.Crop)
	if err != nil {
		resolutionsTotal.WithLabelValues(outcomeFor(err)).Inc()
		return nil, err
	}
	if err := r.executor.EnsureExact(res, req.Width, req.Height); err != nil {
		resolutionsTotal.WithLabelValues("size_mismatch").Inc()
		return nil, err
	}
	resizeDuration.Observe(time.Since(start).Seconds())

	logger.Log.Info("generated image variant",
		"attachment", att.Id, "size", name, "file", res.FileName)
	resolutionsTotal.WithLabelValues("generated").Inc()

	return &Resolved{Path: res.Path, MimeType: res.MimeType, Generated: true}, nil
}

// matchSize finds a persisted metadata entry with exactly the requested
// dimensions whose size name still exists in the live catalog. Catalog
// order makes the search deterministic.
func (r *Resolver) matchSize(att *domain.Attachment, w, h int) (string, domain.SizeEntry, bool) {
	for _, def := range r.catalog.All() {
		entry, ok := att.Sizes[def.Name]
		if !ok {
			continue
		}
		if entry.Width == w && entry.Height == h {
			return def.Name, entry, true
		}
	}
	return "", domain.SizeEntry{}, false
}

func entryMime(entry domain.SizeEntry) string {
	if entry.MimeType != "" {
		return entry.MimeType
	}
	if mt := mime.TypeByExtension(filepath.Ext(entry.File)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, internal_errors.ErrLoad):
		return "load_error"
	case errors.Is(err, internal_errors.ErrResize):
		return "resize_error"
	case errors.Is(err, internal_errors.ErrSave):
		return "save_error"
	case errors.Is(err, internal_errors.ErrSizeMismatch):
		return "size_mismatch"
	default:
		return "error"
	}
}
