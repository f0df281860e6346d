package service

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"

	internal_errors "github.com/lazythumb/lazythumb/internal/errors"
	"github.com/lazythumb/lazythumb/internal/logger"

	"github.com/lazythumb/lazythumb/internal/domain"
	"github.com/lazythumb/lazythumb/internal/resizer"
)

type MediaService interface {
	Upload(data io.ReadSeeker, filename, title string) (*domain.Attachment, error)
	Get(id domain.AttachmentId) (*domain.Attachment, error)
	Delete(id domain.AttachmentId) error
}

type MediaStorage interface {
	Save(fileData io.Reader, filename string, now time.Time) (string, error)
	Delete(relPath string) error
}

type AttachmentStore interface {
	CreateAttachment(att *domain.Attachment) (domain.AttachmentId, error)
	GetAttachment(id domain.AttachmentId) (*domain.Attachment, error)
	DeleteAttachment(id domain.AttachmentId) error
}

type Media struct {
	storage      MediaStorage
	store        AttachmentStore
	precompute   *Precomputer
	sanitizer    *bluemonday.Policy
	allowedMimes map[string]bool
}

func NewMedia(storage MediaStorage, store AttachmentStore, precompute *Precomputer, allowedMimeTypes []string) MediaService {
	allowed := make(map[string]bool, len(allowedMimeTypes))
	for _, m := range allowedMimeTypes {
		allowed[m] = true
	}
	return &Media{
		storage:      storage,
		store:        store,
		precompute:   precompute,
		sanitizer:    bluemonday.StrictPolicy(),
		allowedMimes: allowed,
	}
}

// Upload stores a new original, creates its attachment record and
// precomputes size metadata for every catalog entry the image can satisfy.
func (m *Media) Upload(data io.ReadSeeker, filename, title string) (*domain.Attachment, error) {
	mt, err := mimetype.DetectReader(data)
	if err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Cannot detect file type", StatusCode: 400}
	}
	if !m.allowedMimes[mt.String()] {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Unsupported file type: " + mt.String(), StatusCode: 400}
	}

	if _, err := data.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(data)
	if err != nil {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "File is not a decodable image", StatusCode: 400}
	}
	if _, err := data.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	relPath, err := m.storage.Save(data, filename, time.Now())
	if err != nil {
		return nil, err
	}

	att := &domain.Attachment{
		File:     relPath,
		Title:    m.sanitizer.Sanitize(title),
		MimeType: mt.String(),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Sizes:    domain.SizeMetadata{},
	}

	id, err := m.store.CreateAttachment(att)
	if err != nil {
		m.storage.Delete(relPath) // best effort, keep fs and db consistent
		return nil, err
	}
	att.Id = id

	added := m.precompute.Run(att)
	logger.Log.Info("uploaded original",
		"attachment", id, "file", relPath, "precomputed_sizes", added)

	return att, nil
}

func (m *Media) Get(id domain.AttachmentId) (*domain.Attachment, error) {
	return m.store.GetAttachment(id)
}

// Delete removes the attachment record, the original, and every variant
// that was actually generated on disk.
func (m *Media) Delete(id domain.AttachmentId) error {
	att, err := m.store.GetAttachment(id)
	if err != nil {
		return err
	}

	if err := m.store.DeleteAttachment(id); err != nil {
		return err
	}

	dir := path.Dir(att.File)
	for name, entry := range att.Sizes {
		variantRel := entry.File
		if dir != "." {
			variantRel = dir + "/" + entry.File
		}
		if err := m.storage.Delete(variantRel); err != nil {
			logger.Log.Warn("failed to delete variant", "attachment", id, "size", name, "err", err)
		}
	}
	return m.storage.Delete(att.File)
}

// compile-time check that the executor satisfies the service interfaces
var (
	_ Prober         = (*resizer.Executor)(nil)
	_ ResizeExecutor = (*resizer.Executor)(nil)
)
