package service

import (
	"github.com/lazythumb/lazythumb/internal/logger"

	"github.com/lazythumb/lazythumb/internal/domain"
	"github.com/lazythumb/lazythumb/internal/resizer"
	"github.com/lazythumb/lazythumb/internal/sizes"
)

// Prober computes what a resize would produce without writing a file.
type Prober interface {
	Probe(path string, w, h int, crop domain.CropPolicy) (*resizer.Result, error)
}

// MetadataStore appends size entries to an attachment's metadata.
type MetadataStore interface {
	AddSizeEntry(id domain.AttachmentId, name string, entry domain.SizeEntry) error
}

// PathResolver maps a stored relative path to its absolute location.
type PathResolver interface {
	AbsPath(rel string) string
}

// Precomputer populates an attachment's size metadata after upload. Only
// dimensions are computed; the pixel-writing work is deferred to the first
// on-demand request for each variant. Sizes the image cannot satisfy (too
// small to crop, nothing to shrink) are silently skipped, which is exactly
// what keeps them unreachable through crafted URLs later.
type Precomputer struct {
	catalog *sizes.Catalog
	store   MetadataStore
	prober  Prober
	paths   PathResolver
}

func NewPrecomputer(catalog *sizes.Catalog, store MetadataStore, prober Prober, paths PathResolver) *Precomputer {
	return &Precomputer{catalog: catalog, store: store, prober: prober, paths: paths}
}

// Run computes and records entries for every catalog size the attachment
// does not have yet. It mutates att.Sizes in place and returns the number
// of entries added.
func (p *Precomputer) Run(att *domain.Attachment) int {
	origPath := p.paths.AbsPath(att.File)
	added := 0

	for _, def := range p.catalog.All() {
		if _, ok := att.Sizes[def.Name]; ok {
			continue
		}

		res, err := p.prober.Probe(origPath, def.Width, def.Height, def.Crop)
		if err != nil {
			logger.Log.Debug("skipping size during precompute",
				"attachment", att.Id, "size", def.Name, "err", err)
			continue
		}

		entry := domain.SizeEntry{
			File:     res.FileName,
			Width:    res.Width,
			Height:   res.Height,
			MimeType: res.MimeType,
		}
		if err := p.store.AddSizeEntry(att.Id, def.Name, entry); err != nil {
			logger.Log.Warn("failed to record size entry",
				"attachment", att.Id, "size", def.Name, "err", err)
			continue
		}

		if att.Sizes == nil {
			att.Sizes = domain.SizeMetadata{}
		}
		att.Sizes[def.Name] = entry
		precomputedSizes.Inc()
		added++
	}

	return added
}
