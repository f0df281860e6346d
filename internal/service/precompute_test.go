package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazythumb/lazythumb/internal/domain"
	"github.com/lazythumb/lazythumb/internal/resizer"
	"github.com/lazythumb/lazythumb/internal/sizes"
	"github.com/lazythumb/lazythumb/internal/urlparse"
)

// fakeStore implements MetadataStore
type fakeStore struct {
	entries map[string]domain.SizeEntry
	err     error
}

func (f *fakeStore) AddSizeEntry(id domain.AttachmentId, name string, entry domain.SizeEntry) error {
	if f.err != nil {
		return f.err
	}
	if f.entries == nil {
		f.entries = map[string]domain.SizeEntry{}
	}
	f.entries[name] = entry
	return nil
}

func setupPrecomputer(t *testing.T, root string, catalog *sizes.Catalog, store MetadataStore) *Precomputer {
	t.Helper()
	parser, err := urlparse.New(root, "/media")
	require.NoError(t, err)
	return NewPrecomputer(catalog, store, resizer.New(82), parser)
}

func TestPrecomputeRun(t *testing.T) {
	catalog := sizes.New([]domain.SizeDefinition{
		{Name: "thumbnail", Width: 150, Height: 150, Crop: domain.CropPolicy{Enabled: true, X: domain.CropCenter, Y: domain.CropCenter}},
		{Name: "medium", Width: 300, Height: 300},
		{Name: "huge", Width: 5000, Height: 5000, Crop: domain.CropPolicy{Enabled: true, X: domain.CropCenter, Y: domain.CropCenter}},
	}, nil)

	t.Run("records entries for satisfiable sizes only", func(t *testing.T) {
		root := t.TempDir()
		writeOriginal(t, root, 600, 400)
		store := &fakeStore{}
		p := setupPrecomputer(t, root, catalog, store)

		att := &domain.Attachment{Id: 7, File: "2023/01/photo.jpg", Width: 600, Height: 400, Sizes: domain.SizeMetadata{}}
		added := p.Run(att)

		assert.Equal(t, 2, added)
		assert.Equal(t, domain.SizeEntry{File: "photo-150x150.jpg", Width: 150, Height: 150, MimeType: "image/jpeg"}, store.entries["thumbnail"])
		assert.Equal(t, domain.SizeEntry{File: "photo-300x200.jpg", Width: 300, Height: 200, MimeType: "image/jpeg"}, store.entries["medium"])
		assert.NotContains(t, store.entries, "huge")

		// metadata only: no variant files were written
		assert.NoFileExists(t, p.paths.AbsPath("2023/01/photo-150x150.jpg"))
		assert.NoFileExists(t, p.paths.AbsPath("2023/01/photo-300x200.jpg"))

		// the in-memory attachment picked up the same entries
		assert.Len(t, att.Sizes, 2)
	})

	t.Run("existing entries are never recomputed", func(t *testing.T) {
		root := t.TempDir()
		writeOriginal(t, root, 600, 400)
		store := &fakeStore{}
		p := setupPrecomputer(t, root, catalog, store)

		att := &domain.Attachment{Id: 7, File: "2023/01/photo.jpg", Sizes: domain.SizeMetadata{
			"thumbnail": {File: "photo-150x150.jpg", Width: 150, Height: 150, MimeType: "image/jpeg"},
			"medium":    {File: "photo-300x200.jpg", Width: 300, Height: 200, MimeType: "image/jpeg"},
		}}
		added := p.Run(att)

		assert.Zero(t, added)
		assert.Empty(t, store.entries)
	})

	t.Run("unreadable original adds nothing", func(t *testing.T) {
		root := t.TempDir()
		store := &fakeStore{}
		p := setupPrecomputer(t, root, catalog, store)

		att := &domain.Attachment{Id: 7, File: "2023/01/gone.jpg", Sizes: domain.SizeMetadata{}}
		added := p.Run(att)

		assert.Zero(t, added)
		assert.Empty(t, store.entries)
	})

	t.Run("store failure keeps the in-memory metadata clean", func(t *testing.T) {
		root := t.TempDir()
		writeOriginal(t, root, 600, 400)
		store := &fakeStore{err: assert.AnError}
		p := setupPrecomputer(t, root, catalog, store)

		att := &domain.Attachment{Id: 7, File: "2023/01/photo.jpg", Sizes: domain.SizeMetadata{}}
		added := p.Run(att)

		assert.Zero(t, added)
		assert.Empty(t, att.Sizes)
	})
}
