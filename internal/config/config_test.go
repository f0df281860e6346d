package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazythumb/lazythumb/internal/domain"
)

const validPublic = `
http:
  port: 8080
media:
  upload_dir: ./media
  base_url: /media
  max_upload_size_mb: 32
  allowed_mime_types:
    - image/jpeg
    - image/png
  jpeg_quality: 82
  lookup: native
sizes:
  thumbnail:
    width: 150
    height: 150
    crop: true
  banner:
    width: 1200
    height: 300
    crop: [left, top]
  medium_large:
    width: 768
logging:
  level: info
  json: false
jwt_ttl: 24h
`

const validPrivate = `
pg:
  host: localhost
  port: 5432
  user: lazythumb
  password: secret
  dbname: lazythumb
jwt_key: test-secret
`

func writeConfigFolder(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	if public != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o644))
	}
	if private != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o644))
	}
	return dir
}

func TestMustLoad(t *testing.T) {
	t.Run("loads a valid config", func(t *testing.T) {
		dir := writeConfigFolder(t, validPublic, validPrivate)

		cfg := MustLoad(dir)

		assert.Equal(t, 8080, cfg.Public.Http.Port)
		assert.Equal(t, "/media", cfg.Public.Media.BaseURL)
		assert.Equal(t, int64(32), cfg.Public.Media.MaxUploadSizeMB)
		assert.Equal(t, "native", cfg.Public.Media.Lookup)
		assert.Equal(t, 24*time.Hour, cfg.JwtTTL())
		assert.Equal(t, "test-secret", cfg.JwtKey())
		assert.Equal(t, "localhost", cfg.Private.Pg.Host)

		require.Contains(t, cfg.Public.Sizes, "thumbnail")
		thumb := cfg.Public.Sizes["thumbnail"]
		assert.True(t, thumb.Crop.Enabled)
		assert.Equal(t, domain.CropCenter, thumb.Crop.X)

		banner := cfg.Public.Sizes["banner"]
		assert.True(t, banner.Crop.Enabled)
		assert.Equal(t, domain.CropLeft, banner.Crop.X)
		assert.Equal(t, domain.CropTop, banner.Crop.Y)

		assert.False(t, cfg.Public.Sizes["medium_large"].Crop.Enabled)
		assert.Zero(t, cfg.Public.Sizes["medium_large"].Height)
	})

	t.Run("panics when a config file is missing", func(t *testing.T) {
		dir := writeConfigFolder(t, validPublic, "")

		assert.Panics(t, func() { MustLoad(dir) })
	})

	t.Run("panics on an unknown lookup strategy", func(t *testing.T) {
		broken := strings.Replace(validPublic, "lookup: native", "lookup: fuzzy", 1)
		dir := writeConfigFolder(t, broken, validPrivate)

		assert.Panics(t, func() { MustLoad(dir) })
	})

	t.Run("panics when no sizes are configured", func(t *testing.T) {
		public := `
http:
  port: 8080
media:
  upload_dir: ./media
  base_url: /media
  max_upload_size_mb: 32
  allowed_mime_types: [image/jpeg]
  jpeg_quality: 82
  lookup: native
jwt_ttl: 24h
`
		dir := writeConfigFolder(t, public, validPrivate)

		assert.Panics(t, func() { MustLoad(dir) })
	})
}

func TestSizeDefinitions(t *testing.T) {
	dir := writeConfigFolder(t, validPublic, validPrivate)
	cfg := MustLoad(dir)

	defs := cfg.Public.SizeDefinitions()
	require.Len(t, defs, 3)

	byName := map[string]domain.SizeDefinition{}
	for _, d := range defs {
		byName[d.Name] = d
	}
	assert.Equal(t, 150, byName["thumbnail"].Width)
	assert.Equal(t, 1200, byName["banner"].Width)
	assert.Equal(t, 768, byName["medium_large"].Width)
	assert.Zero(t, byName["medium_large"].Height)
}
