package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestCropPolicyUnmarshalYAML(t *testing.T) {
	type holder struct {
		Crop CropPolicy `yaml:"crop"`
	}

	t.Run("bool true centers", func(t *testing.T) {
		var h holder
		require.NoError(t, yaml.Unmarshal([]byte("crop: true"), &h))
		assert.Equal(t, CropPolicy{Enabled: true, X: CropCenter, Y: CropCenter}, h.Crop)
	})

	t.Run("bool false disables", func(t *testing.T) {
		var h holder
		require.NoError(t, yaml.Unmarshal([]byte("crop: false"), &h))
		assert.False(t, h.Crop.Enabled)
	})

	t.Run("anchor pair", func(t *testing.T) {
		var h holder
		require.NoError(t, yaml.Unmarshal([]byte("crop: [left, top]"), &h))
		assert.Equal(t, CropPolicy{Enabled: true, X: CropLeft, Y: CropTop}, h.Crop)
	})

	t.Run("invalid anchor", func(t *testing.T) {
		var h holder
		assert.Error(t, yaml.Unmarshal([]byte("crop: [sideways, top]"), &h))
	})

	t.Run("wrong element count", func(t *testing.T) {
		var h holder
		assert.Error(t, yaml.Unmarshal([]byte("crop: [left]"), &h))
	})
}

func TestSizeMetadataRoundtrip(t *testing.T) {
	m := SizeMetadata{
		"medium": {File: "photo-300x200.jpg", Width: 300, Height: 200, MimeType: "image/jpeg"},
	}

	v, err := m.Value()
	require.NoError(t, err)

	var got SizeMetadata
	require.NoError(t, got.Scan(v))
	assert.Equal(t, m, got)
}

func TestSizeMetadataScanNil(t *testing.T) {
	var m SizeMetadata
	require.NoError(t, m.Scan(nil))
	assert.Empty(t, m)
	assert.NotNil(t, m)
}
