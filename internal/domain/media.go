package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type AttachmentId = int64

// Attachment is a media-library record for one uploaded original image.
// The original file itself is immutable once uploaded; only the Sizes
// metadata grows over time as variants are registered.
type Attachment struct {
	Id        AttachmentId `json:"id"`
	File      string       `json:"file"` // path relative to the upload root, e.g. "2023/01/photo.jpg"
	Title     string       `json:"title"`
	MimeType  string       `json:"mime_type"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Sizes     SizeMetadata `json:"sizes"`
	CreatedAt time.Time    `json:"created_at"`
}

// SizeEntry records one generated (or precomputed) variant of an attachment.
// File is a bare file name; the variant lives next to the original.
type SizeEntry struct {
	File     string `json:"file"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
}

// SizeMetadata maps size names to variant records. Entries are append-only:
// once a name is present it is never replaced.
type SizeMetadata map[string]SizeEntry

// Value implements driver.Valuer so the metadata can be stored as JSONB.
func (m SizeMetadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading the JSONB column back.
func (m *SizeMetadata) Scan(src interface{}) error {
	if src == nil {
		*m = SizeMetadata{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into SizeMetadata", src)
	}
	return json.Unmarshal(b, m)
}
