package pg

import (
	"database/sql"
	"errors"

	"github.com/lazythumb/lazythumb/internal/domain"

	_ "github.com/lib/pq"
)

// AttachmentLookup resolves the attachment owning an original image from
// its path relative to the upload root. A (nil, nil) return means no
// attachment matched; that is for the caller to classify.
type AttachmentLookup interface {
	ByFile(relPath string) (*domain.Attachment, error)
}

const attachmentColumns = `id, file, title, mime_type, width, height, sizes, created`

func scanAttachment(row *sql.Row) (*domain.Attachment, error) {
	var att domain.Attachment
	err := row.Scan(&att.Id, &att.File, &att.Title, &att.MimeType, &att.Width, &att.Height, &att.Sizes, &att.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &att, nil
}

// NativeLookup is the fast path: an indexed equality query on the stored
// relative path.
type NativeLookup struct {
	Storage *Storage
}

func (l *NativeLookup) ByFile(relPath string) (*domain.Attachment, error) {
	row := l.Storage.db.QueryRow(`
	SELECT `+attachmentColumns+`
	FROM attachments
	WHERE file = $1`, relPath)
	return scanAttachment(row)
}

// ScanLookup is the fallback for installs migrated from a layout whose
// stored paths lost their date prefix: it matches on the trailing path
// segments instead of the full relative path. Slower, but tolerant.
type ScanLookup struct {
	Storage *Storage
}

func (l *ScanLookup) ByFile(relPath string) (*domain.Attachment, error) {
	row := l.Storage.db.QueryRow(`
	SELECT `+attachmentColumns+`
	FROM attachments
	WHERE file = $1 OR file LIKE '%/' || $1
	ORDER BY id
	LIMIT 1`, relPath)
	return scanAttachment(row)
}
