package pg

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	internal_errors "github.com/lazythumb/lazythumb/internal/errors"

	"github.com/lazythumb/lazythumb/internal/domain"

	_ "github.com/lib/pq"
)

// Saves attachment to db
func (s *Storage) CreateAttachment(att *domain.Attachment) (domain.AttachmentId, error) {
	createdTs := time.Now().UTC().Round(time.Microsecond) // database anyway round to microsecond

	var id domain.AttachmentId
	err := s.db.QueryRow(`
	INSERT INTO attachments(file, title, mime_type, width, height, sizes, created)
	VALUES($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`,
		att.File, att.Title, att.MimeType, att.Width, att.Height, att.Sizes, createdTs).Scan(&id)
	if err != nil {
		return -1, err
	}
	return id, nil
}

func (s *Storage) GetAttachment(id domain.AttachmentId) (*domain.Attachment, error) {
	var att domain.Attachment
	err := s.db.QueryRow(`
	SELECT
		id,
		file,
		title,
		mime_type,
		width,
		height,
		sizes,
		created
	FROM attachments
	WHERE id = $1`, id).Scan(&att.Id, &att.File, &att.Title, &att.MimeType, &att.Width, &att.Height, &att.Sizes, &att.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &internal_errors.ErrorWithStatusCode{Message: "Attachment not found", StatusCode: 404}
		}
		return nil, err
	}
	return &att, nil
}

func (s *Storage) DeleteAttachment(id domain.AttachmentId) error {
	result, err := s.db.Exec(`DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Attachment not found", StatusCode: 404}
	}
	return nil
}

// AddSizeEntry records one variant under its size name. Entries are
// append-only: an existing name is left untouched and the call reports
// success, matching the write-once lifecycle of generated files.
func (s *Storage) AddSizeEntry(id domain.AttachmentId, name string, entry domain.SizeEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(`
	UPDATE attachments
	SET sizes = sizes || jsonb_build_object($2::text, $3::jsonb)
	WHERE id = $1 AND NOT sizes ? $2`, id, name, payload)
	if err != nil {
		return err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		// Either the row is gone or the entry already exists. Distinguish
		// so a missing attachment is not silently swallowed.
		var exists bool
		if err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM attachments WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("attachment %d not found", id)
		}
	}
	return nil
}
