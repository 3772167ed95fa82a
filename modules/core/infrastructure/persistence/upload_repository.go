package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectedplaces/directory/modules/core/domain/entities/upload"
	"github.com/connectedplaces/directory/pkg/composables"
)

var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrUploadAssigned = errors.New("upload already assigned")
)

const uploadColumns = `id, filename, mime_type, size, status, created_at, updated_at`

type PgUploadRepository struct{}

func NewUploadRepository() upload.Repository {
	return &PgUploadRepository{}
}

func (r *PgUploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = $1`, id)
	u, err := scanUpload(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	return u, err
}

func (r *PgUploadRepository) Create(ctx context.Context, u *upload.Upload) (*upload.Upload, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	status := u.Status
	if status == "" {
		status = upload.StatusPendingAssignment
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO uploads (filename, mime_type, size, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+uploadColumns,
		u.Filename, u.MimeType, u.Size, status,
	)
	return scanUpload(row)
}

func (r *PgUploadRepository) MarkAssigned(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE uploads
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		id, upload.StatusAssigned, upload.StatusPendingAssignment,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUploadAssigned
	}
	return nil
}

func scanUpload(row pgx.Row) (*upload.Upload, error) {
	var u upload.Upload
	if err := row.Scan(
		&u.ID,
		&u.Filename,
		&u.MimeType,
		&u.Size,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
