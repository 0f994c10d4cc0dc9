// internal/repository/postgres/upload_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"mobility-service/internal/domain/upload"
	xerrors "mobility-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UploadRepository struct {
	db *pgxpool.Pool
}

func NewUploadRepository(db *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{db: db}
}

const uploadColumns = `
	id, session_id, original_name, file_name, file_url, file_size, mime_type, uploaded_at
`

func (r *UploadRepository) Create(ctx context.Context, f *upload.UploadedFile) error {
	query := `
		INSERT INTO uploaded_files (id, session_id, original_name, file_name, file_url, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING uploaded_at
	`

	err := r.db.QueryRow(ctx, query,
		f.ID, f.SessionID, f.OriginalName, f.FileName, f.FileURL, f.FileSize, f.MimeType,
	).Scan(&f.UploadedAt)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}

	return nil
}

func (r *UploadRepository) GetByID(ctx context.Context, id string) (*upload.UploadedFile, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploaded_files WHERE id = $1`

	var f upload.UploadedFile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.SessionID, &f.OriginalName, &f.FileName, &f.FileURL,
		&f.FileSize, &f.MimeType, &f.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find upload: %w", err)
	}

	return &f, nil
}

func (r *UploadRepository) ListBySession(ctx context.Context, sessionID string) ([]upload.UploadedFile, error) {
	query := `
		SELECT ` + uploadColumns + `
		FROM uploaded_files
		WHERE session_id = $1
		ORDER BY uploaded_at DESC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	files := []upload.UploadedFile{}
	for rows.Next() {
		var f upload.UploadedFile
		if err := rows.Scan(
			&f.ID, &f.SessionID, &f.OriginalName, &f.FileName, &f.FileURL,
			&f.FileSize, &f.MimeType, &f.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

func (r *UploadRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM uploaded_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
