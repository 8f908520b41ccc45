package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/model"
)

// FileRepo implements FileRepository using PostgreSQL.
type FileRepo struct{ db *DB }

// NewFileRepo constructs a file repository.
func NewFileRepo(db *DB) *FileRepo { return &FileRepo{db: db} }

// LEFT JOINs keep files whose project or uploader is gone.
const fileViewSelect = `
SELECT f.id, f.filename, f.original_filename, f.file_path, f.file_size, f.project_id,
       f.version, f.uploaded_by, f.upload_time, p.name, u.username
FROM files f
LEFT JOIN projects p ON f.project_id = p.id
LEFT JOIN users u ON f.uploaded_by = u.id`

func scanFileView(row pgx.Row) (*model.FileView, error) {
	var v model.FileView
	err := row.Scan(
		&v.ID, &v.Filename, &v.OriginalFilename, &v.FilePath, &v.FileSize, &v.ProjectID,
		&v.Version, &v.UploadedBy, &v.UploadTime, &v.ProjectName, &v.UploadedByUsername,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// Create inserts a file row.
func (r *FileRepo) Create(ctx context.Context, f model.File) (*model.File, error) {
	const q = `
INSERT INTO files (filename, original_filename, file_path, file_size, project_id, version, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, upload_time`
	err := r.db.Pool.QueryRow(ctx, q,
		f.Filename, f.OriginalFilename, f.FilePath, f.FileSize, f.ProjectID, f.Version, f.UploadedBy,
	).Scan(&f.ID, &f.UploadTime)
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// List returns all files, newest first.
func (r *FileRepo) List(ctx context.Context) ([]model.FileView, error) {
	rows, err := r.db.Pool.Query(ctx, fileViewSelect+`
ORDER BY f.upload_time DESC, f.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FileView{}
	for rows.Next() {
		v, err := scanFileView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Get returns a single file by id.
func (r *FileRepo) Get(ctx context.Context, id int64) (*model.FileView, error) {
	return scanFileView(r.db.Pool.QueryRow(ctx, fileViewSelect+`
WHERE f.id = $1`, id))
}

// Delete removes the metadata row.
func (r *FileRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
