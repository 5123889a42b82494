package repository

import (
	"context"
	"database/sql"
	"errors"
)

// DocumentRepo handles ingested source documents.
type DocumentRepo struct {
	db DBTX
}

func NewDocumentRepo(db DBTX) *DocumentRepo { return &DocumentRepo{db: db} }

// Record registers a document keyed by file hash. It reports whether a new
// row was created.
func (r *DocumentRepo) Record(ctx context.Context, d Document) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO documents(filename, file_hash, document_type, status)
	VALUES (?, ?, ?, ?)`, d.Filename, d.FileHash, d.DocumentType, d.Status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *DocumentRepo) GetByHash(ctx context.Context, fileHash string) (*Document, error) {
	var d Document
	err := r.db.QueryRowContext(ctx, `
	SELECT document_id, filename, file_hash, document_type, status, upload_date
	FROM documents WHERE file_hash = ?`, fileHash).
		Scan(&d.ID, &d.Filename, &d.FileHash, &d.DocumentType, &d.Status, &d.UploadDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, fileHash, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE documents SET status = ? WHERE file_hash = ?`, status, fileHash)
	return err
}

// List returns documents newest first.
func (r *DocumentRepo) List(ctx context.Context) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT document_id, filename, file_hash, document_type, status, upload_date
	FROM documents ORDER BY upload_date DESC, document_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.FileHash, &d.DocumentType, &d.Status, &d.UploadDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepo) DeleteByHash(ctx context.Context, fileHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE file_hash = ?`, fileHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
