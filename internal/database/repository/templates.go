package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TemplateRepo handles saved report templates.
type TemplateRepo struct {
	db DBTX
}

func NewTemplateRepo(db DBTX) *TemplateRepo { return &TemplateRepo{db: db} }

// Upsert stores definition under name. An identical definition is left
// untouched; a different one replaces it and stamps updated_at.
func (r *TemplateRepo) Upsert(ctx context.Context, name, definition string) (int64, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		res, err := r.db.ExecContext(ctx, `INSERT INTO report_templates(name, definition_json) VALUES (?, ?)`, name, definition)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	if existing.DefinitionJSON == definition {
		return existing.ID, nil
	}
	_, err = r.db.ExecContext(ctx, `UPDATE report_templates SET definition_json = ?, updated_at = CURRENT_TIMESTAMP WHERE template_id = ?`, definition, existing.ID)
	return existing.ID, err
}

func (r *TemplateRepo) GetByName(ctx context.Context, name string) (*ReportTemplate, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT template_id, name, definition_json, created_at, updated_at
	FROM report_templates WHERE name = ?`, name)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepo) List(ctx context.Context) ([]ReportTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT template_id, name, definition_json, created_at, updated_at
	FROM report_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReportTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTemplate(row scanner) (ReportTemplate, error) {
	var t ReportTemplate
	var updated sql.NullTime
	if err := row.Scan(&t.ID, &t.Name, &t.DefinitionJSON, &t.CreatedAt, &updated); err != nil {
		return ReportTemplate{}, err
	}
	if updated.Valid {
		u := updated.Time
		t.UpdatedAt = &u
	}
	return t, nil
}
