package repository

import (
	"context"
	"database/sql"
	"errors"
)

// LabelRepo handles record labels.
type LabelRepo struct {
	db *sql.DB
}

func NewLabelRepo(db *sql.DB) *LabelRepo { return &LabelRepo{db: db} }

func (r *LabelRepo) Upsert(ctx context.Context, l Label) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO labels(id, name) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`, l.ID, l.Name)
	return err
}

func (r *LabelRepo) ByName(ctx context.Context, name string) (*Label, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM labels WHERE name = ?`, name)
	var l Label
	if err := row.Scan(&l.ID, &l.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *LabelRepo) List(ctx context.Context) ([]Label, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM labels ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Label
	for rows.Next() {
		var l Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
