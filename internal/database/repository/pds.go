package repository

import (
	"context"
	"database/sql"
)

// PDSRepo handles data-holding providers.
type PDSRepo struct {
	db *sql.DB
}

func NewPDSRepo(db *sql.DB) *PDSRepo { return &PDSRepo{db: db} }

func (r *PDSRepo) Upsert(ctx context.Context, p PDS) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO pds(id, name, display_label, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 display_label=excluded.display_label;
	`, p.ID, p.Name, p.DisplayLabel)
	return err
}

func (r *PDSRepo) List(ctx context.Context) ([]PDS, error) {
	return r.query(ctx, `SELECT id, name, display_label, created_at FROM pds ORDER BY name`)
}

// ListForProtocol returns the providers linked to a protocol in link order.
func (r *PDSRepo) ListForProtocol(ctx context.Context, protocolID string) ([]PDS, error) {
	return r.query(ctx, `
	SELECT p.id, p.name, p.display_label, p.created_at
	FROM pds p JOIN protocol_pds pp ON pp.pds_id = p.id
	WHERE pp.protocol_id = ?
	ORDER BY pp.sort_order, p.name`, protocolID)
}

func (r *PDSRepo) query(ctx context.Context, q string, args ...interface{}) ([]PDS, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PDS
	for rows.Next() {
		var p PDS
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayLabel, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
