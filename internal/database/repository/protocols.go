package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ProtocolRepo handles protocols and their provider links.
type ProtocolRepo struct {
	db *sql.DB
}

func NewProtocolRepo(db *sql.DB) *ProtocolRepo { return &ProtocolRepo{db: db} }

func (r *ProtocolRepo) Upsert(ctx context.Context, p Protocol) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO protocols(id, name, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`, p.ID, p.Name)
	return err
}

func (r *ProtocolRepo) List(ctx context.Context) ([]Protocol, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM protocols ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Protocol
	for rows.Next() {
		var p Protocol
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProtocolRepo) Get(ctx context.Context, id string) (*Protocol, error) {
	var p Protocol
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM protocols WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// LinkPDS attaches a provider to a protocol. sortOrder controls the order
// providers are listed in.
func (r *ProtocolRepo) LinkPDS(ctx context.Context, protocolID, pdsID string, sortOrder int) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO protocol_pds(protocol_id, pds_id, sort_order) VALUES (?, ?, ?)
	ON CONFLICT(protocol_id, pds_id) DO UPDATE SET sort_order=excluded.sort_order;
	`, protocolID, pdsID, sortOrder)
	return err
}

func (r *ProtocolRepo) UnlinkPDS(ctx context.Context, protocolID, pdsID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM protocol_pds WHERE protocol_id = ? AND pds_id = ?`, protocolID, pdsID)
	return err
}
