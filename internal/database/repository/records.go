package repository

import (
	"context"
	"database/sql"
	"errors"
)

// RecordRepo handles subject records.
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo { return &RecordRepo{db: db} }

const recordSelect = `
	SELECT r.id, r.subject_id, r.pds_id, r.label_id, COALESCE(l.name, ''), r.external_id, r.created_at
	FROM records r LEFT JOIN labels l ON l.id = r.label_id`

// Insert stores a record. A zero CreatedAt uses the database clock.
func (r *RecordRepo) Insert(ctx context.Context, rec Record) error {
	var created interface{}
	if !rec.CreatedAt.IsZero() {
		created = rec.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO records(id, subject_id, pds_id, label_id, external_id, created_at)
	VALUES (?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP));
	`, rec.ID, rec.SubjectID, rec.PDSID, rec.LabelID, rec.ExternalID, created)
	return err
}

func (r *RecordRepo) UpdateLabel(ctx context.Context, id string, labelID *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE records SET label_id = ? WHERE id = ?`, labelID, id)
	return err
}

func (r *RecordRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	return err
}

// ListForSubject returns a subject's records oldest first.
func (r *RecordRepo) ListForSubject(ctx context.Context, subjectID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, recordSelect+` WHERE r.subject_id = ? ORDER BY r.created_at, r.id`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecordRepo) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, recordSelect+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CountBySubject returns record totals keyed by subject id.
func (r *RecordRepo) CountBySubject(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT subject_id, COUNT(*) FROM records GROUP BY subject_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var label sql.NullString
	if err := row.Scan(&rec.ID, &rec.SubjectID, &rec.PDSID, &label, &rec.LabelName, &rec.ExternalID, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if label.Valid {
		rec.LabelID = &label.String
	}
	return rec, nil
}
