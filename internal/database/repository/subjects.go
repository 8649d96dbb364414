package repository

import (
	"context"
	"database/sql"
	"errors"
)

// SubjectRepo handles subjects.
type SubjectRepo struct {
	db *sql.DB
}

func NewSubjectRepo(db *sql.DB) *SubjectRepo { return &SubjectRepo{db: db} }

const subjectColumns = `id, protocol_id, organization_subject_id, first_name, last_name, dob, created_at, updated_at`

func (r *SubjectRepo) Upsert(ctx context.Context, s Subject) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO subjects(id, protocol_id, organization_subject_id, first_name, last_name, dob, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 protocol_id=excluded.protocol_id,
	 organization_subject_id=excluded.organization_subject_id,
	 first_name=excluded.first_name,
	 last_name=excluded.last_name,
	 dob=excluded.dob,
	 updated_at=CURRENT_TIMESTAMP;
	`, s.ID, s.ProtocolID, s.OrganizationSubjectID, s.FirstName, s.LastName, s.DOB)
	return err
}

// List returns every subject ordered by organization subject id.
func (r *SubjectRepo) List(ctx context.Context) ([]Subject, error) {
	return r.query(ctx, `SELECT `+subjectColumns+` FROM subjects ORDER BY organization_subject_id, id`)
}

func (r *SubjectRepo) ListForProtocol(ctx context.Context, protocolID string) ([]Subject, error) {
	return r.query(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE protocol_id = ? ORDER BY organization_subject_id, id`, protocolID)
}

func (r *SubjectRepo) Get(ctx context.Context, id string) (*Subject, error) {
	s, err := scanSubject(r.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubjectRepo) query(ctx context.Context, q string, args ...interface{}) ([]Subject, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSubject(row scanner) (Subject, error) {
	var s Subject
	var dob sql.NullTime
	if err := row.Scan(&s.ID, &s.ProtocolID, &s.OrganizationSubjectID, &s.FirstName, &s.LastName,
		&dob, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Subject{}, err
	}
	if dob.Valid {
		s.DOB = &dob.Time
	}
	return s, nil
}
