package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/embark/internal/database/repository"
)

// DefaultLabels are the record labels every database starts with.
var DefaultLabels = []string{
	"Consent",
	"Demographics",
	"Lab Results",
	"Imaging",
	"Specimen",
	"Medication",
}

// LabelID returns the deterministic id for a label name.
func LabelID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("label:"+name)).String()
}

// SeedDefaults ensures baseline labels exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	labels := repository.NewLabelRepo(db)
	existing, err := labels.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	for _, name := range DefaultLabels {
		if err := labels.Upsert(ctx, repository.Label{ID: LabelID(name), Name: name}); err != nil {
			return err
		}
	}
	return nil
}
