package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jask/embark/internal/database"
	"github.com/jask/embark/internal/database/repository"
)

// SeedRepos bundles the repos used by Seeder.
type SeedRepos struct {
	Protocols *repository.ProtocolRepo
	PDS       *repository.PDSRepo
	Subjects  *repository.SubjectRepo
	Records   *repository.RecordRepo
	Labels    *repository.LabelRepo
}

// SeedResult counts what Seed inserted.
type SeedResult struct {
	Subjects int
	Records  int
	Skipped  bool
}

// Seeder creates demo data.
type Seeder struct {
	Repos SeedRepos
	Now   func() time.Time
}

// NewSeeder wires a Seeder to db.
func NewSeeder(db *sql.DB) *Seeder {
	return &Seeder{Repos: SeedRepos{
		Protocols: repository.NewProtocolRepo(db),
		PDS:       repository.NewPDSRepo(db),
		Subjects:  repository.NewSubjectRepo(db),
		Records:   repository.NewRecordRepo(db),
		Labels:    repository.NewLabelRepo(db),
	}}
}

type demoSubject struct {
	orgID, first, last string
	dob                time.Time
}

func seedID(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+name)).String()
}

// Seed inserts a demo protocol, its providers, subjects and records. It does
// nothing when subjects already exist. One provider ("legacy") is left
// unlinked from the protocol, so its records belong to no panel group.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	existing, err := s.Repos.Subjects.List(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("list subjects: %w", err)
	}
	if len(existing) > 0 {
		return SeedResult{Skipped: true}, nil
	}

	now := database.Now
	if s.Now != nil {
		now = s.Now
	}

	protocol := repository.Protocol{ID: seedID("protocol", "embark-pilot"), Name: "Embark Pilot"}
	if err := s.Repos.Protocols.Upsert(ctx, protocol); err != nil {
		return SeedResult{}, fmt.Errorf("seed protocol: %w", err)
	}

	providers := []repository.PDS{
		{ID: seedID("pds", "labs"), Name: "labs", DisplayLabel: "Lab Results"},
		{ID: seedID("pds", "imaging"), Name: "imaging", DisplayLabel: "Imaging Archive"},
		{ID: seedID("pds", "biobank"), Name: "biobank", DisplayLabel: "Biobank"},
		{ID: seedID("pds", "legacy"), Name: "legacy", DisplayLabel: "Legacy EHR"},
	}
	for i, p := range providers {
		if err := s.Repos.PDS.Upsert(ctx, p); err != nil {
			return SeedResult{}, fmt.Errorf("seed pds %s: %w", p.Name, err)
		}
		if p.Name == "legacy" {
			continue
		}
		if err := s.Repos.Protocols.LinkPDS(ctx, protocol.ID, p.ID, i); err != nil {
			return SeedResult{}, fmt.Errorf("link pds %s: %w", p.Name, err)
		}
	}

	labels, err := s.Repos.Labels.List(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("list labels: %w", err)
	}

	subjects := []demoSubject{
		{orgID: "EMB-0001", first: "Ada", last: "Lovelace", dob: time.Date(1985, 12, 10, 0, 0, 0, 0, time.UTC)},
		{orgID: "EMB-0002", first: "Grace", last: "Hopper", dob: time.Date(1976, 12, 9, 0, 0, 0, 0, time.UTC)},
		{orgID: "EMB-0003", first: "Alan", last: "Turing", dob: time.Date(1982, 6, 23, 0, 0, 0, 0, time.UTC)},
	}

	res := SeedResult{}
	base := now().AddDate(0, 0, -30)
	for si, d := range subjects {
		dob := d.dob
		subj := repository.Subject{
			ID:                    seedID("subject", d.orgID),
			ProtocolID:            protocol.ID,
			OrganizationSubjectID: d.orgID,
			FirstName:             d.first,
			LastName:              d.last,
			DOB:                   &dob,
		}
		if err := s.Repos.Subjects.Upsert(ctx, subj); err != nil {
			return res, fmt.Errorf("seed subject %s: %w", d.orgID, err)
		}
		res.Subjects++

		// every subject gets one record per provider plus an extra lab record
		for pi, p := range append(providers, providers[0]) {
			rec := repository.Record{
				ID:         seedID("record", fmt.Sprintf("%s/%d", d.orgID, pi)),
				SubjectID:  subj.ID,
				PDSID:      p.ID,
				ExternalID: fmt.Sprintf("%s-%s-%02d", p.Name, d.orgID, pi),
				CreatedAt:  base.Add(time.Duration(si*24+pi) * time.Hour),
			}
			if len(labels) > 0 {
				id := labels[(si+pi)%len(labels)].ID
				rec.LabelID = &id
			}
			if err := s.Repos.Records.Insert(ctx, rec); err != nil {
				return res, fmt.Errorf("seed record %s: %w", rec.ExternalID, err)
			}
			res.Records++
		}
	}
	return res, nil
}
