package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jask/embark/internal/database/repository"
	"github.com/jask/embark/internal/state"
)

// ErrSubjectNotFound is returned when no subject matches an id or query.
var ErrSubjectNotFound = errors.New("subject not found")

// Loader reads a subject's protocol, providers and records from the
// database and puts them into the store.
type Loader struct {
	Subjects  *repository.SubjectRepo
	Protocols *repository.ProtocolRepo
	PDS       *repository.PDSRepo
	Records   *repository.RecordRepo
	Store     state.Dispatcher
	Log       zerolog.Logger
}

// NewLoader wires a Loader to db.
func NewLoader(db *sql.DB, store state.Dispatcher, log zerolog.Logger) *Loader {
	return &Loader{
		Subjects:  repository.NewSubjectRepo(db),
		Protocols: repository.NewProtocolRepo(db),
		PDS:       repository.NewPDSRepo(db),
		Records:   repository.NewRecordRepo(db),
		Store:     store,
		Log:       log,
	}
}

// ListSubjects returns every subject in state form.
func (l *Loader) ListSubjects(ctx context.Context) ([]state.Subject, error) {
	rows, err := l.Subjects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	out := make([]state.Subject, 0, len(rows))
	for _, s := range rows {
		out = append(out, subjectToState(s))
	}
	return out, nil
}

// LoadSubject fills the store with everything the record panel needs for
// subjectID and returns the subject. It does not mark the subject active;
// the panel does that when it mounts. Nothing is dispatched unless every
// read succeeds.
func (l *Loader) LoadSubject(ctx context.Context, subjectID string) (state.Subject, error) {
	log := l.Log.With().Str("subject", subjectID).Logger()

	row, err := l.Subjects.Get(ctx, subjectID)
	if err != nil {
		return state.Subject{}, fmt.Errorf("get subject %s: %w", subjectID, err)
	}
	if row == nil {
		return state.Subject{}, fmt.Errorf("%w: %s", ErrSubjectNotFound, subjectID)
	}
	subject := subjectToState(*row)

	var (
		protocols []repository.Protocol
		active    *repository.Protocol
		providers []repository.PDS
		records   []repository.Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if protocols, err = l.Protocols.List(gctx); err != nil {
			return fmt.Errorf("list protocols: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if active, err = l.Protocols.Get(gctx, row.ProtocolID); err != nil {
			return fmt.Errorf("get protocol %s: %w", row.ProtocolID, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if providers, err = l.PDS.ListForProtocol(gctx, row.ProtocolID); err != nil {
			return fmt.Errorf("list pds for protocol %s: %w", row.ProtocolID, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if records, err = l.Records.ListForSubject(gctx, subjectID); err != nil {
			return fmt.Errorf("list records: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("load subject")
		return state.Subject{}, err
	}

	recs := recordsToState(records)
	l.Store.Dispatch(state.SetProtocols{Items: protocolsToState(protocols)})
	if active != nil {
		l.Store.Dispatch(state.SetActiveProtocol{Protocol: &state.Protocol{ID: active.ID, Name: active.Name}})
	} else {
		l.Store.Dispatch(state.SetActiveProtocol{})
	}
	l.Store.Dispatch(state.SetPDS{Items: pdsToState(providers)})
	l.Store.Dispatch(state.SetRecords{Items: recs})
	l.Store.Dispatch(state.SetActiveSubjectRecords{Records: recs})

	log.Info().Int("pds", len(providers)).Int("records", len(recs)).Msg("subject loaded")
	return subject, nil
}
