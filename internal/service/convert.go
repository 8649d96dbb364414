package service

import (
	"github.com/jask/embark/internal/database/repository"
	"github.com/jask/embark/internal/state"
)

func subjectToState(s repository.Subject) state.Subject {
	return state.Subject{
		ID:                    s.ID,
		OrganizationSubjectID: s.OrganizationSubjectID,
		FirstName:             s.FirstName,
		LastName:              s.LastName,
		DOB:                   s.DOB,
		ProtocolID:            s.ProtocolID,
	}
}

func protocolsToState(in []repository.Protocol) []state.Protocol {
	out := make([]state.Protocol, 0, len(in))
	for _, p := range in {
		out = append(out, state.Protocol{ID: p.ID, Name: p.Name})
	}
	return out
}

func pdsToState(in []repository.PDS) []state.PDS {
	out := make([]state.PDS, 0, len(in))
	for _, p := range in {
		out = append(out, state.PDS{ID: p.ID, Name: p.Name, DisplayLabel: p.DisplayLabel})
	}
	return out
}

func recordsToState(in []repository.Record) []state.Record {
	out := make([]state.Record, 0, len(in))
	for _, r := range in {
		rec := state.Record{
			ID:         r.ID,
			PDS:        r.PDSID,
			Subject:    r.SubjectID,
			Label:      r.LabelName,
			ExternalID: r.ExternalID,
			Created:    r.CreatedAt,
		}
		if r.LabelID != nil {
			rec.LabelID = *r.LabelID
		}
		out = append(out, rec)
	}
	return out
}
