package state

import "time"

// Subject is a research subject enrolled in a protocol.
type Subject struct {
	ID                    string
	OrganizationSubjectID string
	FirstName             string
	LastName              string
	DOB                   *time.Time
	ProtocolID            string
}

// Name returns "First Last", or the organization subject id when both are empty.
func (s Subject) Name() string {
	switch {
	case s.FirstName != "" && s.LastName != "":
		return s.FirstName + " " + s.LastName
	case s.FirstName != "":
		return s.FirstName
	case s.LastName != "":
		return s.LastName
	default:
		return s.OrganizationSubjectID
	}
}

// Protocol groups subjects and the data providers they are linked to.
type Protocol struct {
	ID   string
	Name string
}

// PDS is a data-holding provider.
type PDS struct {
	ID           string
	Name         string
	DisplayLabel string
}

// Label returns the display label, falling back to the name.
func (p PDS) Label() string {
	if p.DisplayLabel != "" {
		return p.DisplayLabel
	}
	return p.Name
}

// Record is one item held for a subject by a PDS. PDS is the owning PDS id.
type Record struct {
	ID         string
	PDS        string
	Subject    string
	LabelID    string
	Label      string
	ExternalID string
	Created    time.Time
}

// Label is a record classification.
type Label struct {
	ID   string
	Name string
}
