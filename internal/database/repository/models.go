package repository

import "time"

// Protocol represents a protocol row.
type Protocol struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// PDS represents a data-holding provider row.
type PDS struct {
	ID           string
	Name         string
	DisplayLabel string
	CreatedAt    time.Time
}

// Subject represents a subject row.
type Subject struct {
	ID                    string
	ProtocolID            string
	OrganizationSubjectID string
	FirstName             string
	LastName              string
	DOB                   *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Label represents a record label row.
type Label struct {
	ID   string
	Name string
}

// Record represents a record row joined with its label name.
type Record struct {
	ID         string
	SubjectID  string
	PDSID      string
	LabelID    *string
	LabelName  string
	ExternalID string
	CreatedAt  time.Time
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}
