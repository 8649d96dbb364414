// Package state holds the shared application state for the record views and
// the actions that change it.
//
// Views never reach into a global: they are handed a Store (or just a
// Dispatcher) and read Snapshots. Slices inside a State are treated as
// immutable; the reducer always installs new slices instead of editing them,
// so a Snapshot can be read without holding the store's lock.
package state

// ProtocolState is the protocol slice of State.
type ProtocolState struct {
	Items          []Protocol
	ActiveProtocol *Protocol
}

// PDSState is the provider slice of State.
type PDSState struct {
	Items []PDS
}

// RecordState is the record slice of State.
type RecordState struct {
	Items         []Record
	ActiveRecord  *Record
	SelectedLabel string
}

// SubjectState is the subject slice of State.
type SubjectState struct {
	ShowInfoPanel        bool
	ShowActionPanel      bool
	ActiveSubject        *Subject
	ActiveSubjectRecords []Record
	LinkMode             bool
}

// State is the whole application state.
type State struct {
	Protocol ProtocolState
	PDS      PDSState
	Record   RecordState
	Subject  SubjectState
}

// Props is the view of State a record panel is bound to.
type Props struct {
	Protocol             ProtocolState
	PDS                  PDSState
	Record               RecordItems
	ShowInfoPanel        bool
	ShowActionPanel      bool
	ActiveRecord         *Record
	ActiveSubject        *Subject
	ActiveSubjectRecords []Record
	SelectedLabel        string
	LinkMode             bool
}

// RecordItems carries only the record list.
type RecordItems struct {
	Items []Record
}

// PanelProps selects the fields a record panel reads from s.
func PanelProps(s State) Props {
	return Props{
		Protocol: ProtocolState{
			Items:          s.Protocol.Items,
			ActiveProtocol: s.Protocol.ActiveProtocol,
		},
		PDS:                  PDSState{Items: s.PDS.Items},
		Record:               RecordItems{Items: s.Record.Items},
		ShowInfoPanel:        s.Subject.ShowInfoPanel,
		ShowActionPanel:      s.Subject.ShowActionPanel,
		ActiveRecord:         s.Record.ActiveRecord,
		ActiveSubject:        s.Subject.ActiveSubject,
		ActiveSubjectRecords: s.Subject.ActiveSubjectRecords,
		SelectedLabel:        s.Record.SelectedLabel,
		LinkMode:             s.Subject.LinkMode,
	}
}
