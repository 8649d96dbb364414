package state

// Action is a state change request. The set is closed; see Reduce.
type Action interface {
	ActionType() string
}

type (
	// SetActiveSubject marks a subject as the one being viewed.
	SetActiveSubject struct{ Subject Subject }
	// SetActiveSubjectRecords replaces the active subject's record list.
	SetActiveSubjectRecords struct{ Records []Record }
	// SetProtocols replaces the protocol list.
	SetProtocols struct{ Items []Protocol }
	// SetActiveProtocol selects a protocol; nil clears it.
	SetActiveProtocol struct{ Protocol *Protocol }
	// SetPDS replaces the PDS list.
	SetPDS struct{ Items []PDS }
	// SetRecords replaces the record list.
	SetRecords struct{ Items []Record }
	// SetActiveRecord selects a record; nil clears it.
	SetActiveRecord struct{ Record *Record }
	// SetSelectedLabel sets the label filter.
	SetSelectedLabel struct{ Label string }
	// SetLinkMode turns link mode on or off.
	SetLinkMode struct{ On bool }
	// ToggleInfoPanel flips the info panel flag.
	ToggleInfoPanel struct{}
	// ToggleActionPanel flips the action panel flag.
	ToggleActionPanel struct{}
)

func (SetActiveSubject) ActionType() string        { return "subject/setActiveSubject" }
func (SetActiveSubjectRecords) ActionType() string { return "subject/setActiveSubjectRecords" }
func (SetProtocols) ActionType() string            { return "protocol/setItems" }
func (SetActiveProtocol) ActionType() string       { return "protocol/setActiveProtocol" }
func (SetPDS) ActionType() string                  { return "pds/setItems" }
func (SetRecords) ActionType() string              { return "record/setItems" }
func (SetActiveRecord) ActionType() string         { return "record/setActiveRecord" }
func (SetSelectedLabel) ActionType() string        { return "record/setSelectedLabel" }
func (SetLinkMode) ActionType() string             { return "subject/setLinkMode" }
func (ToggleInfoPanel) ActionType() string         { return "subject/toggleInfoPanel" }
func (ToggleActionPanel) ActionType() string       { return "subject/toggleActionPanel" }

// Reduce returns the state after applying a. Unknown actions leave s as is.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetActiveSubject:
		subj := act.Subject
		s.Subject.ActiveSubject = &subj
	case SetActiveSubjectRecords:
		s.Subject.ActiveSubjectRecords = cloneRecords(act.Records)
	case SetProtocols:
		s.Protocol.Items = append([]Protocol(nil), act.Items...)
	case SetActiveProtocol:
		s.Protocol.ActiveProtocol = cloneProtocol(act.Protocol)
	case SetPDS:
		s.PDS.Items = append([]PDS(nil), act.Items...)
	case SetRecords:
		s.Record.Items = cloneRecords(act.Items)
		if s.Record.ActiveRecord != nil && !containsRecord(s.Record.Items, s.Record.ActiveRecord.ID) {
			s.Record.ActiveRecord = nil
		}
	case SetActiveRecord:
		if act.Record == nil {
			s.Record.ActiveRecord = nil
		} else {
			r := *act.Record
			s.Record.ActiveRecord = &r
		}
	case SetSelectedLabel:
		s.Record.SelectedLabel = act.Label
	case SetLinkMode:
		s.Subject.LinkMode = act.On
	case ToggleInfoPanel:
		s.Subject.ShowInfoPanel = !s.Subject.ShowInfoPanel
	case ToggleActionPanel:
		s.Subject.ShowActionPanel = !s.Subject.ShowActionPanel
	}
	return s
}

func cloneRecords(in []Record) []Record {
	if in == nil {
		return nil
	}
	return append([]Record(nil), in...)
}

func cloneProtocol(p *Protocol) *Protocol {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func containsRecord(items []Record, id string) bool {
	for _, r := range items {
		if r.ID == id {
			return true
		}
	}
	return false
}
