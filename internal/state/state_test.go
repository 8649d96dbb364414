package state

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	subj := Subject{ID: "s1", FirstName: "Ada", LastName: "Lovelace"}
	proto := Protocol{ID: "p1", Name: "Cohort"}
	recs := []Record{{ID: "a", PDS: "1"}, {ID: "b", PDS: "2"}}

	t.Run("set active subject copies the value", func(t *testing.T) {
		s := Reduce(State{}, SetActiveSubject{Subject: subj})
		require.NotNil(t, s.Subject.ActiveSubject)
		assert.Equal(t, subj, *s.Subject.ActiveSubject)
	})

	t.Run("lists are replaced", func(t *testing.T) {
		s := Reduce(State{}, SetProtocols{Items: []Protocol{proto}})
		s = Reduce(s, SetPDS{Items: []PDS{{ID: "1"}, {ID: "2"}}})
		s = Reduce(s, SetRecords{Items: recs})
		s = Reduce(s, SetActiveSubjectRecords{Records: recs[:1]})
		assert.Len(t, s.Protocol.Items, 1)
		assert.Len(t, s.PDS.Items, 2)
		assert.Equal(t, recs, s.Record.Items)
		assert.Equal(t, recs[:1], s.Subject.ActiveSubjectRecords)
	})

	t.Run("reducer does not alias caller slices", func(t *testing.T) {
		in := []Record{{ID: "a"}}
		s := Reduce(State{}, SetRecords{Items: in})
		in[0].ID = "mutated"
		assert.Equal(t, "a", s.Record.Items[0].ID)
	})

	t.Run("active record dropped when records no longer contain it", func(t *testing.T) {
		s := Reduce(State{}, SetRecords{Items: recs})
		s = Reduce(s, SetActiveRecord{Record: &recs[1]})
		require.NotNil(t, s.Record.ActiveRecord)
		s = Reduce(s, SetRecords{Items: recs[:1]})
		assert.Nil(t, s.Record.ActiveRecord)
	})

	t.Run("flags", func(t *testing.T) {
		s := Reduce(State{}, SetLinkMode{On: true})
		s = Reduce(s, ToggleInfoPanel{})
		s = Reduce(s, ToggleActionPanel{})
		s = Reduce(s, ToggleActionPanel{})
		s = Reduce(s, SetSelectedLabel{Label: "Consent"})
		s = Reduce(s, SetActiveProtocol{Protocol: &proto})
		assert.True(t, s.Subject.LinkMode)
		assert.True(t, s.Subject.ShowInfoPanel)
		assert.False(t, s.Subject.ShowActionPanel)
		assert.Equal(t, "Consent", s.Record.SelectedLabel)
		assert.Equal(t, &proto, s.Protocol.ActiveProtocol)
	})
}

func TestPanelProps(t *testing.T) {
	subj := Subject{ID: "s1"}
	rec := Record{ID: "a", PDS: "1"}
	s := State{
		Protocol: ProtocolState{Items: []Protocol{{ID: "p"}}},
		PDS:      PDSState{Items: []PDS{{ID: "1"}}},
		Record:   RecordState{Items: []Record{rec}, ActiveRecord: &rec, SelectedLabel: "L"},
		Subject: SubjectState{
			ShowInfoPanel:        true,
			ActiveSubject:        &subj,
			ActiveSubjectRecords: []Record{rec},
			LinkMode:             true,
		},
	}

	p := PanelProps(s)
	assert.Equal(t, s.Protocol, p.Protocol)
	assert.Equal(t, s.PDS.Items, p.PDS.Items)
	assert.Equal(t, s.Record.Items, p.Record.Items)
	assert.True(t, p.ShowInfoPanel)
	assert.False(t, p.ShowActionPanel)
	assert.Equal(t, &rec, p.ActiveRecord)
	assert.Equal(t, &subj, p.ActiveSubject)
	assert.Equal(t, []Record{rec}, p.ActiveSubjectRecords)
	assert.Equal(t, "L", p.SelectedLabel)
	assert.True(t, p.LinkMode)
}

func TestPanelPropsShape(t *testing.T) {
	subj := Subject{ID: "s2", FirstName: "Grace"}
	s := Reduce(State{}, SetActiveSubject{Subject: subj})
	s = Reduce(s, SetPDS{Items: []PDS{{ID: "1", Name: "labs"}}})
	s = Reduce(s, SetRecords{Items: []Record{{ID: "a", PDS: "1"}}})
	s = Reduce(s, ToggleActionPanel{})

	want := Props{
		PDS:             PDSState{Items: []PDS{{ID: "1", Name: "labs"}}},
		Record:          RecordItems{Items: []Record{{ID: "a", PDS: "1"}}},
		ShowActionPanel: true,
		ActiveSubject:   &subj,
	}
	if diff := cmp.Diff(want, PanelProps(s)); diff != "" {
		t.Errorf("PanelProps mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreDispatchNotifies(t *testing.T) {
	st := NewStore(State{}, zerolog.Nop())
	ch, cancel := st.Subscribe()
	defer cancel()

	st.Dispatch(SetLinkMode{On: true})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected change notification")
	}
	assert.True(t, st.Snapshot().Subject.LinkMode)
	assert.Equal(t, uint64(1), st.Version())
}

func TestStoreNotificationsCoalesce(t *testing.T) {
	st := NewStore(State{}, zerolog.Nop())
	ch, cancel := st.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		st.Dispatch(ToggleInfoPanel{})
	}
	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending signal")
	default:
	}
	assert.Equal(t, uint64(10), st.Version())
}

func TestStoreUnsubscribeClosesChannel(t *testing.T) {
	st := NewStore(State{}, zerolog.Nop())
	ch, cancel := st.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	st.Dispatch(SetLinkMode{On: true})
}

func TestStoreConcurrentDispatch(t *testing.T) {
	st := NewStore(State{}, zerolog.Nop())
	_, cancel := st.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(ToggleInfoPanel{})
			_ = st.Snapshot()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), st.Version())
	assert.False(t, st.Snapshot().Subject.ShowInfoPanel)
}

func TestDispatchFunc(t *testing.T) {
	var got []Action
	var d Dispatcher = DispatchFunc(func(a Action) { got = append(got, a) })
	d.Dispatch(SetLinkMode{On: true})
	require.Len(t, got, 1)
	assert.Equal(t, "subject/setLinkMode", got[0].ActionType())
}

func TestSubjectName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Subject{FirstName: "Ada", LastName: "Lovelace"}.Name())
	assert.Equal(t, "Ada", Subject{FirstName: "Ada"}.Name())
	assert.Equal(t, "ORG-1", Subject{OrganizationSubjectID: "ORG-1"}.Name())
	assert.Equal(t, "Labs", PDS{Name: "lab_db", DisplayLabel: "Labs"}.Label())
	assert.Equal(t, "lab_db", PDS{Name: "lab_db"}.Label())
}
