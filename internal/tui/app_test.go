package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/embark/internal/config"
	"github.com/jask/embark/internal/state"
)

type fakeLoader struct {
	store    *state.Store
	subjects map[string]state.Subject
	records  map[string][]state.Record
	calls    []string
}

func (f *fakeLoader) LoadSubject(_ context.Context, id string) (state.Subject, error) {
	f.calls = append(f.calls, id)
	s, ok := f.subjects[id]
	if !ok {
		return state.Subject{}, errors.New("subject not found: " + id)
	}
	f.store.Dispatch(state.SetPDS{Items: []state.PDS{{ID: "labs", Name: "labs"}, {ID: "img", Name: "imaging"}}})
	f.store.Dispatch(state.SetRecords{Items: f.records[id]})
	f.store.Dispatch(state.SetActiveSubjectRecords{Records: f.records[id]})
	return s, nil
}

var (
	ada   = state.Subject{ID: "s1", FirstName: "Ada", LastName: "Lovelace", OrganizationSubjectID: "EMB-1"}
	grace = state.Subject{ID: "s2", FirstName: "Grace", LastName: "Hopper", OrganizationSubjectID: "EMB-2"}
)

func newTestApp(t *testing.T) (*App, *state.Store, *fakeLoader) {
	t.Helper()
	st := state.NewStore(state.State{}, zerolog.Nop())
	fl := &fakeLoader{
		store:    st,
		subjects: map[string]state.Subject{ada.ID: ada, grace.ID: grace},
		records: map[string][]state.Record{
			ada.ID:   {{ID: "r1", PDS: "labs", Label: "Blood Panel"}, {ID: "r2", PDS: "gone", Label: "Orphan"}},
			grace.ID: {{ID: "r3", PDS: "img", Label: "MRI"}},
		},
	}
	cfg := config.Config{UI: config.UIConfig{Heading: "Subject Records", Width: 80}}
	app, err := New(context.Background(), cfg, st, fl, []state.Subject{ada, grace}, 0, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app, st, fl
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

// runBatch runs every command in a batch except the last n, which block.
func runBatch(t *testing.T, cmd tea.Cmd, skipLast int) []tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch")
	var out []tea.Msg
	for _, c := range batch[:len(batch)-skipLast] {
		if msg := c(); msg != nil {
			out = append(out, msg)
		}
	}
	return out
}

func TestNewRejectsEmptySubjects(t *testing.T) {
	st := state.NewStore(state.State{}, zerolog.Nop())
	_, err := New(context.Background(), config.Config{}, st, &fakeLoader{store: st}, nil, 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewRejectsBadKeyOverride(t *testing.T) {
	st := state.NewStore(state.State{}, zerolog.Nop())
	cfg := config.Config{Keys: []config.KeyOverride{{Scope: "panel", Action: "fly", Keys: []string{"x"}}}}
	_, err := New(context.Background(), cfg, st, &fakeLoader{store: st}, []state.Subject{ada}, 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitMountsAndLoads(t *testing.T) {
	app, st, fl := newTestApp(t)
	first := app.Panel()

	msgs := runBatch(t, app.Init(), 1)
	require.Len(t, msgs, 1)
	_, cmd := app.Update(msgs[0])
	assert.Nil(t, cmd)

	active := st.Snapshot().Subject.ActiveSubject
	require.NotNil(t, active)
	assert.Equal(t, ada, *active)
	assert.Equal(t, []string{ada.ID}, fl.calls)

	// the change notification queued by mount and load is delivered at once
	msg := app.waitForChange()()
	require.IsType(t, stateChangedMsg{}, msg)
	_, cmd = app.Update(msg)
	assert.NotNil(t, cmd)

	assert.Same(t, first, app.Panel())
	props := app.Panel().Props()
	assert.Len(t, props.PDS, 2)
	assert.Len(t, props.Records, 2)

	out := app.View()
	assert.Contains(t, out, "Blood Panel")
	assert.NotContains(t, out, "Orphan")
}

func TestStoreChangeDoesNotRemount(t *testing.T) {
	app, st, _ := newTestApp(t)
	runBatch(t, app.Init(), 1)
	p := app.Panel()

	before := st.Version()
	app.Update(runeKey('L'))
	app.Update(stateChangedMsg{})

	assert.Equal(t, before+1, st.Version(), "only the link mode action was dispatched")
	assert.Same(t, p, app.Panel())
	assert.True(t, app.Panel().Props().LinkMode)
	assert.True(t, app.Panel().Render().Banner)

	app.Update(runeKey('L'))
	app.Update(stateChangedMsg{})
	assert.False(t, app.Panel().Props().LinkMode)
}

func TestSwitchSubjectRemounts(t *testing.T) {
	app, st, fl := newTestApp(t)
	runBatch(t, app.Init(), 1)
	first := app.Panel()

	_, cmd := app.Update(runeKey('n'))
	require.NotSame(t, first, app.Panel())
	assert.False(t, app.Panel().Mounted())

	for _, msg := range runBatch(t, cmd, 0) {
		app.Update(msg)
	}
	assert.True(t, app.Panel().Mounted())
	assert.Equal(t, grace, *st.Snapshot().Subject.ActiveSubject)
	assert.Equal(t, []string{ada.ID, grace.ID}, fl.calls)

	app.Update(stateChangedMsg{})
	assert.Equal(t, grace, app.Panel().Subject())
	assert.Equal(t, "r3", app.Panel().Props().Records[0].ID)

	// wraps around
	_, cmd = app.Update(runeKey('n'))
	runBatch(t, cmd, 0)
	assert.Equal(t, ada, *st.Snapshot().Subject.ActiveSubject)
	_, cmd = app.Update(runeKey('p'))
	runBatch(t, cmd, 0)
	assert.Equal(t, grace, *st.Snapshot().Subject.ActiveSubject)
}

func TestInfoPanelIsNestedContent(t *testing.T) {
	app, _, _ := newTestApp(t)
	runBatch(t, app.Init(), 1)

	app.Update(runeKey('i'))
	app.Update(stateChangedMsg{})
	props := app.Panel().Props()
	require.NotNil(t, props.Children)
	assert.Contains(t, props.Children.View(), "Ada Lovelace")
	assert.Contains(t, app.View(), "Subject info")

	app.Update(runeKey('a'))
	app.Update(stateChangedMsg{})
	assert.Contains(t, app.Panel().Props().Children.View(), "link mode")

	app.Update(runeKey('i'))
	app.Update(runeKey('a'))
	app.Update(stateChangedMsg{})
	assert.Nil(t, app.Panel().Props().Children)
}

func TestLoadErrorShowsStatus(t *testing.T) {
	app, _, fl := newTestApp(t)
	delete(fl.subjects, ada.ID)

	_, cmd := app.Update(runeKey('r'))
	require.NotNil(t, cmd)
	app.Update(cmd())
	assert.Contains(t, app.View(), "subject not found: s1")
}

func TestStaleLoadWaitsForRunningLoad(t *testing.T) {
	app, _, fl := newTestApp(t)
	app.Init()
	app.Update(runeKey('n'))

	// ada's load lands while grace's is still running
	_, cmd := app.Update(subjectLoadedMsg{subject: ada, seq: 1})
	assert.Nil(t, cmd)
	assert.Empty(t, fl.calls)

	_, cmd = app.Update(subjectLoadedMsg{subject: grace, seq: 2})
	assert.Nil(t, cmd)
	assert.Equal(t, grace, app.Panel().Subject())
}

func TestStaleLoadAfterCurrentReloads(t *testing.T) {
	app, _, fl := newTestApp(t)
	app.Init()
	app.Update(runeKey('n'))

	// grace's load finished first, then ada's overwrote the store
	app.Update(subjectLoadedMsg{subject: grace, seq: 2})
	_, cmd := app.Update(subjectLoadedMsg{subject: ada, seq: 1})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, []string{grace.ID}, fl.calls)

	loaded, ok := msg.(subjectLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 3, loaded.seq)
	_, cmd = app.Update(loaded)
	assert.Nil(t, cmd)
}

func TestFailedLoadDoesNotBlockStaleReload(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.Init()
	app.Update(runeKey('n'))

	app.Update(errMsg{err: assert.AnError, seq: 2})
	_, cmd := app.Update(subjectLoadedMsg{subject: ada, seq: 1})
	assert.NotNil(t, cmd)
}

func TestQuit(t *testing.T) {
	app, st, _ := newTestApp(t)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// the subscription is gone, so waiting ends instead of blocking
	st.Dispatch(state.ToggleInfoPanel{})
	assert.Nil(t, app.waitForChange()())
}

func TestWindowSizeEnablesViewport(t *testing.T) {
	app, _, _ := newTestApp(t)
	runBatch(t, app.Init(), 1)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := app.View()
	assert.Contains(t, out, "Subject Records")
	assert.Contains(t, out, "quit")
}

func TestNarrowFooterKeepsQuit(t *testing.T) {
	for _, width := range []int{40, 60, 100} {
		app, _, _ := newTestApp(t)
		app.Update(tea.WindowSizeMsg{Width: width, Height: 20})
		assert.Contains(t, app.View(), "q quit", "width %d", width)
	}
}
