// Package tui hosts the record panel in a Bubble Tea program.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jask/embark/internal/config"
	"github.com/jask/embark/internal/state"
	"github.com/jask/embark/internal/tui/panel"
)

// SubjectLoader fills the store with a subject's providers and records.
type SubjectLoader interface {
	LoadSubject(ctx context.Context, subjectID string) (state.Subject, error)
}

type (
	stateChangedMsg struct{}
	subjectLoadedMsg struct {
		subject state.Subject
		seq     int
	}
	errMsg struct {
		err error
		seq int
	}
)

func (e errMsg) Error() string { return e.err.Error() }

// App is the root model. It owns one RecordPanel at a time and rebinds its
// props whenever the store changes.
type App struct {
	ctx    context.Context
	store  *state.Store
	loader SubjectLoader
	log    zerolog.Logger

	subjects []state.Subject
	current  int
	panel    *panel.RecordPanel
	opts     panel.Options

	keys     *KeyRegistry
	help     help.Model
	viewport viewport.Model
	ready    bool
	status   string

	// issued is the sequence number of the latest load started; settled is
	// the highest one that has finished.
	issued  int
	settled int

	changes     <-chan struct{}
	unsubscribe func()
}

// New builds the app showing subjects[start]. It fails when there are no
// subjects or the configured key overrides are invalid.
func New(ctx context.Context, cfg config.Config, store *state.Store, loader SubjectLoader, subjects []state.Subject, start int, log zerolog.Logger) (*App, error) {
	if len(subjects) == 0 {
		return nil, errors.New("no subjects to show")
	}
	if start < 0 || start >= len(subjects) {
		start = 0
	}
	keys := NewKeyRegistry()
	if err := keys.ApplyOverrides(cfg.Keys); err != nil {
		return nil, err
	}
	changes, unsubscribe := store.Subscribe()
	a := &App{
		ctx:      ctx,
		store:    store,
		loader:   loader,
		log:      log,
		subjects: subjects,
		current:  start,
		opts: panel.Options{
			Heading:    cfg.UI.Heading,
			LinkBanner: cfg.UI.LinkBanner,
			DateFormat: cfg.UI.DateFormat,
			Width:      cfg.UI.Width,
		},
		keys:        keys,
		help:        help.New(),
		viewport:    viewport.New(cfg.UI.Width, 20),
		changes:     changes,
		unsubscribe: unsubscribe,
	}
	a.panel = a.newPanel()
	return a, nil
}

// Panel returns the panel currently shown.
func (a *App) Panel() *panel.RecordPanel { return a.panel }

// Close drops the store subscription.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *App) subject() state.Subject { return a.subjects[a.current] }

func (a *App) newPanel() *panel.RecordPanel {
	snap := a.store.Snapshot()
	return panel.New(panel.PropsFrom(a.subject(), state.PanelProps(snap), a.children(snap)), a.store, a.opts)
}

// children is the nested content for the panel given the toggles in s.
func (a *App) children(s state.State) panel.Viewer {
	var out stack
	if s.Subject.ShowInfoPanel {
		out = append(out, subjectInfo{
			subject:    a.subject(),
			protocol:   s.Protocol.ActiveProtocol,
			records:    len(s.Subject.ActiveSubjectRecords),
			dateFormat: a.opts.DateFormat,
		})
	}
	if s.Subject.ShowActionPanel {
		out = append(out, actionSummary{
			linkMode: s.Subject.LinkMode,
			label:    s.Record.SelectedLabel,
			record:   s.Record.ActiveRecord,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.panel.Init(), a.load(a.subject().ID), a.waitForChange())
}

func (a *App) load(id string) tea.Cmd {
	a.issued++
	seq := a.issued
	return func() tea.Msg {
		s, err := a.loader.LoadSubject(a.ctx, id)
		if err != nil {
			return errMsg{err: err, seq: seq}
		}
		return subjectLoadedMsg{subject: s, seq: seq}
	}
}

// settle records that load seq finished and reports whether every load
// started so far has finished.
func (a *App) settle(seq int) bool {
	a.settled = max(a.settled, seq)
	return a.settled == a.issued
}

func (a *App) waitForChange() tea.Cmd {
	ch := a.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

// sync rebinds the current panel to the latest state. The panel is not
// mounted again.
func (a *App) sync() {
	snap := a.store.Snapshot()
	a.panel.SetProps(panel.PropsFrom(a.subject(), state.PanelProps(snap), a.children(snap)))
	a.viewport.SetContent(a.panel.View())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.viewport.Width = m.Width
		a.viewport.Height = max(m.Height-2, 1)
		a.help.Width = m.Width
		a.ready = true
		a.sync()
		return a, nil
	case stateChangedMsg:
		a.sync()
		return a, a.waitForChange()
	case subjectLoadedMsg:
		idle := a.settle(m.seq)
		if m.subject.ID != a.subject().ID {
			// A load for a subject we already switched away from. If the
			// current subject's load is still running it will overwrite the
			// store when it lands; otherwise the store holds the wrong records.
			if !idle {
				return a, nil
			}
			return a, a.load(a.subject().ID)
		}
		a.status = ""
		a.subjects[a.current] = m.subject
		a.sync()
		return a, nil
	case errMsg:
		a.settle(m.seq)
		a.status = m.Error()
		a.log.Error().Err(m.err).Str("subject", a.subject().ID).Msg("load subject")
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(m)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := a.keys.Lookup(m.String(), scopePanel)
	if b == nil {
		return a, nil
	}
	switch b.Action {
	case actionQuit:
		a.Close()
		return a, tea.Quit
	case actionToggleLink:
		on := !a.store.Snapshot().Subject.LinkMode
		a.store.Dispatch(state.SetLinkMode{On: on})
	case actionToggleInfo:
		a.store.Dispatch(state.ToggleInfoPanel{})
	case actionToggleActions:
		a.store.Dispatch(state.ToggleActionPanel{})
	case actionScrollDown:
		a.viewport.LineDown(1)
	case actionScrollUp:
		a.viewport.LineUp(1)
	case actionNextSubject:
		return a, a.switchSubject(1)
	case actionPrevSubject:
		return a, a.switchSubject(-1)
	case actionReload:
		a.status = "reloading"
		return a, a.load(a.subject().ID)
	}
	return a, nil
}

// switchSubject replaces the panel with a fresh one for the neighbouring
// subject. The new panel mounts, so the store learns the new active subject.
func (a *App) switchSubject(step int) tea.Cmd {
	if len(a.subjects) < 2 {
		return nil
	}
	a.current = (a.current + step + len(a.subjects)) % len(a.subjects)
	a.panel = a.newPanel()
	a.viewport.SetContent(a.panel.View())
	a.viewport.GotoTop()
	a.log.Debug().Str("subject", a.subject().ID).Msg("switch subject")
	return tea.Batch(a.panel.Init(), a.load(a.subject().ID))
}

func (a *App) View() string {
	body := a.panel.View()
	if a.ready {
		body = a.viewport.View()
	}
	footer := a.help.ShortHelpView(a.keys.HelpBindings(scopePanel))
	if a.status != "" {
		footer = statusStyle.Render(a.status) + "\n" + footer
	}
	return fmt.Sprintf("%s\n%s", body, footer)
}
