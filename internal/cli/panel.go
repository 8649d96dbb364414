package cli

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jask/embark/internal/prefs"
	"github.com/jask/embark/internal/service"
	"github.com/jask/embark/internal/state"
	"github.com/jask/embark/internal/tui"
)

func newPanelCmd(e *env) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Show a subject's records grouped by provider",
		Long: `Show a subject's records grouped by the provider that holds them.

Without --subject the last subject shown is opened again, or the first one.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("panel needs an interactive terminal; use `embark subjects` for plain output")
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, store, err := e.preparePanel(ctx, query)
			if err != nil {
				return err
			}
			defer app.Close()

			go prefs.Watch(ctx, store, &prefs.Store{Dir: e.cfg.Prefs.Dir}, e.logger("prefs"))

			_, err = tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&query, "subject", "s", "", "subject id, organization id or name")
	return cmd
}

// preparePanel builds the store and the app for the chosen subject and
// restores the remembered link mode.
func (e *env) preparePanel(ctx context.Context, query string) (*tui.App, *state.Store, error) {
	store := state.NewStore(state.State{}, e.logger("store"))
	loader := service.NewLoader(e.db, store, e.logger("loader"))

	subjects, err := loader.ListSubjects(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(subjects) == 0 {
		return nil, nil, errors.New("no subjects; run `embark seed` first")
	}

	saved, err := (&prefs.Store{Dir: e.cfg.Prefs.Dir}).Load()
	if err != nil {
		log := e.logger("prefs")
		log.Warn().Err(err).Msg("load prefs")
	}

	start := 0
	switch {
	case query != "":
		s, err := (&service.SubjectFinder{Loader: loader}).Find(ctx, query)
		if err != nil {
			return nil, nil, err
		}
		start = indexOf(subjects, s.ID)
	case saved.LastSubject != "":
		start = max(indexOf(subjects, saved.LastSubject), 0)
	}
	if saved.LinkMode {
		store.Dispatch(state.SetLinkMode{On: true})
	}

	app, err := tui.New(ctx, e.cfg, store, loader, subjects, start, e.logger("tui"))
	if err != nil {
		return nil, nil, err
	}
	return app, store, nil
}

func indexOf(subjects []state.Subject, id string) int {
	for i, s := range subjects {
		if s.ID == id {
			return i
		}
	}
	return -1
}
