// Package cli wires configuration, logging and storage into the embark
// commands.
package cli

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jask/embark/internal/config"
	"github.com/jask/embark/internal/database"
	"github.com/jask/embark/internal/logging"
)

// env is what PersistentPreRunE prepares for the subcommands.
type env struct {
	cfg config.Config
	log *logging.Logger
	db  *sql.DB
}

func (e *env) logger(component string) zerolog.Logger {
	return logging.Component(e.log.Logger, component)
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
		e.db = nil
	}
	if e.log != nil {
		_ = e.log.Close()
		e.log = nil
	}
}

// closeAfter makes c release the env when its RunE returns. Cobra skips
// post-run hooks when RunE fails, so this cannot live in PersistentPostRunE.
func (e *env) closeAfter(c *cobra.Command) {
	run := c.RunE
	c.RunE = func(cmd *cobra.Command, args []string) error {
		defer e.close()
		return run(cmd, args)
	}
}

// annotationTUI marks commands that take over the terminal. Their logs must
// never go to stderr.
const annotationTUI = "tui"

// loggingConfig picks the log sink. --debug raises the level and switches to
// the console format; only commands that leave the terminal alone send it to
// stderr.
func loggingConfig(cfg config.LoggingConfig, debug, tui bool) logging.Config {
	lc := logging.Config{Level: cfg.Level, Format: cfg.Format, File: cfg.File}
	if !debug {
		return lc
	}
	lc.Level = "debug"
	lc.Format = "console"
	if !tui {
		lc.File = ""
	}
	return lc
}

// NewRootCmd creates the root command for the embark CLI.
func NewRootCmd(ver string) *cobra.Command {
	cmd, _ := newRootCmd(ver)
	return cmd
}

func newRootCmd(ver string) (*cobra.Command, *env) {
	e := &env{}

	cmd := &cobra.Command{
		Use:           "embark",
		Short:         "Browse the records each data provider holds for a subject",
		Version:       ver,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd)
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default $HOME/.config/embark/config.toml)")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging (stderr, or the log file for the panel)")
	cmd.AddCommand(newPanelCmd(e), newSubjectsCmd(e), newSeedCmd(e), newResetCmd(e))
	for _, c := range cmd.Commands() {
		e.closeAfter(c)
	}
	return cmd, e
}

func (e *env) setup(cmd *cobra.Command) (err error) {
	defer func() {
		if err != nil {
			e.close()
		}
	}()

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	e.cfg = cfg

	debug, _ := cmd.Flags().GetBool("debug")
	_, tui := cmd.Annotations[annotationTUI]
	log, logErr := logging.New(loggingConfig(cfg.Logging, debug, tui))
	if logErr != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v; logging to stderr\n", logErr)
	}
	e.log = log

	e.log.Logger = e.log.With().Str("run_id", logging.NewRunID()).Logger()
	ctx := logging.WithContext(cmd.Context(), e.logger("cli"))
	cmd.SetContext(ctx)

	db, err := database.Prepare(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("seed defaults: %w", err)
	}
	e.db = db

	logging.FromContext(ctx).Debug().Str("command", cmd.Name()).Str("db", cfg.Database.Path).Msg("command started")
	return nil
}
