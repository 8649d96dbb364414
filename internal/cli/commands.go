package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jask/embark/internal/database/repository"
	"github.com/jask/embark/internal/service"
	"github.com/jask/embark/internal/state"
)

// subjectRow is one line of `embark subjects` output.
type subjectRow struct {
	ID                    string `json:"id" yaml:"id"`
	OrganizationSubjectID string `json:"organization_subject_id" yaml:"organization_subject_id"`
	Name                  string `json:"name" yaml:"name"`
	Records               int    `json:"records" yaml:"records"`
}

func newSubjectsCmd(e *env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "List subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			loader := service.NewLoader(e.db, state.DispatchFunc(func(state.Action) {}), e.logger("loader"))
			subjects, err := loader.ListSubjects(ctx)
			if err != nil {
				return err
			}
			counts, err := repository.NewRecordRepo(e.db).CountBySubject(ctx)
			if err != nil {
				return fmt.Errorf("count records: %w", err)
			}
			rows := make([]subjectRow, 0, len(subjects))
			for _, s := range subjects {
				rows = append(rows, subjectRow{
					ID:                    s.ID,
					OrganizationSubjectID: s.OrganizationSubjectID,
					Name:                  s.Name(),
					Records:               counts[s.ID],
				})
			}
			return writeSubjects(cmd.OutOrStdout(), output, rows)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func writeSubjects(w io.Writer, format string, rows []subjectRow) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		if len(rows) == 0 {
			_, err := fmt.Fprintln(w, "No subjects. Run `embark seed` to add demo data.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ORG ID\tNAME\tRECORDS\tID")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.OrganizationSubjectID, r.Name, r.Records, r.ID)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo subjects, providers and records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := service.NewSeeder(e.db).Seed(cmd.Context())
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "Database already has subjects; nothing seeded.")
				return nil
			}
			log := e.logger("seed")
			log.Info().Int("subjects", res.Subjects).Int("records", res.Records).Msg("seeded")
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d subjects and %d records.\n", res.Subjects, res.Records)
			return nil
		},
	}
}

func newResetCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all subjects, providers and records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			if err := (&service.MaintenanceService{DB: e.db}).Reset(cmd.Context()); err != nil {
				return err
			}
			log := e.logger("maintenance")
			log.Warn().Msg("database reset")
			fmt.Fprintln(cmd.OutOrStdout(), "Database reset.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
