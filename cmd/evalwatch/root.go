package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/evaluation"
	"github.com/AnatoleLucet/evaluation/internal/log"
)

type rootFlags struct {
	logLevel  string
	logFormat string
	tiersFile string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "evalwatch",
		Short:         "Replay variable changes through an evaluation authority",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")
	cmd.PersistentFlags().StringVar(&flags.tiersFile, "tiers", "", "YAML file mapping variable names to priority tiers")

	cmd.AddCommand(newRunCommand(flags))
	cmd.AddCommand(newSortCommand(flags))

	return cmd
}

func newRunCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run SCENARIO",
		Short: "Subscribe the scenario's predicates and apply its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(args[0])
			if err != nil {
				return err
			}

			auth, vars, err := flags.authority(cmd.ErrOrStderr(), sc)
			if err != nil {
				return err
			}

			return play(cmd.OutOrStdout(), auth, vars, sc)
		},
	}
}

func newSortCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sort SCENARIO",
		Short: "Print the scenario's predicates most specific first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(args[0])
			if err != nil {
				return err
			}

			auth, _, err := flags.authority(cmd.ErrOrStderr(), sc)
			if err != nil {
				return err
			}

			subs, err := subscribe(auth, sc, nil)
			if err != nil {
				return err
			}

			names := make(map[evaluation.Handle]string, len(subs))
			handles := make([]evaluation.Handle, 0, len(subs))
			for _, p := range sc.Predicates {
				names[subs[p.Name]] = p.Name
				handles = append(handles, subs[p.Name])
			}

			out := cmd.OutOrStdout()
			for _, h := range auth.Sort(handles) {
				priority, _ := auth.Priority(h)
				fmt.Fprintf(out, "%s\t%d\n", names[h], priority)
			}

			return nil
		},
	}
}

func (f *rootFlags) authority(logOutput io.Writer, sc *Scenario) (*evaluation.Authority, *evaluation.MapContext, error) {
	logger := log.New(&log.Config{
		Level:  f.logLevel,
		Format: log.Format(strings.ToLower(f.logFormat)),
		Output: logOutput,
	})

	tiers := make(map[string]uint32)
	if f.tiersFile != "" {
		loaded, err := evaluation.LoadTiersFile(f.tiersFile)
		if err != nil {
			return nil, nil, err
		}
		for name, tier := range loaded {
			tiers[name] = tier
		}
	}
	// scenario tiers override the file
	for name, tier := range sc.Tiers {
		tiers[name] = tier
	}

	vars := evaluation.NewMapContext(sc.Variables)
	auth := evaluation.NewAuthority(
		evaluation.WithContext(vars),
		evaluation.WithLogger(logger),
		evaluation.WithTiers(tiers),
	)

	logger.Debug("scenario loaded", slog.Int("predicates", len(sc.Predicates)), slog.Int("steps", len(sc.Steps)))

	return auth, vars, nil
}
