// Package cli wires the gitrun commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Calder-Labs/gitrun/internal/config"
	"github.com/Calder-Labs/gitrun/internal/events"
	"github.com/Calder-Labs/gitrun/internal/giterr"
	"github.com/Calder-Labs/gitrun/internal/logger"
	"github.com/Calder-Labs/gitrun/internal/output"
	"github.com/Calder-Labs/gitrun/internal/repo"
	"github.com/Calder-Labs/gitrun/internal/runner"
)

const version = "0.1.0"

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

// app carries the wiring shared by all subcommands, resolved once in the
// root PersistentPreRunE.
type app struct {
	cfg     *config.Config
	runner  *runner.Runner
	printer *output.Printer

	// flags
	configPath string
	workdir    string
	gitDir     string
	jsonOut    bool
}

// commandContext returns the command's context, bounded by the configured
// timeout when one is set.
func (a *app) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if a.cfg != nil && a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return ctx, func() {}
}

func (a *app) repository() *repo.Repository {
	if a.gitDir != "" {
		return repo.OpenBare(a.runner, a.gitDir)
	}
	workdir := a.workdir
	if workdir == "" {
		workdir = "."
	}
	return repo.Open(a.runner, workdir)
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "gitrun",
		Short: "gitrun - a typed, streaming client around the git CLI",
		Long: `gitrun runs git commands and parses their machine-readable output
into structured results, streaming progress while they run.

Examples:
  gitrun status
  gitrun log --max-count 20 --json
  gitrun diff --numstat HEAD~1 HEAD
  gitrun -C /path/to/repo status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.runner = runner.New(cfg,
				runner.WithEmitter(events.NewLogEmitter(logger.Get())),
			)
			color := isatty.IsTerminal(os.Stdout.Fd())
			a.printer = output.NewPrinter(cmd.OutOrStdout(), a.jsonOut, color)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a gitrun YAML config file")
	cmd.PersistentFlags().StringVarP(&a.workdir, "workdir", "C", "", "run against this working directory")
	cmd.PersistentFlags().StringVar(&a.gitDir, "git-dir", "", "run against this bare repository directory")
	cmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "emit JSON instead of styled text")

	cmd.AddCommand(
		newStatusCommand(a),
		newLogCommand(a),
		newDiffCommand(a),
		newFetchCommand(a),
		newVersionCommand(a),
	)

	return cmd
}

// exitMessage renders a typed git error for the terminal, keeping the
// classifier's message rather than the raw stderr dump.
func exitMessage(err error) string {
	var gerr *giterr.GitError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case giterr.KindAborted:
			return "aborted"
		case giterr.KindSpawnFailed:
			return fmt.Sprintf("could not start git: %s", gerr.Message)
		default:
			return gerr.Message
		}
	}
	return err.Error()
}
