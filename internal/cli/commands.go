package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Calder-Labs/gitrun/internal/porcelain"
	"github.com/Calder-Labs/gitrun/internal/progress"
	"github.com/Calder-Labs/gitrun/internal/repo"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			st, err := a.repository().Status(ctx)
			if err != nil {
				return fmt.Errorf("%s", exitMessage(err))
			}
			return a.printer.Status(st)
		},
	}
}

func newLogCommand(a *app) *cobra.Command {
	var maxCount int
	var path string

	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "Show commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := repo.LogOptions{MaxCount: maxCount, Path: path}
			if len(args) == 1 {
				opts.Revision = args[0]
			}
			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			commits, err := a.repository().Log(ctx, opts)
			if err != nil {
				return fmt.Errorf("%s", exitMessage(err))
			}
			return a.printer.Log(commits)
		},
	}

	cmd.Flags().IntVarP(&maxCount, "max-count", "n", 0, "limit the number of commits")
	cmd.Flags().StringVar(&path, "path", "", "restrict history to one path")
	return cmd
}

func newDiffCommand(a *app) *cobra.Command {
	var nameOnly bool
	var numstat bool

	cmd := &cobra.Command{
		Use:   "diff [from] [to]",
		Short: "Summarize changes between two revisions",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := "HEAD", ""
			if len(args) > 0 {
				from = args[0]
			}
			if len(args) > 1 {
				to = args[1]
			}

			ctx, cancel := a.commandContext(cmd)
			defer cancel()

			r := a.repository()
			var (
				d   porcelain.Diff
				err error
			)
			switch {
			case nameOnly:
				d, err = r.DiffNameOnly(ctx, from, to)
			case numstat:
				d, err = r.DiffNumstat(ctx, from, to)
			default:
				d, err = r.DiffNameStatus(ctx, from, to)
			}
			if err != nil {
				return fmt.Errorf("%s", exitMessage(err))
			}
			return a.printer.Diff(d)
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "list changed paths only")
	cmd.Flags().BoolVar(&numstat, "numstat", false, "show addition/deletion counts per path")
	cmd.MarkFlagsMutuallyExclusive("name-only", "numstat")
	return cmd
}

func newFetchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [remote]",
		Short: "Fetch from a remote, streaming progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote := ""
			if len(args) == 1 {
				remote = args[0]
			}

			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			err := a.repository().Fetch(ctx, remote, func(ev progress.Event) {
				a.printer.Progress(ev)
			})
			if err != nil {
				return fmt.Errorf("%s", exitMessage(err))
			}
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show gitrun and git versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "gitrun version "+version)
			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			gitVersion, err := repo.Version(ctx, a.runner)
			if err != nil {
				return fmt.Errorf("%s", exitMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), gitVersion)
			return nil
		},
	}
}
