package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/patrickjm/stylesnap/internal/config"
	"github.com/patrickjm/stylesnap/internal/snapshot"
)

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

var Version = "dev"

func Execute(args []string, out io.Writer, errOut io.Writer) int {
	return App{Out: out, Err: errOut}.Execute(args)
}

func (app App) Execute(args []string) int {
	out, errOut := app.Out, app.Err
	flags := GlobalFlags{}
	runFlags := RunFlags{}
	var showVersion bool

	prepared := func(fn func(c cfgStore) int) error {
		cfg, store, err := app.prepare(flags)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return exitError{code: exitFailure}
		}
		return exitOrNil(fn(cfgStore{cfg, store}))
	}

	root := &cobra.Command{
		Use:           "stylesnap",
		Short:         "Capture the computed theme of a rendered web page",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return prepared(func(c cfgStore) int {
				return app.runSnapshot(c.cfg, c.store, flags, RunFlags{}, "")
			})
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().BoolVarP(&showVersion, "version", "V", false, "version")
	root.PersistentFlags().StringVarP(&flags.Config, "config", "c", "", "config file")
	root.PersistentFlags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "snapshot directory")
	root.PersistentFlags().StringVarP(&flags.Engine, "engine", "e", "", "browser engine (playwright, rod)")
	root.PersistentFlags().StringVarP(&flags.Retention, "retention", "R", "", "snapshot retention")
	root.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "json output")
	root.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "quiet output")
	root.PersistentFlags().BoolVarP(&flags.Headless, "headless", "H", false, "run headless")
	root.PersistentFlags().BoolVarP(&flags.Headed, "headed", "E", false, "run headed")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if showVersion {
			fmt.Fprintln(out, Version)
			return exitError{code: exitSuccess}
		}
		return nil
	}

	runCmd := &cobra.Command{
		Use:   "run [TARGET]",
		Short: "Snapshot a configured target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return prepared(func(c cfgStore) int {
				return app.runSnapshot(c.cfg, c.store, flags, runFlags, name)
			})
		},
	}
	runCmd.Flags().StringVarP(&runFlags.URL, "url", "u", "", "override target url")
	runCmd.Flags().StringVarP(&runFlags.Variant, "variant", "v", "", "extraction variant (full, simple)")
	runCmd.Flags().StringVarP(&runFlags.Name, "name", "n", "", "output file name")
	runCmd.Flags().StringVarP(&runFlags.Timeout, "timeout", "t", "", "navigation timeout")
	runCmd.Flags().StringVarP(&runFlags.Wait, "wait", "w", "", "fixed wait after load")
	runCmd.Flags().BoolVarP(&runFlags.Screenshot, "screenshot", "s", false, "save a full-page screenshot")
	runCmd.Flags().BoolVar(&runFlags.NoLinger, "no-linger", false, "close the browser right after writing")
	root.AddCommand(runCmd)

	probeCmd := &cobra.Command{
		Use:   "probe URL SELECTOR...",
		Short: "Print styles of every element matching each selector",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, _ := cmd.Flags().GetString("wait")
			return prepared(func(c cfgStore) int {
				return app.runProbe(c.cfg, flags, args[0], args[1:], wait)
			})
		},
	}
	probeCmd.Flags().StringP("wait", "w", "", "fixed wait after load")
	root.AddCommand(probeCmd)

	root.AddCommand(&cobra.Command{
		Use:   "targets",
		Short: "List configured targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return prepared(func(c cfgStore) int {
				return app.runTargets(c.cfg, flags)
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return prepared(func(c cfgStore) int {
				return app.runList(c.store, flags)
			})
		},
	})

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove snapshots older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return prepared(func(c cfgStore) int {
				return app.runPrune(c.store, flags, dryRun)
			})
		},
	}
	pruneCmd.Flags().BoolP("dry-run", "n", false, "preview")
	root.AddCommand(pruneCmd)

	reportCmd := &cobra.Command{
		Use:   "report PATH",
		Short: "Render a snapshot as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("out")
			title, _ := cmd.Flags().GetString("title")
			return exitOrNil(app.runReport(args[0], outPath, title))
		},
	}
	// -o is taken by --output-dir on the root.
	reportCmd.Flags().StringP("out", "O", "", "write to file instead of stdout")
	reportCmd.Flags().String("title", "", "document title")
	root.AddCommand(reportCmd)

	root.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Install the browser for the configured engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return prepared(func(c cfgStore) int {
				return app.runInstall(c.cfg, flags)
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check install and environment health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return prepared(func(c cfgStore) int {
				return app.runDoctor(c.cfg, flags)
			})
		},
	})

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		var exit exitError
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(errOut, err)
		return exitUsage
	}
	return exitSuccess
}

type cfgStore struct {
	cfg   config.Config
	store snapshot.Store
}

func exitOrNil(code int) error {
	if code == exitSuccess {
		return nil
	}
	return exitError{code: code}
}
