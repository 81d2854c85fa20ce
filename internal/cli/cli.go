// Package cli is the thin cobra shell around a run: it parses the CLI
// surface and wires the loaded catalog, graph, tracker, and executor
// together for a single invocation.
package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Miosp/Tessy/internal/colorcache"
	"github.com/Miosp/Tessy/internal/config"
	"github.com/Miosp/Tessy/internal/depstracker"
	"github.com/Miosp/Tessy/internal/executor"
	"github.com/Miosp/Tessy/internal/graph"
	"github.com/Miosp/Tessy/internal/runner"
	"github.com/Miosp/Tessy/internal/yamlconfig"
)

type rootOpts struct {
	logLevel string
	root     string
}

// Execute runs the tessy CLI with the given arguments (not including the
// binary name) and returns the process exit code.
func Execute(args []string) int {
	opts := &rootOpts{}
	cmd := getCmd(opts)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func getCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tessy <target>",
		Short:         "A small build orchestrator for declarative task catalogs",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error, silent")
	flags.StringVar(&opts.root, "root", ".", "project root containing tasks.yaml")

	return cmd
}

// run loads the catalog, builds the graph and tracker, executes the target,
// and flushes the tracker.
func run(target string, opts *rootOpts) error {
	cfg, err := config.New(target, opts.root, opts.logLevel)
	if err != nil {
		return errors.Wrap(err, "failed to resolve runtime config")
	}
	logger := cfg.Logger

	colors := colorcache.New()
	r := runner.New(colors)

	catalog, err := yamlconfig.Load(cfg.Root, r, logger)
	if err != nil {
		return errors.Wrap(err, "failed to load task catalog")
	}
	if _, ok := catalog.Get(cfg.Target); !ok {
		return errors.Errorf("target task %q is not defined in the catalog", cfg.Target)
	}

	g, err := graph.Build(catalog, cfg.Target, logger)
	if err != nil {
		return errors.Wrap(err, "failed to build dependency graph")
	}

	tracker := depstracker.Load(cfg.Root, logger)

	exec := executor.New(catalog, g, tracker, cfg.Root, logger)
	result, err := exec.Execute(cfg.Target)
	if err != nil {
		return errors.Wrap(err, "execution failed")
	}

	tracker.Update(catalog, cfg.Root, result.Completed)
	tracker.Write(cfg.Root)

	logger.Info("run complete", "target", cfg.Target, "completed", len(result.Completed), "skipped", len(result.Skipped))
	return nil
}
