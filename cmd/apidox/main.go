package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/config"
)

var (
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	version = "dev"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	commit = "unknown"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	buildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args, os.Stdout, os.Stderr); err != nil {
		stop()
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand()
	root.Writer = stdout
	root.ErrWriter = stderr
	return root.Run(ctx, args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "apidox",
		Usage:   "Fetch, index and browse generated API reference markdown",
		Version: versionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"},
			&cli.BoolFlag{Name: "verbose", Usage: "Print debug output to stderr"},
		},
		Commands: []*cli.Command{
			newInitCommand(),
			newSyncCommand(),
			newSourcesCommand(),
			newIndexCommand(),
			newGroupsCommand(),
			newListCommand(),
			newShowCommand(),
			newParseCommand(),
			newSearchCommand(),
			newServeCommand(),
		},
	}
}

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a starter apidox.toml",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "Directory to create the config in", Value: "."},
		},
		Action: initAction,
	}
}

func initAction(_ context.Context, cmd *cli.Command) error {
	path, err := config.WriteStarter(cmd.String("dir"))
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout(cmd), "created %s\n", path)
	return nil
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime)
}
