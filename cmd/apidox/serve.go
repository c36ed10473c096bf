package main

import (
	"context"
	"fmt"
	"net"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/server"
)

const defaultServeAddr = "127.0.0.1:7474"

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Browse the indexed pages in a web browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Address to listen on", Value: defaultServeAddr},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		OutputDir: cfg.Output,
		DocsDir:   cfg.DocsDir,
		Logger:    newLogger(cmd),
	})

	return srv.ListenAndServe(ctx, cmd.String("addr"), func(addr net.Addr) {
		_, _ = fmt.Fprintf(stderr(cmd), "serving %s on http://%s (ctrl+c to stop)\n", cfg.Output, addr)
	})
}
