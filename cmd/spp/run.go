package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/spp/interpreter"
)

func runFile(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: spp run <file> [args...]", 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	filename := c.Args().First()
	source, err := os.ReadFile(filename)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := interpreter.New(
		interpreter.WithStdout(os.Stdout),
		interpreter.WithStdin(os.Stdin),
		interpreter.WithImportRoot(filepath.Dir(filename)),
		interpreter.WithArgs(c.Args().Tail()),
		interpreter.WithLogger(&log.DefaultLogger),
		interpreter.WithRuntimeConfig(cfg.RuntimeConfig()),
	)
	if _, err := in.Run(ctx, string(source)); err != nil {
		return cli.Exit(fmt.Sprintf("%s: %v", filename, err), 1)
	}
	return nil
}

func printAST(c *cli.Context) error {
	program, err := parseFileArg(c)
	if err != nil {
		return err
	}
	data, err := interpreter.MarshalAST(program)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}

func printTokens(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: spp tokens <file>", 2)
	}
	source, err := os.ReadFile(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	tokens, err := interpreter.Tokenize(string(source))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	for _, tok := range tokens {
		fmt.Fprintf(c.App.Writer, "%d:%d\t%s\n", tok.Line, tok.Column, tok)
	}
	return nil
}

func parseFileArg(c *cli.Context) (*interpreter.Program, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit(fmt.Sprintf("usage: spp %s <file>", c.Command.Name), 2)
	}
	source, err := os.ReadFile(c.Args().First())
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	program, err := interpreter.Parse(string(source))
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	return program, nil
}
