package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/oarkflow/log"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/spp/interpreter"
	"github.com/oarkflow/spp/pkg/history"
)

const (
	promptMain = "~swagger~ "
	promptCont = "...       "
)

func startRepl(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logger := &log.DefaultLogger
	out := c.App.Writer

	var rec *history.Recorder
	if cfg.History.Enabled && !c.Bool("no-history") {
		rec, err = history.Open(cfg.History.File)
		if err != nil {
			logger.Warn().Err(err).Str("file", cfg.History.File).Msg("history disabled")
		} else {
			defer rec.Close()
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	if rec != nil {
		if entries, err := history.Load(rec.Path()); err == nil {
			for _, e := range entries {
				ln.AppendHistory(strings.ReplaceAll(e.Source, "\n", " "))
			}
		}
	}

	in := interpreter.New(
		interpreter.WithStdout(out),
		interpreter.WithStdin(os.Stdin),
		interpreter.WithImportRoot(cfg.Runtime.ImportRoot),
		interpreter.WithArgs(c.Args().Slice()),
		interpreter.WithLogger(logger),
		interpreter.WithRuntimeConfig(cfg.RuntimeConfig()),
	)
	dumpAST := c.Bool("ast")

	fmt.Fprintln(out, "Shakespeare++ repl. Type exit to quit.")
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" {
			return nil
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if dumpAST {
			program, err := interpreter.Parse(src)
			if err == nil {
				var data []byte
				if data, err = interpreter.MarshalAST(program); err == nil {
					fmt.Fprintln(out, string(data))
				}
			}
			if err != nil {
				fmt.Fprintln(c.App.ErrWriter, err)
			}
			continue
		}

		result, err := evalInput(in, src)
		if rec != nil {
			if _, recErr := rec.Record(src, result, err); recErr != nil {
				logger.Warn().Err(recErr).Msg("failed to record history")
			}
		}
		if err != nil {
			fmt.Fprintln(c.App.ErrWriter, err)
			continue
		}
		if result != nil && result != interpreter.NULL {
			fmt.Fprintln(out, result.Inspect())
		}
	}
}

// evalInput runs one input in the persistent scope. An interrupt cancels the
// input without leaving the loop.
func evalInput(in *interpreter.Interpreter, src string) (interpreter.Object, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return in.Run(ctx, src)
}

// readInput keeps prompting while the buffered text has open delimiters or
// an open string literal.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsMoreInput(b.String()) {
			return b.String(), true
		}
	}
}

func needsMoreInput(src string) bool {
	tokens, err := interpreter.Tokenize(src)
	if err != nil {
		var se *interpreter.ScriptError
		return errors.As(err, &se) && strings.HasPrefix(se.Message, "unterminated string")
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case interpreter.TOKEN_LBRACE, interpreter.TOKEN_LPAREN, interpreter.TOKEN_LBRACKET:
			depth++
		case interpreter.TOKEN_RBRACE, interpreter.TOKEN_RPAREN, interpreter.TOKEN_RBRACKET:
			depth--
		}
	}
	return depth > 0
}
