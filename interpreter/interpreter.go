package interpreter

import (
	"bufio"
	"context"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/oarkflow/log"
)

// Interpreter owns a persistent root scope and the host resources natives
// use. It is not safe for concurrent use.
type Interpreter struct {
	config     RuntimeConfig
	logger     *log.Logger
	stdout     io.Writer
	stdin      *bufio.Reader
	importRoot string
	args       []string
	rand       *rand.Rand
	globals    *Environment

	// active is the evaluator of the Run in progress; the import native
	// evaluates nested programs through it.
	active *evaluator
	// importing holds the resolved paths of imports still being evaluated.
	importing map[string]bool
}

type Option func(*Interpreter)

func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

func WithStdin(r io.Reader) Option {
	return func(in *Interpreter) { in.stdin = bufio.NewReader(r) }
}

// WithImportRoot sets the directory import() resolves paths against. Paths
// outside it are rejected.
func WithImportRoot(dir string) Option {
	return func(in *Interpreter) { in.importRoot = dir }
}

func WithArgs(args []string) Option {
	return func(in *Interpreter) { in.args = args }
}

func WithLogger(logger *log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(in *Interpreter) { in.config = cfg }
}

func WithRandSource(src rand.Source) Option {
	return func(in *Interpreter) { in.rand = rand.New(src) }
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		config:     GetRuntimeConfig(),
		logger:     &log.DefaultLogger,
		stdout:     os.Stdout,
		stdin:      bufio.NewReader(os.Stdin),
		importRoot: ".",
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.globals = in.NewGlobalEnvironment()
	return in
}

func (in *Interpreter) Globals() *Environment {
	return in.globals
}

func (in *Interpreter) Logger() *log.Logger {
	return in.logger
}

// Run parses source and evaluates it in the persistent root scope. An error
// aborts the current source only; bindings made before it remain.
func (in *Interpreter) Run(ctx context.Context, source string) (Object, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return in.RunProgram(ctx, program)
}

func (in *Interpreter) RunProgram(ctx context.Context, program *Program) (Object, error) {
	ctx, cancel := withExecTimeout(ctx, in.config)
	defer cancel()

	start := time.Now()
	result, err := in.Eval(ctx, program, in.globals)
	if in.config.LogExecution {
		if err != nil {
			in.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("script failed")
		} else {
			in.logger.Info().Int("statements", len(program.Body)).Dur("duration", time.Since(start)).Msg("script executed")
		}
	}
	return result, err
}

// Eval evaluates node in env. Nested calls made by natives during the
// evaluation share its context and call depth.
func (in *Interpreter) Eval(ctx context.Context, node Node, env *Environment) (Object, error) {
	if in.active != nil {
		return in.active.eval(node, env)
	}
	ev := &evaluator{ctx: ctx, in: in}
	in.active = ev
	defer func() { in.active = nil }()
	return ev.eval(node, env)
}
