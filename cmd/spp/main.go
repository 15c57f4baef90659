package main

import (
	"os"

	"github.com/oarkflow/log"
	"github.com/urfave/cli/v2"

	"github.com/oarkflow/spp/interpreter"
	"github.com/oarkflow/spp/pkg/config"
)

func main() {
	app := &cli.App{
		Name:  "spp",
		Usage: "Shakespeare++ interpreter",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file (YAML, JSON, or BCL)",
				EnvVars: []string{"SPP_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Execute a script file",
				ArgsUsage: "<file> [args...]",
				Action:    runFile,
			},
			{
				Name:  "repl",
				Usage: "Start an interactive session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "ast",
						Usage: "Print the syntax tree of each input instead of evaluating it",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "Do not record inputs to the history file",
					},
				},
				Action: startRepl,
			},
			{
				Name:      "ast",
				Usage:     "Print the syntax tree of a script as JSON",
				ArgsUsage: "<file>",
				Action:    printAST,
			},
			{
				Name:      "tokens",
				Usage:     "Print the token stream of a script",
				ArgsUsage: "<file>",
				Action:    printTokens,
			},
			{
				Name:  "serve",
				Usage: "Start the HTTP evaluation server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Address to listen on (overrides server.addr)",
					},
					&cli.BoolFlag{
						Name:  "access-log",
						Usage: "Log every HTTP request",
					},
				},
				Action: startServer,
			},
			{
				Name:   "schedule",
				Usage:  "Run the configured cron schedules until interrupted",
				Action: runSchedules,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger := &log.DefaultLogger
		logger.Error().Err(err).Msg("spp failed")
		os.Exit(1)
	}
}

// loadConfig reads the file named by --config, or returns the defaults, and
// installs its runtime section as the process-wide default.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	interpreter.SetRuntimeConfig(cfg.RuntimeConfig())
	return cfg, nil
}
