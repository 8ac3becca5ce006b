package main

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogLevels(t *testing.T) {
	run := func(level string) error {
		app := &cli.App{
			Name: "ingrain",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
				&cli.StringFlag{Name: "config", Value: ""},
			},
			Before: setup,
			Action: func(c *cli.Context) error { return nil },
		}
		return app.Run([]string{"ingrain", "--log-level", level})
	}

	for _, level := range []string{"debug", "info", "warn", "error", "DEBUG"} {
		assert.NoError(t, run(level), level)
	}

	err := run("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")

	// setup replaces the default logger; keep later tests quiet.
	slog.SetDefault(slog.Default())
}

func TestEnqueueRequiresFiles(t *testing.T) {
	app := &cli.App{
		Name: "ingrain",
		Commands: []*cli.Command{
			{
				Name:      "enqueue",
				ArgsUsage: "FILE [FILE...]",
				Action:    enqueueCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Aliases: []string{"d"}, Required: true},
				},
			},
		},
	}

	err := app.Run([]string{"ingrain", "enqueue", "--db", "Docs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one file")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short"))
	assert.Equal(t, "one two", snippet("one\ntwo"))

	long := snippet(strings.Repeat("x", 300))
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.Len(t, long, 123)
}

func TestQueryRequiresArgs(t *testing.T) {
	app := &cli.App{
		Name: "ingrain",
		Commands: []*cli.Command{
			{
				Name:   "query",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "db", Aliases: []string{"d"}, Required: true},
					&cli.IntFlag{Name: "top", Value: 5},
				},
			},
		},
	}

	err := app.Run([]string{"ingrain", "query", "--db", "Docs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query string")
}

func TestStatusRequiresOneArg(t *testing.T) {
	app := &cli.App{
		Name: "ingrain",
		Commands: []*cli.Command{
			{Name: "status", Action: statusCommand},
		},
	}

	err := app.Run([]string{"ingrain", "status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one job ID")
}
