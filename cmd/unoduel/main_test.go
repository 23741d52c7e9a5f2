package main

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIParses(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			name:    "default is play",
			args:    []string{},
			command: "play",
		},
		{
			name:    "play flags",
			args:    []string{"play", "--continue", "--seed", "7", "--name", "Ada"},
			command: "play",
			check: func(t *testing.T, cli *CLI) {
				assert.True(t, cli.Play.Continue)
				assert.Equal(t, int64(7), cli.Play.Seed)
				assert.Equal(t, "Ada", cli.Play.Name)
			},
		},
		{
			name:    "simulate verbose short flag",
			args:    []string{"simulate", "-v", "--games", "5"},
			command: "simulate",
			check: func(t *testing.T, cli *CLI) {
				assert.True(t, cli.Simulate.Verbose)
				assert.Equal(t, 5, cli.Simulate.Games)
				assert.Equal(t, "random", cli.Simulate.Strategy)
				assert.Equal(t, 30*time.Second, cli.Simulate.Timeout)
			},
		},
		{
			name:    "simulate strategy",
			args:    []string{"simulate", "--strategy", "first-legal"},
			command: "simulate",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, "first-legal", cli.Simulate.Strategy)
				assert.False(t, cli.Simulate.Verbose)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, parserOptions()...)
			require.NoError(t, err)

			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, ctx.Command())
			if tt.check != nil {
				tt.check(t, &cli)
			}
		})
	}
}

func TestCLIRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"simulate", "--strategy", "genius"},
		{"deal"},
	} {
		var cli CLI
		parser, err := kong.New(&cli, parserOptions()...)
		require.NoError(t, err)
		_, err = parser.Parse(args)
		assert.Error(t, err, "%v", args)
	}
}
