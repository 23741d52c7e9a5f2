package main

import (
	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"withargs" help:"Play UNO against the machine"`
	Simulate SimulateCmd      `cmd:"" help:"Play bot-vs-machine games headless"`
}

func parserOptions() []kong.Option {
	return []kong.Option{
		kong.Name("unoduel"),
		kong.Description("Two-player UNO in the terminal: you against the machine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli, parserOptions()...)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
