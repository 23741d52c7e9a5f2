package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/unoduel/internal/deck"
)

// CommandKind is what the player typed
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdPlay
	CmdDraw
	CmdUno
	CmdPass
	CmdHelp
	CmdQuit
)

// Command is a parsed line of input. Index is 1-based into the hand.
type Command struct {
	Kind  CommandKind
	Index int
	Color deck.Color
}

const helpText = "play N [color] (or just N) · draw · uno · pass · help · quit"

// ParseCommand parses an input line. A bare number is a play.
func ParseCommand(input string) (Command, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Command{Kind: CmdNone}, nil
	}

	verb, args := fields[0], fields[1:]
	if _, err := strconv.Atoi(verb); err == nil {
		verb, args = "play", fields
	}

	switch verb {
	case "play", "p":
		return parsePlay(args)
	case "draw", "d":
		return Command{Kind: CmdDraw}, nil
	case "uno", "u":
		return Command{Kind: CmdUno}, nil
	case "pass":
		return Command{Kind: CmdPass}, nil
	case "help", "h", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "q", "exit":
		return Command{Kind: CmdQuit}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q", verb)
	}
}

func parsePlay(args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, fmt.Errorf("usage: play N [color]")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, fmt.Errorf("invalid card number %q", args[0])
	}
	cmd := Command{Kind: CmdPlay, Index: n}
	if len(args) == 2 {
		color, err := deck.ParseColor(args[1])
		if err != nil {
			return Command{}, err
		}
		cmd.Color = color
	}
	return cmd, nil
}
