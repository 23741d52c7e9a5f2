package game

import (
	"fmt"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	HumanName        string
	MachineName      string
	ShowMachineCards bool // Reveal cards the machine draws
}

// EventFormatter provides centralized formatting for all game events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	if opts.HumanName == "" {
		opts.HumanName = "You"
	}
	if opts.MachineName == "" {
		opts.MachineName = "Machine"
	}
	return &EventFormatter{opts: opts}
}

func (ef *EventFormatter) name(side Side) string {
	if side == Human {
		return ef.opts.HumanName
	}
	return ef.opts.MachineName
}

// Format returns a one-line description of the event, or "" for events that
// are not worth showing (hand size changes, turn flips).
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case CardPlayedEvent:
		return fmt.Sprintf("%s played %s", ef.name(e.Side), e.Card)
	case CardDrawnEvent:
		if e.Side == Machine && !ef.opts.ShowMachineCards {
			return fmt.Sprintf("%s drew a card (%d left in deck)", ef.name(e.Side), e.DeckLeft)
		}
		return fmt.Sprintf("%s drew %s (%d left in deck)", ef.name(e.Side), e.Card, e.DeckLeft)
	case ColorChosenEvent:
		return fmt.Sprintf("%s chose %s", ef.name(e.Side), e.Color)
	case SkipEvent:
		return fmt.Sprintf("Turn skipped for %s", ef.name(e.Side))
	case OneCardLeftEvent:
		return fmt.Sprintf("One card left for %s", ef.name(e.Side))
	case PenaltyEvent:
		return ef.formatPenalty(e)
	case GameOverEvent:
		return ef.FormatResult(e.Result)
	default:
		return ""
	}
}

func (ef *EventFormatter) formatPenalty(e PenaltyEvent) string {
	switch e.Cards {
	case 0:
		return fmt.Sprintf("No penalty card for %s (%s): deck is empty", ef.name(e.Side), e.Reason)
	case 1:
		return fmt.Sprintf("Penalty for %s (%s): 1 card", ef.name(e.Side), e.Reason)
	default:
		return fmt.Sprintf("Penalty for %s (%s): %d cards", ef.name(e.Side), e.Reason, e.Cards)
	}
}

// FormatResult describes how a game ended
func (ef *EventFormatter) FormatResult(r Result) string {
	switch r.Reason {
	case EndEmptyHand:
		if r.Winner == Human {
			return fmt.Sprintf("%s won the game!", ef.name(Human))
		}
		return fmt.Sprintf("%s won the game", ef.name(Machine))
	case EndDeckExhausted:
		return "Game over: the deck is empty and nobody can play"
	default:
		return "Game in progress"
	}
}
