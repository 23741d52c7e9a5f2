package session

import (
	"context"
	"errors"

	"github.com/lox/unoduel/internal/bot"
	"github.com/lox/unoduel/internal/game"
)

// Autoplay drives the human side with a strategy until the game ends. It
// calls UNO as soon as the human is down to one card.
func (s *Session) Autoplay(ctx context.Context, strategy bot.Strategy) error {
	wake := newNotifier(game.EventTypeTurnChanged, game.EventTypeGameOver)
	s.Subscribe(wake)
	defer s.Unsubscribe(wake)

	for {
		if s.engine.GameOver() {
			return nil
		}
		if s.engine.HumanTurn() {
			if s.reminder.Pending(game.Human) {
				if _, err := s.Declare(); err != nil && !errors.Is(err, ErrNothingToDeclare) {
					s.logger.Debug("Autoplay declare failed", "error", err)
				}
			}
			retry, err := s.autoplayTurn(strategy)
			if err != nil {
				return err
			}
			if retry {
				continue
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake.C():
		}
	}
}

// autoplayTurn applies one decision. It reports retry when the turn is still
// the human's and another decision should be made straight away.
func (s *Session) autoplayTurn(strategy bot.Strategy) (bool, error) {
	v := s.engine.View(game.Human)
	d := strategy.MakeDecision(v)

	var err error
	switch d.Action {
	case game.ActionPlay:
		err = s.HumanPlay(d.Card, d.Color)
	case game.ActionDraw:
		_, err = s.HumanDraw()
	default:
		err = s.Pass()
	}

	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrNotYourTurn), errors.Is(err, game.ErrIllegalState):
		return false, nil
	case errors.Is(err, game.ErrDeckEmpty), errors.Is(err, ErrCannotPass), errors.Is(err, game.ErrInvalidPlay):
		s.logger.Debug("Autoplay retrying", "decision", d.Action, "error", err)
		return true, nil
	default:
		return false, err
	}
}
