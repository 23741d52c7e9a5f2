// Package game implements the rules and state of a two-player UNO game.
//
// The main type is Engine, which owns the deck, the table and both hands
// behind a single mutex. Every mutation goes through an Engine method, so
// callers on different goroutines (the human's input, the machine worker,
// timers) always see a consistent game.
//
// # Basic Usage
//
//	e := game.NewEngine(randutil.New(42), logger)
//	if err := e.StartGame(); err != nil {
//	    return err
//	}
//	top, _ := e.Top()
//	for _, card := range e.Hand(game.Human) {
//	    if deck.CanPlayOver(card, top) {
//	        err := e.PlayCard(card)
//	        ...
//	    }
//	}
//	if winner, ok := e.CheckWinner(); ok {
//	    ...
//	}
//
// Wild cards leave a color to be chosen; PlayCardWithColor plays and
// resolves one in a single step.
//
// # Events
//
// Subscribers registered on the engine's EventBus receive a GameEvent for
// every change. Events are queued while the lock is held and published once
// it is released, so a subscriber may call back into the engine.
//
// # Special Cards
//
// The effect of SKIP, REVERSE, +2, +4 and WILD cards is looked up in an
// EffectRegistry. The first registered effect whose CanApply matches a card
// wins; DefaultEffects covers every special value.
//
// # Persistence
//
// Snapshot returns a JSON-serialisable copy of the whole game and Restore
// rebuilds an engine from one, checking that all 54 cards are accounted for.
package game
