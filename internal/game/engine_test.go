package game

import (
	"errors"
	"sync"
	"testing"

	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []GameEvent
}

func (r *recorder) OnEvent(event GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) count(et EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.EventType() == et {
			n++
		}
	}
	return n
}

func (r *recorder) all() []GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]GameEvent(nil), r.events...)
}

func newRecordedEngine(opts ...TestEngineOption) (*Engine, *recorder) {
	rec := &recorder{}
	bus := NewEventBus()
	bus.Subscribe(rec)
	e := NewTestEngine(append(opts, WithTestEventBus(bus))...)
	return e, rec
}

func assertClosure(t *testing.T, e *Engine) {
	t.Helper()
	e.mu.Lock()
	all := append([]deck.Card{}, e.deck.Cards()...)
	all = append(all, e.table.History()...)
	all = append(all, e.players[Human].Cards()...)
	all = append(all, e.players[Machine].Cards()...)
	e.mu.Unlock()

	require.Len(t, all, deck.Size)
	ids := make(map[int]bool)
	for _, c := range all {
		ids[c.ID] = true
	}
	require.Len(t, ids, deck.Size, "every card must be in exactly one place")
}

var (
	red5   = CardOf(deck.Five, deck.Red)
	red7   = CardOf(deck.Seven, deck.Red)
	red8   = CardOf(deck.Eight, deck.Red)
	blue4  = CardOf(deck.Four, deck.Blue)
	blue9  = CardOf(deck.Nine, deck.Blue)
	green3 = CardOf(deck.Three, deck.Green)
	plus2  = CardOf(deck.DrawTwo, deck.Red)
	plus4  = CardOf(deck.DrawFour, deck.NoColor)
	wild   = CardOf(deck.Wild, deck.NoColor)
)

func TestStartGameDeals(t *testing.T) {
	e, rec := newRecordedEngine()

	assert.Equal(t, PhaseInProgress, e.Phase())
	assert.Equal(t, InitialHandSize, e.HandSize(Human))
	assert.Equal(t, InitialHandSize, e.HandSize(Machine))
	assert.True(t, e.HumanTurn())

	top, ok := e.Top()
	require.True(t, ok)
	assert.False(t, top.IsSpecial(), "seed card %s must be a plain number", top)
	assert.Equal(t, deck.Size-2*InitialHandSize-len(e.Discard()), e.DeckSize())
	assertClosure(t, e)
	assert.Equal(t, 0, rec.count(EventTypeGameOver))
}

func TestStartGameIsDeterministic(t *testing.T) {
	a := NewTestEngine(WithSeed(9))
	b := NewTestEngine(WithSeed(9))
	assert.Equal(t, a.Hand(Human), b.Hand(Human))
	assert.Equal(t, a.Hand(Machine), b.Hand(Machine))
	assert.Equal(t, a.Discard(), b.Discard())
}

func TestStartGameTwice(t *testing.T) {
	e := NewTestEngine()
	err := e.StartGame()
	assert.True(t, errors.Is(err, ErrIllegalState))
}

func TestStartGameShortDeck(t *testing.T) {
	e := NewEngine(nil, QuietLogger(), WithDeck(deck.FromCards(deck.Composition()[:3])))
	err := e.StartGame()
	assert.True(t, errors.Is(err, ErrDeckEmpty))
	assert.Equal(t, PhaseNotStarted, e.Phase())
}

func TestOperationsBeforeStart(t *testing.T) {
	e := NewEngine(randutil.New(1), QuietLogger())

	assert.True(t, errors.Is(e.PlayCard(red5), ErrIllegalState))
	_, err := e.DrawCard(Human)
	assert.True(t, errors.Is(err, ErrIllegalState))
	assert.True(t, errors.Is(e.HaveSungOne(Human), ErrIllegalState))
	assert.Equal(t, 0, e.EatCard(Machine, 2))
	_, won := e.CheckWinner()
	assert.False(t, won)
}

func TestCanPlay(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{red7, blue9, wild, plus4, green3}, []deck.Card{blue4}),
		WithTop(red5),
	)

	tests := []struct {
		card deck.Card
		want bool
	}{
		{red7, true},
		{blue9, false},
		{wild, true},
		{plus4, true},
		{green3, false},
		{CardOf(deck.Five, deck.Yellow), true},
		{plus2, true},
	}
	for _, tt := range tests {
		t.Run(tt.card.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, e.CanPlay(tt.card))
		})
	}
}

func TestPlayCardMovesCardToTable(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{red7, blue9}, []deck.Card{green3, blue4}),
		WithTop(red5),
	)

	require.NoError(t, e.PlayCard(red7))

	top, _ := e.Top()
	assert.Equal(t, red7, top)
	assert.Equal(t, []deck.Card{blue9}, e.Hand(Human))
	assert.Equal(t, 1, rec.count(EventTypeCardPlayed))
	assert.Equal(t, 1, rec.count(EventTypeOneCardLeft))
	assertClosure(t, e)
}

func TestPlayCardRejected(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{red7, blue9}, []deck.Card{green3}),
		WithTop(red5),
	)

	err := e.PlayCard(blue9)
	assert.True(t, errors.Is(err, ErrInvalidPlay))

	err = e.PlayCard(CardOf(deck.Nine, deck.Red))
	assert.True(t, errors.Is(err, ErrInvalidPlay), "card in no hand")

	top, _ := e.Top()
	assert.Equal(t, red5, top)
	assert.Len(t, e.Hand(Human), 2)
	assertClosure(t, e)
}

func TestMachineCardsPlayFromMachineHand(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{blue9}, []deck.Card{red7, green3}),
		WithTop(red5),
	)

	require.NoError(t, e.PlayCard(red7))
	assert.Equal(t, []deck.Card{green3}, e.Hand(Machine))
	assert.Equal(t, []deck.Card{blue9}, e.Hand(Human))
}

func TestDrawTwo(t *testing.T) {
	greenPlus2 := CardOf(deck.DrawTwo, deck.Green)
	tests := []struct {
		name        string
		played      deck.Card
		machine     []deck.Card
		top         deck.Card
		wantMachine int
	}{
		{
			name:        "over a matching color",
			played:      plus2,
			machine:     []deck.Card{green3},
			top:         red5,
			wantMachine: 3,
		},
		{
			name:        "over a red draw two",
			played:      greenPlus2,
			machine:     []deck.Card{green3, blue4, CardOf(deck.One, deck.Yellow)},
			top:         plus2,
			wantMachine: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newRecordedEngine(
				WithHands([]deck.Card{tt.played, blue9}, tt.machine),
				WithTop(tt.top),
			)

			require.NoError(t, e.PlayCard(tt.played))

			assert.Equal(t, tt.wantMachine, e.HandSize(Machine))
			assert.True(t, e.IsSkipped(Machine))
			assert.False(t, e.IsSkipped(Human))
			assert.Equal(t, 2, rec.count(EventTypeCardDrawn))
			assert.Equal(t, 1, rec.count(EventTypeSkip))

			assert.True(t, e.ConsumeSkip(Machine))
			assert.False(t, e.ConsumeSkip(Machine), "skip is consumed once")
			assertClosure(t, e)
		})
	}
}

func TestSkipFlags(t *testing.T) {
	t.Run("repeated sets clear once", func(t *testing.T) {
		e := NewTestEngine()
		e.SkipTurn(Human)
		e.SkipTurn(Human)
		assert.True(t, e.IsSkipped(Human))

		e.ClearSkip(Human)
		assert.False(t, e.IsSkipped(Human))
		assert.False(t, e.ConsumeSkip(Human))
	})

	t.Run("repeated sets consume once", func(t *testing.T) {
		e := NewTestEngine()
		e.SkipTurn(Machine)
		e.SkipTurn(Machine)

		assert.True(t, e.ConsumeSkip(Machine))
		assert.False(t, e.IsSkipped(Machine))
		assert.False(t, e.ConsumeSkip(Machine))
	})

	t.Run("clear is per side", func(t *testing.T) {
		e := NewTestEngine()
		e.SkipTurn(Human)
		e.SkipTurn(Machine)

		e.ClearSkip(Machine)
		assert.True(t, e.IsSkipped(Human))
		assert.False(t, e.IsSkipped(Machine))

		e.ClearSkip(Machine)
		assert.False(t, e.IsSkipped(Machine), "clearing an unset flag is a no-op")
	})
}

func TestSkipAndReverse(t *testing.T) {
	for _, v := range []deck.Value{deck.Skip, deck.Reverse} {
		t.Run(v.String(), func(t *testing.T) {
			card := CardOf(v, deck.Red)
			e := NewTestEngine(
				WithHands([]deck.Card{card, blue9}, []deck.Card{green3}),
				WithTop(red5),
			)
			require.NoError(t, e.PlayCard(card))
			assert.True(t, e.IsSkipped(Machine))
			assert.Equal(t, 1, e.HandSize(Machine))
		})
	}
}

func TestMachineDrawTwoSkipsHuman(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{blue9}, []deck.Card{plus2, green3}),
		WithTop(red5),
	)
	require.NoError(t, e.PlayCard(plus2))
	assert.Equal(t, 3, e.HandSize(Human))
	assert.True(t, e.ConsumeSkip(Human))
}

func TestWildColorChoice(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{wild, blue9, red7}, []deck.Card{green3}),
		WithTop(red5),
	)

	require.NoError(t, e.PlayCard(wild))
	v := e.View(Human)
	assert.True(t, v.PendingColor)
	assert.Empty(t, v.Playable)
	assert.False(t, e.View(Machine).PendingColor)

	assert.True(t, errors.Is(e.PlayCard(blue9), ErrInvalidPlay), "color must be chosen first")
	assert.True(t, errors.Is(e.ChooseColor(Machine, deck.Blue), ErrIllegalState))
	assert.True(t, errors.Is(e.ChooseColor(Human, deck.NoColor), ErrInvalidPlay))

	require.NoError(t, e.ChooseColor(Human, deck.Blue))
	top, _ := e.Top()
	assert.Equal(t, deck.Blue, top.Color)
	assert.True(t, e.CanPlay(blue9))
	assert.False(t, e.CanPlay(red7))
	assert.Equal(t, 1, rec.count(EventTypeColorChosen))

	assert.True(t, errors.Is(e.ChooseColor(Human, deck.Red), ErrIllegalState), "no second choice")
	assert.Equal(t, 1, e.HandSize(Machine), "plain wild has no draw effect")
	assert.False(t, e.IsSkipped(Machine))
}

func TestDrawFour(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{plus4, blue9}, []deck.Card{green3}),
		WithTop(red5),
	)

	err := e.PlayCardWithColor(plus4, deck.NoColor)
	assert.True(t, errors.Is(err, ErrInvalidPlay))
	assert.Equal(t, 2, e.HandSize(Human))

	require.NoError(t, e.PlayCardWithColor(plus4, deck.Green))
	top, _ := e.Top()
	assert.Equal(t, deck.Green, top.Color)
	assert.Equal(t, 5, e.HandSize(Machine))
	assert.True(t, e.IsSkipped(Machine))
	assert.False(t, e.View(Human).PendingColor)
	assertClosure(t, e)
}

func TestDrawCard(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{blue9}, []deck.Card{green3}),
		WithTop(red5),
		WithDeckCards(blue4, red7),
	)

	card, err := e.DrawCard(Human)
	require.NoError(t, err)
	assert.Equal(t, red7, card)
	assert.Equal(t, 1, e.DeckSize())
	assert.Equal(t, 2, e.HandSize(Human))
	assert.Equal(t, 1, rec.count(EventTypeCardDrawn))
	assertClosure(t, e)
}

func TestDrawFromEmptyDeckWhileSomeoneCanPlay(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{red7}, []deck.Card{blue4}),
		WithTop(red5),
		WithDeckCards(),
	)

	_, err := e.DrawCard(Machine)
	assert.True(t, errors.Is(err, ErrDeckEmpty))
	assert.False(t, e.GameOver())
}

func TestDeckExhaustionStandoff(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{green3}, []deck.Card{blue4}),
		WithTop(red5),
		WithDeckCards(),
	)
	assert.False(t, e.CanAnyPlayerPlay())

	_, err := e.DrawCard(Human)
	assert.True(t, errors.Is(err, ErrDeckEmpty))
	assert.True(t, e.GameOver())
	assert.Equal(t, Result{Reason: EndDeckExhausted}, e.Result())
	assert.False(t, e.Result().HasWinner())

	_, won := e.CheckWinner()
	assert.False(t, won)

	_, err = e.DrawCard(Machine)
	assert.True(t, errors.Is(err, ErrIllegalState))
	assert.Equal(t, 1, rec.count(EventTypeGameOver))
	assertClosure(t, e)
}

func TestEatCardIsBestEffort(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{red7}, []deck.Card{green3}),
		WithTop(red5),
		WithDeckCards(blue4),
	)

	assert.Equal(t, 1, e.EatCard(Machine, 4))
	assert.Equal(t, 0, e.EatCard(Machine, 1))
	assert.Equal(t, 2, e.HandSize(Machine))
	assertClosure(t, e)
}

func TestHaveSungOne(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{red7}, []deck.Card{green3, blue4}),
		WithTop(red5),
	)

	require.NoError(t, e.HaveSungOne(Human))
	assert.Equal(t, 3, e.HandSize(Machine))
	assert.Equal(t, 1, e.HandSize(Human))

	var penalty PenaltyEvent
	for _, ev := range rec.all() {
		if p, ok := ev.(PenaltyEvent); ok {
			penalty = p
		}
	}
	assert.Equal(t, Machine, penalty.Side)
	assert.Equal(t, 1, penalty.Cards)
}

func TestPenalize(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{red7}, []deck.Card{green3}),
		WithTop(red5),
	)
	_, err := e.Penalize(Human, "late")
	require.NoError(t, err)
	assert.Equal(t, 2, e.HandSize(Human))
	assert.Equal(t, 1, rec.count(EventTypePenalty))
}

func TestOneCardLeftEvents(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{red7, red8, blue9}, []deck.Card{green3}),
		WithTop(red5),
	)

	require.NoError(t, e.PlayCard(red7))
	assert.Equal(t, 0, rec.count(EventTypeOneCardLeft))
	require.NoError(t, e.PlayCard(red8))
	assert.Equal(t, 1, rec.count(EventTypeOneCardLeft))

	_, err := e.DrawCard(Human)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.count(EventTypeOneCardLeft))
}

func TestWinDetectedExactlyOnce(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{red7}, []deck.Card{green3, blue4}),
		WithTop(red5),
	)

	require.NoError(t, e.PlayCard(red7))
	assert.False(t, e.GameOver(), "only CheckWinner or the next action settles the game")

	for i := 0; i < 3; i++ {
		winner, ok := e.CheckWinner()
		require.True(t, ok)
		assert.Equal(t, Human, winner)
	}
	assert.Equal(t, 1, rec.count(EventTypeGameOver))
	assert.Equal(t, Result{Winner: Human, Reason: EndEmptyHand}, e.Result())
}

func TestActionAfterEmptyHandSettlesGame(t *testing.T) {
	e, rec := newRecordedEngine(
		WithHands([]deck.Card{red7}, []deck.Card{plus2, blue4}),
		WithTop(red5),
	)
	require.NoError(t, e.PlayCard(red7))

	err := e.PlayCard(plus2)
	assert.True(t, errors.Is(err, ErrIllegalState))
	assert.Equal(t, 0, e.HandSize(Human), "winner's hand is never refilled")
	assert.True(t, e.GameOver())
	assert.Equal(t, 1, rec.count(EventTypeGameOver))
}

func TestGameOverIsMonotonic(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{green3}, []deck.Card{blue4}),
		WithTop(red5),
		WithDeckCards(),
	)
	_, _ = e.DrawCard(Human)
	require.True(t, e.GameOver())

	assert.True(t, errors.Is(e.PlayCard(green3), ErrIllegalState))
	assert.True(t, errors.Is(e.HaveSungOne(Machine), ErrIllegalState))
	assert.Equal(t, 0, e.EatCard(Human, 1))
	e.SetHumanTurn(false)
	e.SkipTurn(Human)
	assert.True(t, e.GameOver())
	assert.Equal(t, PhaseGameOver, e.Phase())
}

type reentrantSubscriber struct {
	e     *Engine
	sizes []int
}

func (r *reentrantSubscriber) OnEvent(event GameEvent) {
	if _, ok := event.(HandChangedEvent); ok {
		r.sizes = append(r.sizes, r.e.HandSize(Human))
	}
}

func TestEventsPublishedOutsideLock(t *testing.T) {
	bus := NewEventBus()
	e := NewTestEngine(
		WithHands([]deck.Card{blue9}, []deck.Card{green3}),
		WithTop(red5),
		WithTestEventBus(bus),
	)
	sub := &reentrantSubscriber{e: e}
	bus.Subscribe(sub)

	_, err := e.DrawCard(Human)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, sub.sizes)
}

func TestSetHumanTurnPublishesOnChange(t *testing.T) {
	e, rec := newRecordedEngine()
	e.SetHumanTurn(true)
	assert.Equal(t, 0, rec.count(EventTypeTurnChanged))
	e.SetHumanTurn(false)
	e.SetHumanTurn(false)
	assert.Equal(t, 1, rec.count(EventTypeTurnChanged))
	assert.False(t, e.HumanTurn())
}

func TestViewIsACopy(t *testing.T) {
	e := NewTestEngine(
		WithHands([]deck.Card{red7, blue9}, []deck.Card{green3}),
		WithTop(red5),
	)
	v := e.View(Human)
	assert.Equal(t, []deck.Card{red7}, v.Playable)
	assert.Equal(t, 1, v.OpponentCards)

	v.Hand[0] = green3
	assert.Equal(t, red7, e.Hand(Human)[0])
}

// Both sides play the first legal card (red for wilds) until the game ends.
func TestFullGameKeepsEveryCard(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 42, 1234} {
		e := NewTestEngine(WithSeed(seed))
		side := Human

		for turn := 0; turn < 1000 && !e.GameOver(); turn++ {
			if e.ConsumeSkip(side) {
				side = side.Opponent()
				continue
			}
			v := e.View(side)
			if len(v.Playable) > 0 {
				require.NoError(t, e.PlayCardWithColor(v.Playable[0], deck.Red))
			} else if _, err := e.DrawCard(side); err != nil {
				require.True(t, errors.Is(err, ErrDeckEmpty), "seed %d: %v", seed, err)
			}
			e.CheckWinner()
			assertClosure(t, e)
			side = side.Opponent()
		}
		require.True(t, e.GameOver(), "seed %d did not finish", seed)
	}
}
