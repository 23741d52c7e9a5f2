package session

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWatchdog(t *testing.T, ctx context.Context, e *game.Engine) <-chan error {
	t.Helper()
	w := NewWatchdog(e, quartz.NewMock(t), time.Minute, game.QuietLogger())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()
	return errc
}

func waitDone(t *testing.T, errc <-chan error) {
	t.Helper()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop")
	}
}

func TestWatchdogDetectsWinOnHandChange(t *testing.T) {
	e := game.NewTestEngine(
		game.WithHands([]deck.Card{red7}, []deck.Card{green3}),
		game.WithTop(red5),
	)
	errc := runWatchdog(t, context.Background(), e)

	require.NoError(t, e.PlayCard(red7))
	waitDone(t, errc)

	assert.True(t, e.GameOver())
	assert.Equal(t, game.Result{Winner: game.Human, Reason: game.EndEmptyHand}, e.Result())
}

func TestWatchdogStopsOnExhaustion(t *testing.T) {
	e := game.NewTestEngine(
		game.WithHands([]deck.Card{green3}, []deck.Card{blue4}),
		game.WithTop(red5),
		game.WithDeckCards(),
	)
	errc := runWatchdog(t, context.Background(), e)

	_, err := e.DrawCard(game.Human)
	require.Error(t, err)
	waitDone(t, errc)
	assert.False(t, e.Result().HasWinner())
}

func TestWatchdogStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := game.NewTestEngine()
	errc := runWatchdog(t, ctx, e)

	cancel()
	waitDone(t, errc)
	assert.False(t, e.GameOver())
}

func TestWatchdogPolls(t *testing.T) {
	e := game.NewTestEngine(
		game.WithHands([]deck.Card{red7}, []deck.Card{green3}),
		game.WithTop(red5),
	)
	// The win happens before the watchdog exists
	require.NoError(t, e.PlayCard(red7))

	w := NewWatchdog(e, quartz.NewReal(), 5*time.Millisecond, game.QuietLogger())
	errc := make(chan error, 1)
	go func() { errc <- w.Run(context.Background()) }()
	waitDone(t, errc)
	assert.True(t, e.GameOver())
}
