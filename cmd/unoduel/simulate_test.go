package main

import (
	"testing"
	"time"

	"github.com/lox/unoduel/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateGamesFinish(t *testing.T) {
	for _, strategy := range []string{"random", "first-legal"} {
		t.Run(strategy, func(t *testing.T) {
			cmd := &SimulateCmd{Games: 3, Seed: 11, Strategy: strategy, Timeout: 20 * time.Second}
			var stats simStats
			for i := 0; i < cmd.Games; i++ {
				require.NoError(t, cmd.playOne(cmd.Seed+int64(i), &stats, game.QuietLogger()))
			}
			assert.Equal(t, cmd.Games, stats.humanWins+stats.machineWins+stats.exhausted)
			assert.Positive(t, stats.cardsPlayed)
		})
	}
}

func TestSeedOrRandom(t *testing.T) {
	assert.Equal(t, int64(9), seedOrRandom(9))
	assert.NotZero(t, seedOrRandom(0))
}
