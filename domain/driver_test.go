package domain

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dealerTurnTable stages a round right at the dealer turn: the player stands
// on 19 against a dealer 16 that will draw a king and bust.
func dealerTurnTable(t *testing.T) (*Table, *InMemoryCreditStore) {
	t.Helper()

	table, credits := seatedTable(t, 1000, TableRules{DeckCount: 1},
		"10s", "6h", "9d", "10c", "Kd")
	require.NoError(t, table.PlaceChip(100))
	require.NoError(t, table.Deal())
	require.NoError(t, table.Stay(0))
	require.Equal(t, RoundPhase_DealerTurn, table.Round.Phase)
	return table, credits
}

func TestDriverZeroDelay(t *testing.T) {
	table, credits := dealerTurnTable(t)
	driver := NewDriver(table, quartz.NewMock(t), 0)

	require.NoError(t, driver.Run(context.Background()))

	assert.Equal(t, RoundPhase_PostRound, table.Round.Phase)
	assert.True(t, table.Round.Dealer.Busted)
	assert.Equal(t, 1100, balanceOf(t, credits))
}

func TestDriverPacedPlayMatchesTightLoop(t *testing.T) {
	table, credits := dealerTurnTable(t)
	driver := NewDriver(table, quartz.NewReal(), time.Millisecond)

	require.NoError(t, driver.Run(context.Background()))

	assert.Equal(t, RoundPhase_PostRound, table.Round.Phase)
	assert.True(t, table.Round.Dealer.Busted)
	assert.Equal(t, 1100, balanceOf(t, credits))
}

func TestDriverStopsOnCancel(t *testing.T) {
	table, _ := dealerTurnTable(t)
	driver := NewDriver(table, quartz.NewReal(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The hole card is revealed, then the pacing wait observes the dead
	// context before the dealer draws.
	assert.ErrorIs(t, driver.Run(ctx), context.Canceled)
	assert.Equal(t, RoundPhase_DealerTurn, table.Round.Phase)
	assert.True(t, table.Round.Dealer.Revealed())
	assert.Len(t, table.Round.Dealer.Cards, 2)
}

func TestDriverSerializesCommandAccess(t *testing.T) {
	table, credits := dealerTurnTable(t)
	driver := NewDriver(table, quartz.NewReal(), time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- driver.Run(context.Background())
	}()

	// Interleave lock-guarded snapshots and commands with the paced dealer,
	// the way the command router does. NextRound is refused until the dealer
	// has settled, then hands over a fresh round.
	deadline := time.After(5 * time.Second)
	for {
		table.Lock()
		view := table.BuildView()
		err := table.NextRound()
		table.Unlock()

		assert.Equal(t, table.ID, view.TableID)
		if err == nil {
			break
		}

		select {
		case <-deadline:
			t.Fatal("dealer turn never settled")
		default:
		}
	}

	require.NoError(t, <-done)
	assert.Equal(t, RoundPhase_PreDeal, table.Round.Phase)
	assert.Equal(t, 1100, balanceOf(t, credits))
}

func TestDriverRequiresDealerTurn(t *testing.T) {
	table, _ := seatedTable(t, 1000, TableRules{DeckCount: 1})
	driver := NewDriver(table, quartz.NewMock(t), 0)

	// A round still taking bets has nothing for the driver to do.
	require.NoError(t, driver.Run(context.Background()))
	assert.Equal(t, RoundPhase_PreDeal, table.Round.Phase)
}
