package domain

import (
	"testing"

	"github.com/playtwentyone/blackjacksrv/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stackedRound builds a round drawing from an explicit card sequence, top
// card first. Deal order is player, dealer up card, player, dealer hole.
func stackedRound(shorthands ...string) *Round {
	shoe := cards.NewShoe(cards.MustStack(shorthands...))
	return newRound("table-1", "player-1", shoe.Draw)
}

func dealStacked(t *testing.T, bet int, shorthands ...string) *Round {
	t.Helper()
	round := stackedRound(shorthands...)
	require.NoError(t, round.AddToBetCircle(bet))
	require.NoError(t, round.Deal())
	return round
}

func TestRoundDeal(t *testing.T) {
	t.Run("regular deal opens the player turn", func(t *testing.T) {
		round := dealStacked(t, 100, "10s", "6h", "9d", "10c")

		assert.Equal(t, RoundPhase_PlayerTurn, round.Phase)
		require.Len(t, round.Hands, 1)
		assert.Equal(t, 19, round.Hands[0].Total)
		assert.Equal(t, 100, round.Hands[0].Bet)
		require.Len(t, round.Dealer.Cards, 2)
		assert.True(t, round.Dealer.Cards[1].FaceDown)
		assert.Equal(t, 6, round.Dealer.DisplayTotal())
	})

	t.Run("player natural skips to the dealer turn", func(t *testing.T) {
		round := dealStacked(t, 100, "As", "5h", "Kd", "9c")

		assert.Equal(t, RoundPhase_DealerTurn, round.Phase)
		assert.True(t, round.Hands[0].Blackjack)
		assert.Equal(t, HandStatusDone, round.Hands[0].Status)
	})

	t.Run("dealer natural settles on the spot", func(t *testing.T) {
		round := dealStacked(t, 100, "9s", "Ah", "7d", "Kh")

		assert.Equal(t, RoundPhase_SettlingHands, round.Phase)
		assert.True(t, round.Dealer.Blackjack)
		assert.True(t, round.Dealer.Revealed())
		assert.Equal(t, HandResultLose, round.Hands[0].Result)

		require.NoError(t, round.Settle())
		assert.Equal(t, 0, round.Hands[0].Payout)
	})

	t.Run("two naturals push", func(t *testing.T) {
		round := dealStacked(t, 100, "As", "Ah", "Kd", "Kh")

		assert.Equal(t, RoundPhase_SettlingHands, round.Phase)
		assert.Equal(t, HandResultPush, round.Hands[0].Result)

		require.NoError(t, round.Settle())
		assert.Equal(t, 100, round.Hands[0].Payout)
	})

	t.Run("deal requires a bet", func(t *testing.T) {
		round := stackedRound("10s", "6h", "9d", "10c")
		assert.Error(t, round.Deal())
		assert.Equal(t, RoundPhase_PreDeal, round.Phase)
	})
}

func TestRoundNaturalPaysThreeToTwo(t *testing.T) {
	round := dealStacked(t, 100, "As", "5h", "Kd", "9c", "10s")

	// Dealer reveals 14, draws a ten, busts.
	require.NoError(t, round.DealerStep())
	require.NoError(t, round.DealerStep())
	require.Equal(t, RoundPhase_SettlingHands, round.Phase)

	require.NoError(t, round.Settle())
	assert.Equal(t, HandResultWin, round.Hands[0].Result)
	assert.Equal(t, 250, round.Hands[0].Payout)
	assert.Equal(t, 250, round.TotalPayout())
}

func TestRoundHit(t *testing.T) {
	t.Run("reaching twenty-one stands automatically", func(t *testing.T) {
		round := dealStacked(t, 100, "7s", "9h", "7d", "8c", "7h")

		require.NoError(t, round.Hit(0))
		assert.Equal(t, 21, round.Hands[0].Total)
		assert.Equal(t, HandStatusDone, round.Hands[0].Status)
		assert.Equal(t, RoundPhase_DealerTurn, round.Phase)
	})

	t.Run("busting ends the hand as a loss", func(t *testing.T) {
		round := dealStacked(t, 100, "10s", "9h", "6d", "8c", "Kh")

		require.NoError(t, round.Hit(0))
		assert.True(t, round.Hands[0].Busted)
		assert.Equal(t, HandResultLose, round.Hands[0].Result)
		assert.Equal(t, RoundPhase_DealerTurn, round.Phase)
	})
}

func TestRoundStay(t *testing.T) {
	round := dealStacked(t, 100, "10s", "6h", "9d", "10c")

	require.NoError(t, round.Stay(0))
	assert.Equal(t, HandStatusDone, round.Hands[0].Status)
	assert.Equal(t, RoundPhase_DealerTurn, round.Phase)
}

func TestRoundDouble(t *testing.T) {
	round := dealStacked(t, 100, "5s", "9h", "6d", "8c", "10s")

	require.NoError(t, round.Double(0))

	hand := round.Hands[0]
	assert.Equal(t, 200, hand.Bet)
	assert.True(t, hand.Doubled)
	assert.Equal(t, 21, hand.Total)
	assert.Equal(t, HandStatusDone, hand.Status)
	assert.Equal(t, 200, round.BetCircle)
	assert.Equal(t, RoundPhase_DealerTurn, round.Phase)
}

func TestRoundSplit(t *testing.T) {
	t.Run("pair splits into two bets of the original size", func(t *testing.T) {
		round := dealStacked(t, 50, "8s", "6h", "8d", "10c", "3s", "2d")

		require.True(t, round.CanSplit(0))
		require.NoError(t, round.Split(0))

		require.Len(t, round.Hands, 2)
		assert.Equal(t, 50, round.Hands[0].Bet)
		assert.Equal(t, 50, round.Hands[1].Bet)
		assert.Equal(t, 100, round.BetCircle)
		assert.Equal(t, cards.MustStack("8s", "3s").String(), round.Hands[0].Cards.String())
		assert.Equal(t, cards.MustStack("8d", "2d").String(), round.Hands[1].Cards.String())
		assert.True(t, round.Hands[0].FromSplit)
		assert.True(t, round.Hands[1].FromSplit)
		assert.Equal(t, 0, round.SelectedHandIndex)
	})

	t.Run("finished left hand advances to the right one", func(t *testing.T) {
		round := dealStacked(t, 50, "8s", "6h", "8d", "10c", "3s", "2d", "10h")

		require.NoError(t, round.Split(0))
		require.NoError(t, round.Hit(0))

		assert.Equal(t, 21, round.Hands[0].Total)
		assert.Equal(t, 1, round.SelectedHandIndex)
		assert.Error(t, round.Hit(0))
	})

	t.Run("split ace twenty-one is a plain twenty-one", func(t *testing.T) {
		round := dealStacked(t, 100, "As", "6h", "Ad", "10c", "Kh", "9c", "5h")

		require.NoError(t, round.Split(0))

		// Left hand landed A+K and stood automatically without turning
		// into a natural.
		assert.Equal(t, 21, round.Hands[0].Total)
		assert.False(t, round.Hands[0].Blackjack)
		assert.Equal(t, HandStatusDone, round.Hands[0].Status)
		assert.Equal(t, 1, round.SelectedHandIndex)

		require.NoError(t, round.Stay(1))

		// Dealer reveals 16, draws to 21: the split twenty-one pushes
		// instead of winning as a natural would.
		require.NoError(t, round.DealerStep())
		require.NoError(t, round.DealerStep())
		require.NoError(t, round.Settle())

		assert.Equal(t, HandResultPush, round.Hands[0].Result)
		assert.Equal(t, 100, round.Hands[0].Payout)
	})

	t.Run("unequal cards refuse to split", func(t *testing.T) {
		round := dealStacked(t, 50, "8s", "6h", "9d", "10c")

		assert.False(t, round.CanSplit(0))
		assert.Error(t, round.Split(0))
		assert.Len(t, round.Hands, 1)
	})
}

func TestRoundDealerShortCircuit(t *testing.T) {
	round := dealStacked(t, 100, "10s", "6h", "6d", "10c", "Kh")

	require.NoError(t, round.Hit(0))
	require.True(t, round.Hands[0].Busted)
	require.Equal(t, RoundPhase_DealerTurn, round.Phase)

	// The dealer reveals 16 and stands without drawing: every player hand
	// already busted.
	require.NoError(t, round.DealerStep())
	assert.Equal(t, RoundPhase_SettlingHands, round.Phase)
	assert.Len(t, round.Dealer.Cards, 2)
	assert.Equal(t, 16, round.Dealer.Total)
}

func TestRoundIllegalActions(t *testing.T) {
	t.Run("player actions outside the player turn", func(t *testing.T) {
		round := stackedRound("10s", "6h", "9d", "10c")
		require.NoError(t, round.AddToBetCircle(100))

		assert.Error(t, round.Hit(0))
		assert.Error(t, round.Stay(0))
		assert.Error(t, round.Double(0))
		assert.Error(t, round.Split(0))
		assert.Error(t, round.DealerStep())
	})

	t.Run("acting on the wrong hand", func(t *testing.T) {
		round := dealStacked(t, 100, "10s", "6h", "9d", "10c")

		assert.Error(t, round.Hit(1))
		assert.Error(t, round.Stay(-1))
	})

	t.Run("chips after the deal", func(t *testing.T) {
		round := dealStacked(t, 100, "10s", "6h", "9d", "10c")

		assert.Error(t, round.AddToBetCircle(50))
		_, err := round.ClearBetCircle(true)
		assert.Error(t, err)
		assert.Equal(t, 100, round.BetCircle)
	})
}

func TestRoundLifecycle(t *testing.T) {
	round := dealStacked(t, 100, "10s", "6h", "9d", "10c", "Kd")

	require.NoError(t, round.Stay(0))
	require.NoError(t, round.DealerStep())
	require.NoError(t, round.DealerStep())
	require.Equal(t, RoundPhase_SettlingHands, round.Phase)

	require.NoError(t, round.Settle())
	assert.Equal(t, RoundPhase_Results, round.Phase)
	assert.True(t, round.Dealer.Busted)
	assert.Equal(t, 200, round.TotalPayout())

	require.NoError(t, round.CompleteResults())
	assert.Equal(t, RoundPhase_PostRound, round.Phase)

	require.NoError(t, round.Finish())
	assert.Equal(t, RoundPhase_EndRound, round.Phase)
	assert.Empty(t, round.Hands)
	assert.Equal(t, 0, round.BetCircle)
}

func TestRoundAbandon(t *testing.T) {
	t.Run("before the dealer turn", func(t *testing.T) {
		round := dealStacked(t, 100, "10s", "6h", "9d", "10c")

		amount, err := round.Abandon(true)
		require.NoError(t, err)
		assert.Equal(t, 100, amount)
		assert.Equal(t, RoundPhase_EndRound, round.Phase)
		assert.Empty(t, round.Hands)
	})

	t.Run("too late once the dealer plays", func(t *testing.T) {
		round := dealStacked(t, 100, "10s", "6h", "9d", "10c")
		require.NoError(t, round.Stay(0))

		_, err := round.Abandon(true)
		assert.Error(t, err)
	})
}
