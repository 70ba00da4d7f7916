package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildShoeIntegrity(t *testing.T) {
	for deckCount := 1; deckCount <= 5; deckCount++ {
		shoe := BuildShoe(deckCount, true)

		assert.Equal(t, 52*deckCount+1, shoe.Size(), "%d decks plus the cut marker", deckCount)
		assert.Equal(t, 52*deckCount, shoe.Remaining())

		idx := shoe.CutCardIndex()
		require.GreaterOrEqual(t, idx, 0, "exactly one cut marker is present")
		lo := (52*deckCount*6 + 9) / 10
		hi := 52 * deckCount * 8 / 10
		assert.GreaterOrEqual(t, idx, lo, "cut marker at or below 60%% depth")
		assert.Less(t, idx, hi, "cut marker above 80%% depth")

		// Every card from every deck appears exactly once.
		seen := map[string]int{}
		cut := 0
		for _, c := range shoe.cards {
			if c.IsCutCard() {
				cut++
				continue
			}
			seen[string(c.Value)+string(c.Suit)]++
		}
		assert.Equal(t, 1, cut)
		assert.Len(t, seen, 52)
		for key, n := range seen {
			assert.Equal(t, deckCount, n, "card %s appears once per deck", key)
		}
	}
}

func TestCutCardWindowLowerBound(t *testing.T) {
	// 60% of a 52-card shoe is 31.2, so index 31 sits above the window and
	// the marker may never land there. Repeated builds exercise the bound.
	for i := 0; i < 200; i++ {
		shoe := BuildShoe(1, true)
		idx := shoe.CutCardIndex()
		require.GreaterOrEqual(t, idx, 32)
		require.Less(t, idx, 41)
	}
}

func TestBuildShoeWithoutCutCard(t *testing.T) {
	shoe := BuildShoe(2, false)

	assert.Equal(t, 104, shoe.Size())
	assert.Equal(t, -1, shoe.CutCardIndex())
	assert.False(t, shoe.CutCardSeen())
}

func TestDrawSkipsCutCard(t *testing.T) {
	shoe := NewShoe(Stack{
		MustCard("5h"),
		CutCard(),
		MustCard("9c"),
	})

	card, err := shoe.Draw()
	require.NoError(t, err)
	assert.Equal(t, Five, card.Value)
	assert.False(t, shoe.CutCardSeen())

	// The next draw crosses the marker and still yields a playable card.
	card, err = shoe.Draw()
	require.NoError(t, err)
	assert.Equal(t, Nine, card.Value)
	assert.True(t, shoe.CutCardSeen())
	assert.Equal(t, 0, shoe.Size(), "marker is consumed when crossed")
}

func TestDrawEmptyShoe(t *testing.T) {
	shoe := NewShoe(Stack{MustCard("2d")})

	_, err := shoe.Draw()
	require.NoError(t, err)

	_, err = shoe.Draw()
	assert.ErrorIs(t, err, ErrEmptyShoe)
}

func TestDrawEmptyShoeAfterMarker(t *testing.T) {
	// Nothing left behind the marker: the flag still latches and the draw
	// reports exhaustion rather than handing out the marker.
	shoe := NewShoe(Stack{CutCard()})

	_, err := shoe.Draw()
	assert.ErrorIs(t, err, ErrEmptyShoe)
	assert.True(t, shoe.CutCardSeen())
}

func TestDrawConsumesWholeShoe(t *testing.T) {
	shoe := BuildShoe(1, true)

	drawn := 0
	for {
		_, err := shoe.Draw()
		if err != nil {
			break
		}
		drawn++
	}

	assert.Equal(t, 52, drawn, "every playable card comes out, never the marker")
	assert.True(t, shoe.CutCardSeen())
}

func TestDecksRemaining(t *testing.T) {
	shoe := BuildShoe(2, false)
	assert.Equal(t, 2, shoe.DecksRemaining())

	for i := 0; i < 100; i++ {
		_, err := shoe.Draw()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, shoe.DecksRemaining(), "estimate never drops below one deck")
}
