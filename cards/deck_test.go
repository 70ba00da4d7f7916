package cards

import (
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck52()

	if len(deck) != 52 {
		t.Errorf("Expected deck to have 52 cards, got %d", len(deck))
	}
}

func TestShuffleCards(t *testing.T) {
	originalDeck := NewDeck52()
	shuffledDeck := ShuffleCards(originalDeck)

	// Check same length
	if len(shuffledDeck) != len(originalDeck) {
		t.Errorf("Shuffled deck length %d does not match original deck length %d",
			len(shuffledDeck), len(originalDeck))
	}

	// Check that cards are shuffled (this is probabilistic but very likely)
	differences := 0
	for i := 0; i < len(originalDeck); i++ {
		if shuffledDeck[i] != originalDeck[i] {
			differences++
		}
	}

	if differences == 0 {
		t.Error("Shuffled deck is identical to original deck")
	}
}
