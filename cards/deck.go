package cards

import (
	"math/rand"
	"time"
)

// NewDeck52 creates a standard deck of 52 cards
func NewDeck52() Stack {
	var deck Stack
	suits := []Suit{Spades, Hearts, Diamonds, Clubs}
	values := []Value{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

	for _, suit := range suits {
		for _, value := range values {
			deck = append(deck, NewCard(suit, value))
		}
	}

	return deck
}

// ShuffleCards shuffles a stack of cards randomly (Fisher-Yates)
func ShuffleCards(cards []Card) []Card {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)

	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}
