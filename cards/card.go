package cards

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CardFromString creates a card from a string representation
// e.g., "10♠" or "10s" or "10S" -> Card{Suit: Spades, Value: Ten}
// e.g., "X" -> the cut marker
func CardFromString(s string) (Card, error) {
	if s == "X" {
		return CutCard(), nil
	}

	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card shorthand: %s", s)
	}

	// The suit symbols are multi-byte runes, so the suit is the last rune,
	// not the last byte.
	suitRune, suitLen := utf8.DecodeLastRuneInString(s)

	var suit Suit
	switch string(suitRune) {
	case "♠", "s", "S":
		suit = Spades
	case "♥", "h", "H":
		suit = Hearts
	case "♦", "d", "D":
		suit = Diamonds
	case "♣", "c", "C":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid card suit: %s", string(suitRune))
	}

	var value Value
	switch s[:len(s)-suitLen] {
	case "A":
		value = Ace
	case "K":
		value = King
	case "Q":
		value = Queen
	case "J":
		value = Jack
	case "10":
		value = Ten
	case "9":
		value = Nine
	case "8":
		value = Eight
	case "7":
		value = Seven
	case "6":
		value = Six
	case "5":
		value = Five
	case "4":
		value = Four
	case "3":
		value = Three
	case "2":
		value = Two
	default:
		return Card{}, fmt.Errorf("invalid card value: %s", s[:len(s)-1])
	}

	return NewCard(suit, value), nil
}

// MustCard creates a card from its string representation and panics on bad
// input. Intended for tests and stacked shoes.
func MustCard(s string) Card {
	card, err := CardFromString(s)
	if err != nil {
		panic(err)
	}
	return card
}

// Suit represents a card suit
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Value represents a card value
type Value string

const (
	Ace   Value = "A"
	King  Value = "K"
	Queen Value = "Q"
	Jack  Value = "J"
	Ten   Value = "10"
	Nine  Value = "9"
	Eight Value = "8"
	Seven Value = "7"
	Six   Value = "6"
	Five  Value = "5"
	Four  Value = "4"
	Three Value = "3"
	Two   Value = "2"
)

// Points returns the blackjack point value of the card value, counting aces high.
func (v Value) Points() int {
	switch v {
	case Ace:
		return 11
	case King, Queen, Jack, Ten:
		return 10
	case Nine:
		return 9
	case Eight:
		return 8
	case Seven:
		return 7
	case Six:
		return 6
	case Five:
		return 5
	case Four:
		return 4
	case Three:
		return 3
	case Two:
		return 2
	default:
		return 0
	}
}

// LowPoints returns the blackjack point value counting aces as one.
func (v Value) LowPoints() int {
	if v == Ace {
		return 1
	}
	return v.Points()
}

// CountTag returns the high-low card counting tag for the value:
// +1 for 2-6, 0 for 7-9, -1 for tens and aces.
func (v Value) CountTag() int {
	switch v {
	case Two, Three, Four, Five, Six:
		return 1
	case Seven, Eight, Nine:
		return 0
	case Ten, Jack, Queen, King, Ace:
		return -1
	default:
		return 0
	}
}

// Card represents a playing card
type Card struct {
	ID       string
	Suit     Suit
	Value    Value
	FaceDown bool
}

// NewCard creates a card with a fresh identity. The ID stays stable for the
// card's life in a shoe and hand, so played-card tracking can deduplicate.
func NewCard(suit Suit, value Value) Card {
	return Card{
		ID:    uuid.NewString(),
		Suit:  suit,
		Value: value,
	}
}

// String returns the string representation of a card
func (c Card) String() string {
	if c.IsCutCard() {
		return "X"
	}
	if c.FaceDown {
		return "??"
	}
	return fmt.Sprintf("%s%s", c.Value, c.Suit)
}

// IsCutCard checks if the card is the cut marker
func (c Card) IsCutCard() bool {
	return c.Suit == "" && c.Value == ""
}

// Equals checks if two cards have the same suit and value
func (c Card) Equals(other Card) bool {
	return c.Suit == other.Suit && c.Value == other.Value
}

// CutCard creates the cut marker spliced into a shoe. It is never playable.
func CutCard() Card {
	return Card{}
}
