package cards

import (
	"errors"
	"math/rand"
	"time"
)

// ErrEmptyShoe is returned by Draw when no playable card is left. The caller
// is expected to rebuild the shoe and retry the draw; running out of cards
// mid-round must never surface as a crash.
var ErrEmptyShoe = errors.New("shoe is empty")

// Shoe represents the working sequence of cards a table draws from, built
// from one or more decks with an optional cut marker near the bottom.
type Shoe struct {
	cards   Stack
	cutSeen bool
}

// BuildShoe concatenates deckCount fresh 52-card decks, shuffles them, and if
// includeCutCard is set splices the cut marker in at a uniformly random index
// between 60% and 80% of the shoe's depth.
func BuildShoe(deckCount int, includeCutCard bool) *Shoe {
	if deckCount < 1 {
		deckCount = 1
	}

	var stack Stack
	for i := 0; i < deckCount; i++ {
		stack = append(stack, NewDeck52()...)
	}
	stack = ShuffleCards(stack)

	if includeCutCard {
		r := rand.New(rand.NewSource(time.Now().UnixNano()))
		// Rounding the lower bound up keeps the marker at or past 60% depth
		// even when the depth is not a multiple of ten.
		lo := (len(stack)*6 + 9) / 10
		hi := len(stack) * 8 / 10
		if hi <= lo {
			hi = lo + 1
		}
		idx := lo + r.Intn(hi-lo)

		stack = append(stack, Card{})
		copy(stack[idx+1:], stack[idx:])
		stack[idx] = CutCard()
	}

	return &Shoe{cards: stack}
}

// NewShoe wraps an explicit stack, top card first. Used by tests and stacked
// deals; BuildShoe is the playing constructor.
func NewShoe(stack Stack) *Shoe {
	return &Shoe{cards: stack.Clone()}
}

// Draw removes and returns the top card. The cut marker is never returned:
// crossing it latches CutCardSeen and drawing continues with the next card.
func (s *Shoe) Draw() (Card, error) {
	for len(s.cards) > 0 {
		card := s.cards[0]
		s.cards = s.cards[1:]
		if card.IsCutCard() {
			s.cutSeen = true
			continue
		}
		return card, nil
	}
	return Card{}, ErrEmptyShoe
}

// CutCardSeen reports whether a draw has crossed the cut marker. The marker is
// consumed when crossed, so the flag latches exactly once per shoe.
func (s *Shoe) CutCardSeen() bool {
	return s.cutSeen
}

// Size returns the number of entries left, including the cut marker.
func (s *Shoe) Size() int {
	return len(s.cards)
}

// Remaining returns the number of playable cards left.
func (s *Shoe) Remaining() int {
	n := len(s.cards)
	if s.CutCardIndex() >= 0 {
		n--
	}
	return n
}

// CutCardIndex returns the current position of the cut marker, or -1 if the
// shoe has none (never built with one, or already crossed).
func (s *Shoe) CutCardIndex() int {
	for i, c := range s.cards {
		if c.IsCutCard() {
			return i
		}
	}
	return -1
}

// DecksRemaining estimates how many decks are left, never less than one.
// Used as the true-count divisor.
func (s *Shoe) DecksRemaining() int {
	decks := (s.Remaining() + 25) / 52
	if decks < 1 {
		decks = 1
	}
	return decks
}
