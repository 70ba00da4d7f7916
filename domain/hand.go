package domain

import (
	"github.com/google/uuid"
	"github.com/playtwentyone/blackjacksrv/cards"
)

type HandStatus string

const (
	HandStatusPlaying HandStatus = "playing"
	HandStatusDone    HandStatus = "done"
)

type HandResult string

const (
	HandResultNone HandResult = ""
	HandResultWin  HandResult = "win"
	HandResultLose HandResult = "lose"
	HandResultPush HandResult = "push"
)

// Hand represents one player hand in a round. A round starts with a single
// hand; splits insert more. Once settled a hand is never mutated again.
type Hand struct {
	ID        string
	Cards     cards.Stack
	Bet       int
	Status    HandStatus
	Result    HandResult
	Blackjack bool
	Doubled   bool
	Busted    bool
	FromSplit bool
	Total     int
	Totals    []int
	Payout    int
}

func newHand(bet int) Hand {
	return Hand{
		ID:     uuid.NewString(),
		Cards:  cards.Stack{},
		Bet:    bet,
		Status: HandStatusPlaying,
	}
}

// DealerHand represents the dealer's cards. The second card is dealt face
// down and stays hidden until the dealer turn (or a dealer natural).
type DealerHand struct {
	Cards     cards.Stack
	Status    HandStatus
	Blackjack bool
	Busted    bool
	Total     int
	Totals    []int
}

// DisplayTotal is the total computed only from face-up cards, so a
// presentation layer never leaks the hole card.
func (d DealerHand) DisplayTotal() int {
	total, _ := ComputeTotals(d.Cards.FaceUp())
	return total
}

// Revealed reports whether every dealer card is face up.
func (d DealerHand) Revealed() bool {
	for _, c := range d.Cards {
		if c.FaceDown {
			return false
		}
	}
	return true
}
