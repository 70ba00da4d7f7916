package domain

import "github.com/playtwentyone/blackjacksrv/cards"

// ComputeTotals returns the best valid total for a set of cards and every
// valid total in descending order, resolving each ace as 1 or 11. With k of
// the aces counted high the total is base + aces + 10k, so one pass over
// k = aces..0 enumerates all combinations. Totals over 21 are discarded;
// when every combination busts, only the minimal busting total survives.
// An empty hand totals zero.
func ComputeTotals(stack cards.Stack) (int, []int) {
	base, aces := 0, 0
	for _, c := range stack {
		if c.Value == cards.Ace {
			aces++
		} else {
			base += c.Value.Points()
		}
	}

	var totals []int
	for k := aces; k >= 0; k-- {
		t := base + aces + 10*k
		if t <= 21 {
			totals = append(totals, t)
		}
	}

	if len(totals) == 0 {
		// base + aces is the all-aces-low minimum.
		return base + aces, []int{base + aces}
	}
	return totals[0], totals
}

// HasTwentyOne reports whether 21 is among the valid totals.
func HasTwentyOne(totals []int) bool {
	for _, t := range totals {
		if t == 21 {
			return true
		}
	}
	return false
}

// IsNatural reports whether a hand is a natural blackjack: exactly two cards,
// one ace plus one ten-value card. Reaching 21 any other way is just 21.
func IsNatural(stack cards.Stack) bool {
	if len(stack) != 2 {
		return false
	}
	hasAce := stack[0].Value == cards.Ace || stack[1].Value == cards.Ace
	hasTen := (stack[0].Value != cards.Ace && stack[0].Value.Points() == 10) ||
		(stack[1].Value != cards.Ace && stack[1].Value.Points() == 10)
	return hasAce && hasTen
}

// evaluate recomputes the hand's totals and moves its status forward:
// bust ends the hand as a loss, a two-card 21 on a non-split hand is a
// natural, any other 21 stands automatically, everything else keeps playing.
// Hands created by a split can never become naturals, whatever they draw.
func (h *Hand) evaluate() {
	h.Total, h.Totals = ComputeTotals(h.Cards)

	switch {
	case h.Total > 21:
		h.Busted = true
		h.Status = HandStatusDone
		h.Result = HandResultLose
	case HasTwentyOne(h.Totals) && len(h.Cards) == 2 && !h.FromSplit:
		h.Blackjack = true
		h.Status = HandStatusDone
	case HasTwentyOne(h.Totals):
		h.Status = HandStatusDone
	default:
		h.Status = HandStatusPlaying
	}
}

// evaluate moves the dealer hand's status forward. When every player hand is
// already busted the dealer stands immediately without drawing; the house
// does not play out a hand nobody can beat. Otherwise the dealer stands on
// any total of 17 or more, soft 17 included.
func (d *DealerHand) evaluate(playerAllBusted bool) {
	d.Total, d.Totals = ComputeTotals(d.Cards)

	switch {
	case playerAllBusted:
		d.Status = HandStatusDone
	case d.Total > 21:
		d.Busted = true
		d.Status = HandStatusDone
	case d.Total >= 17:
		d.Status = HandStatusDone
	default:
		d.Status = HandStatusPlaying
	}
}

// settle fills in the hand's result against the final dealer hand and
// recomputes the payout. A result decided earlier (dealer natural at deal
// time) is left untouched, so settling twice changes nothing.
func (h *Hand) settle(dealer DealerHand) {
	if h.Result == HandResultNone {
		switch {
		case h.Busted:
			h.Result = HandResultLose
		case h.Blackjack:
			h.Result = HandResultWin
		case dealer.Busted:
			h.Result = HandResultWin
		case h.Total > dealer.Total:
			h.Result = HandResultWin
		case h.Total == dealer.Total:
			h.Result = HandResultPush
		default:
			h.Result = HandResultLose
		}
	}

	h.Payout = payoutFor(h.Result, h.Blackjack, h.Bet)
	h.Status = HandStatusDone
}

// payoutFor returns the total amount returned to the player, not a delta:
// the original bet was taken when it entered the circle. Naturals pay 3:2.
func payoutFor(result HandResult, blackjack bool, bet int) int {
	switch result {
	case HandResultWin:
		if blackjack {
			return bet * 5 / 2
		}
		return bet * 2
	case HandResultPush:
		return bet
	default:
		return 0
	}
}
