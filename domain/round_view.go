package domain

import "github.com/playtwentyone/blackjacksrv/cards"

// RoundView is the snapshot handed to a presentation layer after every
// engine call. The dealer's hole card is redacted here, so a renderer can
// never show hidden information by accident.
type RoundView struct {
	TableID           string     `json:"tableId"`
	RoundID           string     `json:"roundId"`
	Phase             RoundPhase `json:"phase"`
	Hands             []HandView `json:"hands"`
	Dealer            DealerView `json:"dealer"`
	BetCircle         int        `json:"betCircle"`
	SelectedHandIndex int        `json:"selectedHandIndex"`
	RunningCount      int        `json:"runningCount"`
	TrueCount         int        `json:"trueCount"`
	CardsRemaining    int        `json:"cardsRemaining"`
}

type HandView struct {
	ID        string     `json:"id"`
	Cards     []CardView `json:"cards"`
	Bet       int        `json:"bet"`
	Status    HandStatus `json:"status"`
	Result    HandResult `json:"result,omitempty"`
	Blackjack bool       `json:"blackjack"`
	Doubled   bool       `json:"doubled"`
	Busted    bool       `json:"busted"`
	Total     int        `json:"total"`
	Totals    []int      `json:"totals"`
	Payout    int        `json:"payout"`
}

type DealerView struct {
	Cards        []CardView `json:"cards"`
	Status       HandStatus `json:"status"`
	Blackjack    bool       `json:"blackjack"`
	Busted       bool       `json:"busted"`
	DisplayTotal int        `json:"displayTotal"`
	Revealed     bool       `json:"revealed"`
}

type CardView struct {
	ID       string `json:"id"`
	Suit     string `json:"suit,omitempty"`
	Value    string `json:"value,omitempty"`
	FaceDown bool   `json:"faceDown"`
}

func cardView(c cards.Card, redact bool) CardView {
	view := CardView{ID: c.ID, FaceDown: c.FaceDown}
	if c.FaceDown && redact {
		return view
	}
	view.Suit = string(c.Suit)
	view.Value = string(c.Value)
	return view
}

// BuildView constructs the presentation snapshot for the table's current
// round.
func (t *Table) BuildView() RoundView {
	view := RoundView{
		TableID:        t.ID,
		Phase:          RoundPhase_None,
		Hands:          []HandView{},
		RunningCount:   t.RunningCount(),
		TrueCount:      t.TrueCount(),
		CardsRemaining: t.shoe.Remaining(),
	}

	round := t.Round
	if round == nil {
		return view
	}

	view.RoundID = round.ID
	view.Phase = round.Phase
	view.BetCircle = round.BetCircle
	view.SelectedHandIndex = round.SelectedHandIndex

	for _, hand := range round.Hands {
		handView := HandView{
			ID:        hand.ID,
			Cards:     make([]CardView, 0, len(hand.Cards)),
			Bet:       hand.Bet,
			Status:    hand.Status,
			Result:    hand.Result,
			Blackjack: hand.Blackjack,
			Doubled:   hand.Doubled,
			Busted:    hand.Busted,
			Total:     hand.Total,
			Totals:    hand.Totals,
			Payout:    hand.Payout,
		}
		for _, c := range hand.Cards {
			handView.Cards = append(handView.Cards, cardView(c, false))
		}
		view.Hands = append(view.Hands, handView)
	}

	dealer := round.Dealer
	dealerView := DealerView{
		Cards:        make([]CardView, 0, len(dealer.Cards)),
		Status:       dealer.Status,
		Busted:       dealer.Busted,
		DisplayTotal: dealer.DisplayTotal(),
		Revealed:     dealer.Revealed(),
	}
	// The dealer's natural only becomes visible once the hole card is up.
	if dealerView.Revealed {
		dealerView.Blackjack = dealer.Blackjack
	}
	for _, c := range dealer.Cards {
		dealerView.Cards = append(dealerView.Cards, cardView(c, true))
	}
	view.Dealer = dealerView

	return view
}
