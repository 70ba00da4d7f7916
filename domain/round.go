package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/playtwentyone/blackjacksrv/cards"
	"github.com/playtwentyone/blackjacksrv/domain/events"
)

type RoundPhase string

const (
	RoundPhase_None          RoundPhase = "none"
	RoundPhase_PreDeal       RoundPhase = "preDeal"
	RoundPhase_Dealing       RoundPhase = "dealing"
	RoundPhase_PlayerTurn    RoundPhase = "playerTurn"
	RoundPhase_DealerTurn    RoundPhase = "dealerTurn"
	RoundPhase_SettlingHands RoundPhase = "settlingHands"
	RoundPhase_Results       RoundPhase = "results"
	RoundPhase_PostRound     RoundPhase = "postRound"
	RoundPhase_EndRound      RoundPhase = "endRound"
)

const (
	SeatPlayer = "player"
	SeatDealer = "dealer"
)

// drawFunc hands the round its next card. The table injects it so that shoe
// exhaustion is recovered (rebuild and retry) outside the round; the round
// itself holds no reshuffle policy.
type drawFunc func() (cards.Card, error)

// Round represents one round of blackjack being played at a table. It owns
// its hands and dealer hand exclusively and advances through the phase
// sequence preDeal, dealing, playerTurn, dealerTurn, settlingHands, results,
// postRound, endRound. Phase guards make every operation a no-op error
// outside its window, so a stale caller cannot corrupt the round.
type Round struct {
	ID                string
	TableID           string
	PlayerID          string
	Phase             RoundPhase
	Hands             []Hand
	Dealer            DealerHand
	BetCircle         int
	SelectedHandIndex int
	StartedAt         time.Time

	draw drawFunc

	// events
	Events        []events.Event
	eventHandlers []events.EventHandler
}

func newRound(tableID, playerID string, draw drawFunc) *Round {
	return &Round{
		ID:        uuid.NewString(),
		TableID:   tableID,
		PlayerID:  playerID,
		Phase:     RoundPhase_PreDeal,
		Hands:     []Hand{},
		Dealer:    DealerHand{Cards: cards.Stack{}},
		StartedAt: time.Now(),
		draw:      draw,
	}
}

// RegisterEventHandler registers a callback function that will be called when events occur
func (r *Round) RegisterEventHandler(handler events.EventHandler) {
	r.eventHandlers = append(r.eventHandlers, handler)
}

// emitEvent notifies all registered handlers of a new event
func (r *Round) emitEvent(event events.Event) {
	r.Events = append(r.Events, event)

	for _, handler := range r.eventHandlers {
		handler(event)
	}
}

func (r *Round) transitionTo(phase RoundPhase) {
	previous := r.Phase
	r.Phase = phase

	r.emitEvent(events.PhaseChanged{
		TableID:       r.TableID,
		RoundID:       r.ID,
		PreviousPhase: string(previous),
		NewPhase:      string(phase),
		At:            time.Now(),
	})
}

// IsInPhase checks the current phase of the round
func (r *Round) IsInPhase(phase RoundPhase) bool {
	return r.Phase == phase
}

// AddToBetCircle moves chips into the bet circle before the deal. The credit
// deduction happened on the caller's side when the chip was placed.
func (r *Round) AddToBetCircle(amount int) error {
	if !r.IsInPhase(RoundPhase_PreDeal) {
		return errors.New("can only place chips before the deal")
	}
	if amount <= 0 {
		return errors.New("chip amount must be positive")
	}

	r.BetCircle += amount

	r.emitEvent(events.BetPlaced{
		TableID:   r.TableID,
		RoundID:   r.ID,
		Amount:    amount,
		BetCircle: r.BetCircle,
		At:        time.Now(),
	})

	return nil
}

// ClearBetCircle empties the bet circle before the deal and returns the
// amount that was in it. Whether the caller refunds it is caller policy.
func (r *Round) ClearBetCircle(refunded bool) (int, error) {
	if !r.IsInPhase(RoundPhase_PreDeal) {
		return 0, errors.New("can only clear the bet before the deal")
	}

	amount := r.BetCircle
	r.BetCircle = 0

	r.emitEvent(events.BetCleared{
		TableID:  r.TableID,
		RoundID:  r.ID,
		Amount:   amount,
		Refunded: refunded,
		At:       time.Now(),
	})

	return amount, nil
}

// Deal starts the round over the accumulated bet circle. Draw order is
// player, dealer up card, player, dealer hole card. Naturals resolve here:
// a dealer natural reveals the hole card and settles the player hand on the
// spot; a player natural ends the player turn before it begins.
func (r *Round) Deal() error {
	if !r.IsInPhase(RoundPhase_PreDeal) {
		return errors.New("can only deal from the pre-deal phase")
	}
	if r.BetCircle <= 0 {
		return errors.New("cannot deal without a bet")
	}

	r.transitionTo(RoundPhase_Dealing)

	r.emitEvent(events.RoundStarted{
		TableID:  r.TableID,
		RoundID:  r.ID,
		PlayerID: r.PlayerID,
		Bet:      r.BetCircle,
		At:       time.Now(),
	})

	hand := newHand(r.BetCircle)

	first, err := r.draw()
	if err != nil {
		return err
	}
	hand.Cards = append(hand.Cards, first)
	r.emitCardDealt(SeatPlayer, 0, first, false)

	up, err := r.draw()
	if err != nil {
		return err
	}
	r.Dealer.Cards = append(r.Dealer.Cards, up)
	r.emitCardDealt(SeatDealer, 0, up, false)

	second, err := r.draw()
	if err != nil {
		return err
	}
	hand.Cards = append(hand.Cards, second)
	r.emitCardDealt(SeatPlayer, 0, second, false)

	hole, err := r.draw()
	if err != nil {
		return err
	}
	hole.FaceDown = true
	r.Dealer.Cards = append(r.Dealer.Cards, hole)
	r.emitCardDealt(SeatDealer, 0, hole, true)

	hand.evaluate()
	r.Dealer.Status = HandStatusPlaying
	r.Dealer.Total, r.Dealer.Totals = ComputeTotals(r.Dealer.Cards)

	// The natural check uses both dealer cards even though the hole card is
	// not shown yet.
	if IsNatural(r.Dealer.Cards) {
		r.Dealer.Blackjack = true
		r.Dealer.Status = HandStatusDone
		r.revealHoleCard()

		hand.Status = HandStatusDone
		if hand.Blackjack {
			hand.Result = HandResultPush
		} else {
			hand.Result = HandResultLose
		}
		r.Hands = []Hand{hand}
		r.SelectedHandIndex = 0
		r.transitionTo(RoundPhase_SettlingHands)
		return nil
	}

	r.Hands = []Hand{hand}
	r.SelectedHandIndex = 0

	// A player natural offers no further action; play moves straight to the
	// dealer.
	if hand.Status == HandStatusDone {
		r.transitionTo(RoundPhase_DealerTurn)
		return nil
	}

	r.transitionTo(RoundPhase_PlayerTurn)
	return nil
}

func (r *Round) emitCardDealt(seat string, handIndex int, card cards.Card, faceDown bool) {
	r.emitEvent(events.CardDealt{
		TableID:   r.TableID,
		RoundID:   r.ID,
		Seat:      seat,
		HandIndex: handIndex,
		Card:      card,
		FaceDown:  faceDown,
		At:        time.Now(),
	})
}

// selectedHand validates that an action targets the hand whose turn it is.
func (r *Round) selectedHand(handIndex int) (*Hand, error) {
	if !r.IsInPhase(RoundPhase_PlayerTurn) {
		return nil, errors.New("not in the player turn phase")
	}
	if handIndex != r.SelectedHandIndex {
		return nil, errors.New("not this hand's turn")
	}
	if handIndex < 0 || handIndex >= len(r.Hands) {
		return nil, errors.New("no such hand")
	}
	hand := &r.Hands[handIndex]
	if hand.Status != HandStatusPlaying {
		return nil, errors.New("hand is no longer playing")
	}
	return hand, nil
}

// Hit draws one card for the selected hand. Busting or reaching 21 ends the
// hand and advances the turn.
func (r *Round) Hit(handIndex int) error {
	hand, err := r.selectedHand(handIndex)
	if err != nil {
		return err
	}

	card, err := r.draw()
	if err != nil {
		return err
	}
	hand.Cards = append(hand.Cards, card)
	r.emitCardDealt(SeatPlayer, handIndex, card, false)

	hand.evaluate()

	r.emitEvent(events.PlayerHit{
		TableID:   r.TableID,
		RoundID:   r.ID,
		HandIndex: handIndex,
		Total:     hand.Total,
		Busted:    hand.Busted,
		At:        time.Now(),
	})

	if hand.Status == HandStatusDone {
		r.advanceTurn()
	}
	return nil
}

// Stay ends the selected hand's turn with no draw.
func (r *Round) Stay(handIndex int) error {
	hand, err := r.selectedHand(handIndex)
	if err != nil {
		return err
	}

	hand.Status = HandStatusDone

	r.emitEvent(events.PlayerStood{
		TableID:   r.TableID,
		RoundID:   r.ID,
		HandIndex: handIndex,
		Total:     hand.Total,
		At:        time.Now(),
	})

	r.advanceTurn()
	return nil
}

// Double draws exactly one card, doubles the bet, and ends the hand whatever
// the total. The extra bet was already debited by the caller.
func (r *Round) Double(handIndex int) error {
	hand, err := r.selectedHand(handIndex)
	if err != nil {
		return err
	}

	card, err := r.draw()
	if err != nil {
		return err
	}
	hand.Cards = append(hand.Cards, card)
	r.emitCardDealt(SeatPlayer, handIndex, card, false)

	hand.Bet *= 2
	hand.Doubled = true
	hand.evaluate()
	hand.Status = HandStatusDone
	r.refreshBetCircle()

	r.emitEvent(events.PlayerDoubled{
		TableID:   r.TableID,
		RoundID:   r.ID,
		HandIndex: handIndex,
		NewBet:    hand.Bet,
		Total:     hand.Total,
		Busted:    hand.Busted,
		At:        time.Now(),
	})

	r.advanceTurn()
	return nil
}

// CanSplit reports whether the hand holds exactly two cards of equal
// rank-value, the only structural precondition for a split.
func (r *Round) CanSplit(handIndex int) bool {
	if handIndex < 0 || handIndex >= len(r.Hands) {
		return false
	}
	hand := r.Hands[handIndex]
	return len(hand.Cards) == 2 &&
		hand.Cards[0].Value.Points() == hand.Cards[1].Value.Points()
}

// Split replaces the selected hand with two hands, one original card plus a
// fresh draw each, both carrying the original bet. Split hands are two bets
// of the original size, not a doubled one, and neither can ever be a
// natural: a post-split two-card 21 stands and is settled as a plain win.
func (r *Round) Split(handIndex int) error {
	hand, err := r.selectedHand(handIndex)
	if err != nil {
		return err
	}
	if !r.CanSplit(handIndex) {
		return errors.New("can only split two cards of equal value")
	}

	bet := hand.Bet
	left := newHand(bet)
	left.FromSplit = true
	left.Cards = append(left.Cards, hand.Cards[0])

	right := newHand(bet)
	right.FromSplit = true
	right.Cards = append(right.Cards, hand.Cards[1])

	r.emitEvent(events.HandSplit{
		TableID:   r.TableID,
		RoundID:   r.ID,
		HandIndex: handIndex,
		Bet:       bet,
		At:        time.Now(),
	})

	cardA, err := r.draw()
	if err != nil {
		return err
	}
	left.Cards = append(left.Cards, cardA)
	r.emitCardDealt(SeatPlayer, handIndex, cardA, false)

	cardB, err := r.draw()
	if err != nil {
		return err
	}
	right.Cards = append(right.Cards, cardB)
	r.emitCardDealt(SeatPlayer, handIndex+1, cardB, false)

	left.evaluate()
	right.evaluate()

	// Splice the two hands in where the original sat, preserving the index
	// order of any other hands around the split point.
	replaced := make([]Hand, 0, len(r.Hands)+1)
	replaced = append(replaced, r.Hands[:handIndex]...)
	replaced = append(replaced, left, right)
	replaced = append(replaced, r.Hands[handIndex+1:]...)
	r.Hands = replaced

	r.refreshBetCircle()

	// A split hand can land on 21 straight away and be done before it is
	// ever selected.
	if r.Hands[r.SelectedHandIndex].Status != HandStatusPlaying {
		r.advanceTurn()
	}
	return nil
}

func (r *Round) refreshBetCircle() {
	total := 0
	for _, h := range r.Hands {
		total += h.Bet
	}
	r.BetCircle = total
}

// advanceTurn selects the next hand still playing, in index order, or moves
// the round to the dealer turn when none remain.
func (r *Round) advanceTurn() {
	for i := range r.Hands {
		if r.Hands[i].Status == HandStatusPlaying {
			r.SelectedHandIndex = i
			r.emitEvent(events.TurnAdvanced{
				TableID:   r.TableID,
				RoundID:   r.ID,
				HandIndex: i,
				At:        time.Now(),
			})
			return
		}
	}

	r.SelectedHandIndex = 0
	r.transitionTo(RoundPhase_DealerTurn)
}

// PlayerAllBusted reports whether every player hand busted.
func (r *Round) PlayerAllBusted() bool {
	for _, h := range r.Hands {
		if !h.Busted {
			return false
		}
	}
	return len(r.Hands) > 0
}

func (r *Round) revealHoleCard() {
	for i := range r.Dealer.Cards {
		if r.Dealer.Cards[i].FaceDown {
			r.Dealer.Cards[i].FaceDown = false
			r.emitEvent(events.DealerHoleCardRevealed{
				TableID: r.TableID,
				RoundID: r.ID,
				Card:    r.Dealer.Cards[i],
				At:      time.Now(),
			})
		}
	}
}

// DealerStep advances the dealer's automatic play by at most one draw, so a
// driver can pace the draws for animation. The first call reveals the hole
// card and lets the dealer stand pat (17 or better, or nothing left to
// beat); later calls draw one card each until the dealer is done, which
// moves the round to settlement. Calling it in a tight loop is equivalent.
func (r *Round) DealerStep() error {
	if !r.IsInPhase(RoundPhase_DealerTurn) {
		return errors.New("not in the dealer turn phase")
	}

	if !r.Dealer.Revealed() {
		r.revealHoleCard()
		r.Dealer.evaluate(r.PlayerAllBusted())
		if r.Dealer.Status == HandStatusDone {
			r.transitionTo(RoundPhase_SettlingHands)
		}
		return nil
	}

	if r.Dealer.Status == HandStatusDone {
		r.transitionTo(RoundPhase_SettlingHands)
		return nil
	}

	card, err := r.draw()
	if err != nil {
		return err
	}
	r.Dealer.Cards = append(r.Dealer.Cards, card)
	r.emitCardDealt(SeatDealer, 0, card, false)

	r.Dealer.evaluate(r.PlayerAllBusted())

	r.emitEvent(events.DealerDrew{
		TableID: r.TableID,
		RoundID: r.ID,
		Total:   r.Dealer.Total,
		Busted:  r.Dealer.Busted,
		At:      time.Now(),
	})

	if r.Dealer.Status == HandStatusDone {
		r.transitionTo(RoundPhase_SettlingHands)
	}
	return nil
}

// Settle resolves every hand against the final dealer hand and moves the
// round to results.
func (r *Round) Settle() error {
	if !r.IsInPhase(RoundPhase_SettlingHands) {
		return errors.New("not in the settling phase")
	}

	for i := range r.Hands {
		r.Hands[i].settle(r.Dealer)
		r.emitEvent(events.HandSettled{
			TableID:   r.TableID,
			RoundID:   r.ID,
			HandIndex: i,
			Result:    string(r.Hands[i].Result),
			Blackjack: r.Hands[i].Blackjack,
			Bet:       r.Hands[i].Bet,
			Payout:    r.Hands[i].Payout,
			At:        time.Now(),
		})
	}

	r.transitionTo(RoundPhase_Results)
	return nil
}

// TotalPayout sums the settled payouts owed back to the player.
func (r *Round) TotalPayout() int {
	total := 0
	for _, h := range r.Hands {
		total += h.Payout
	}
	return total
}

// CompleteResults acknowledges that payouts were credited and parks the
// round in the post-round phase.
func (r *Round) CompleteResults() error {
	if !r.IsInPhase(RoundPhase_Results) {
		return errors.New("not in the results phase")
	}
	r.transitionTo(RoundPhase_PostRound)
	return nil
}

// Finish clears the table after the player acknowledges the results. The
// round ends here; the table starts a fresh one (reshuffling first if the
// cut card was crossed).
func (r *Round) Finish() error {
	if !r.IsInPhase(RoundPhase_PostRound) {
		return errors.New("not in the post-round phase")
	}

	payout := r.TotalPayout()
	r.Hands = []Hand{}
	r.Dealer = DealerHand{Cards: cards.Stack{}}
	r.BetCircle = 0
	r.SelectedHandIndex = 0
	r.transitionTo(RoundPhase_EndRound)

	r.emitEvent(events.RoundEnded{
		TableID:     r.TableID,
		RoundID:     r.ID,
		TotalPayout: payout,
		At:          time.Now(),
	})
	return nil
}

// Abandon cancels a round that has not reached the dealer turn. It returns
// the amount left in the bet circle; refund versus forfeit is caller policy.
func (r *Round) Abandon(refunded bool) (int, error) {
	switch r.Phase {
	case RoundPhase_PreDeal, RoundPhase_Dealing, RoundPhase_PlayerTurn:
	default:
		return 0, errors.New("round can no longer be abandoned")
	}

	amount := r.BetCircle
	r.Hands = []Hand{}
	r.Dealer = DealerHand{Cards: cards.Stack{}}
	r.BetCircle = 0
	r.SelectedHandIndex = 0
	r.transitionTo(RoundPhase_EndRound)

	r.emitEvent(events.RoundAbandoned{
		TableID:  r.TableID,
		RoundID:  r.ID,
		Refunded: refunded,
		Amount:   amount,
		At:       time.Now(),
	})
	return amount, nil
}
