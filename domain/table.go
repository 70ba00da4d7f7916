package domain

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playtwentyone/blackjacksrv/cards"
	"github.com/playtwentyone/blackjacksrv/domain/events"
	"github.com/sanity-io/litter"
)

const (
	MinDeckCount = 1
	MaxDeckCount = 5
)

type TableStatus string

const (
	TableStatusWaiting TableStatus = "waiting"
	TableStatusPlaying TableStatus = "playing"
	TableStatusEnded   TableStatus = "ended"
)

// TableRules defines the configurable blackjack table rules
type TableRules struct {
	DeckCount      int
	IncludeCutCard bool
	MinBet         int
}

func (r TableRules) normalized() TableRules {
	if r.DeckCount < MinDeckCount {
		r.DeckCount = MinDeckCount
	}
	if r.DeckCount > MaxDeckCount {
		r.DeckCount = MaxDeckCount
	}
	if r.MinBet < 1 {
		r.MinBet = 1
	}
	return r
}

// Table represents a single-player blackjack table. It owns the shoe and the
// running count exclusively; the active round draws through the table so
// every exposure is counted once and shoe exhaustion is recovered in place.
type Table struct {
	ID     string
	Name   string
	Rules  TableRules
	Status TableStatus

	PlayerID   string
	PlayerName string

	Round *Round

	mu           sync.Mutex
	shoe         *cards.Shoe
	credits      CreditStore
	runningCount int

	// events
	Events        []events.Event
	eventHandlers []events.EventHandler

	// Debug dumps every event to stdout.
	Debug bool
}

// NewTable creates a table with a freshly built shoe.
func NewTable(name string, rules TableRules, credits CreditStore) *Table {
	table := &Table{
		ID:      uuid.NewString(),
		Name:    name,
		Rules:   rules.normalized(),
		Status:  TableStatusWaiting,
		credits: credits,
		Events:  []events.Event{},
	}
	table.shoe = cards.BuildShoe(table.Rules.DeckCount, table.Rules.IncludeCutCard)
	return table
}

// Lock takes the table's mutex. The table does not lock internally: every
// caller that can run concurrently with a paced dealer Driver, the command
// router and the HTTP read paths included, holds the lock across its whole
// read-modify-write of the table.
func (t *Table) Lock() {
	t.mu.Lock()
}

// Unlock releases the table's mutex.
func (t *Table) Unlock() {
	t.mu.Unlock()
}

// RegisterEventHandler adds an event handler to the table
func (t *Table) RegisterEventHandler(handler events.EventHandler) {
	t.eventHandlers = append(t.eventHandlers, handler)
}

// emitEvent notifies all registered handlers of a new event
func (t *Table) emitEvent(event events.Event) {
	t.Events = append(t.Events, event)

	if t.Debug {
		litter.D(event)
	}

	for _, handler := range t.eventHandlers {
		handler(event)
	}
}

// handleRoundEvent forwards round events to the table's handlers and keeps
// the running count: every card counts at the moment it turns face up, the
// hole card at reveal, never twice.
func (t *Table) handleRoundEvent(event events.Event) {
	switch e := event.(type) {
	case events.CardDealt:
		if !e.FaceDown {
			t.runningCount += e.Card.Value.CountTag()
		}
	case events.DealerHoleCardRevealed:
		t.runningCount += e.Card.Value.CountTag()
	}

	t.emitEvent(event)
}

// SeatPlayer seats the single player and opens the first round.
func (t *Table) SeatPlayer(playerID, playerName string) error {
	if playerID == "" {
		return ErrNotLoggedIn
	}
	if t.PlayerID != "" {
		return errors.New("table already has a player")
	}

	t.PlayerID = playerID
	t.PlayerName = playerName
	t.Status = TableStatusPlaying

	t.emitEvent(events.PlayerJoinedTable{
		TableID:  t.ID,
		PlayerID: playerID,
		At:       time.Now(),
	})

	t.startRound()
	return nil
}

func (t *Table) startRound() {
	round := newRound(t.ID, t.PlayerID, t.drawCard)
	round.RegisterEventHandler(t.handleRoundEvent)
	t.Round = round
}

// drawCard is the round's draw primitive. An exhausted shoe is rebuilt and
// the draw retried, so running out of cards mid-round never surfaces to the
// player. Crossing the cut marker is announced exactly once per shoe.
func (t *Table) drawCard() (cards.Card, error) {
	seen := t.shoe.CutCardSeen()

	card, err := t.shoe.Draw()
	if errors.Is(err, cards.ErrEmptyShoe) {
		t.rebuildShoe()
		card, err = t.shoe.Draw()
	}
	if err != nil {
		return cards.Card{}, err
	}

	if !seen && t.shoe.CutCardSeen() {
		roundID := ""
		if t.Round != nil {
			roundID = t.Round.ID
		}
		t.emitEvent(events.CutCardReached{
			TableID: t.ID,
			RoundID: roundID,
			At:      time.Now(),
		})
	}

	return card, nil
}

// rebuildShoe replaces the shoe wholesale and zeroes the running count.
func (t *Table) rebuildShoe() {
	t.shoe = cards.BuildShoe(t.Rules.DeckCount, t.Rules.IncludeCutCard)
	t.runningCount = 0

	t.emitEvent(events.ShoeRebuilt{
		TableID:   t.ID,
		DeckCount: t.Rules.DeckCount,
		Size:      t.shoe.Size(),
		At:        time.Now(),
	})
}

func (t *Table) requireRound() error {
	if t.PlayerID == "" {
		return ErrNotLoggedIn
	}
	if t.Round == nil {
		return errors.New("no active round")
	}
	return nil
}

// PlaceChip debits the player's credits and moves the amount into the bet
// circle. Chips move before the deal; the deal itself only consumes the
// accumulated circle.
func (t *Table) PlaceChip(amount int) error {
	if err := t.requireRound(); err != nil {
		return err
	}
	if !t.Round.IsInPhase(RoundPhase_PreDeal) {
		return errors.New("can only place chips before the deal")
	}
	if amount <= 0 {
		return errors.New("chip amount must be positive")
	}
	if amount < t.Rules.MinBet && t.Round.BetCircle == 0 {
		return errors.New("bet below table minimum")
	}

	balance, err := t.credits.Credits(t.PlayerID)
	if err != nil {
		return err
	}
	if balance < amount {
		return errors.New("insufficient credits")
	}

	if err := t.setCredits(balance - amount); err != nil {
		return err
	}
	return t.Round.AddToBetCircle(amount)
}

// ClearBet empties the bet circle before the deal and refunds it.
func (t *Table) ClearBet() error {
	if err := t.requireRound(); err != nil {
		return err
	}

	amount, err := t.Round.ClearBetCircle(true)
	if err != nil {
		return err
	}
	if amount > 0 {
		return t.refund(amount)
	}
	return nil
}

func (t *Table) refund(amount int) error {
	balance, err := t.credits.Credits(t.PlayerID)
	if err != nil {
		return err
	}
	return t.setCredits(balance + amount)
}

func (t *Table) setCredits(amount int) error {
	previous, err := t.credits.Credits(t.PlayerID)
	if err != nil {
		return err
	}
	if err := t.credits.SetCredits(t.PlayerID, amount); err != nil {
		return err
	}

	t.emitEvent(events.CreditsChanged{
		TableID:  t.ID,
		PlayerID: t.PlayerID,
		Credits:  amount,
		Delta:    amount - previous,
		At:       time.Now(),
	})
	return nil
}

// Deal starts the round over the bet circle. A dealer natural resolves and
// settles immediately; a player natural skips straight to the dealer turn.
func (t *Table) Deal() error {
	if err := t.requireRound(); err != nil {
		return err
	}
	if err := t.Round.Deal(); err != nil {
		return err
	}

	// Dealer natural: nothing left to play, settle on the spot.
	if t.Round.IsInPhase(RoundPhase_SettlingHands) {
		return t.SettleRound()
	}
	return nil
}

// Hit draws one card for the selected hand.
func (t *Table) Hit(handIndex int) error {
	if err := t.requireRound(); err != nil {
		return err
	}
	return t.Round.Hit(handIndex)
}

// Stay ends the selected hand's turn.
func (t *Table) Stay(handIndex int) error {
	if err := t.requireRound(); err != nil {
		return err
	}
	return t.Round.Stay(handIndex)
}

// Double doubles the selected hand's bet for exactly one more card. The
// extra bet is debited first and the action refused if credits fall short.
func (t *Table) Double(handIndex int) error {
	if err := t.requireRound(); err != nil {
		return err
	}
	hand, err := t.Round.selectedHand(handIndex)
	if err != nil {
		return err
	}

	if err := t.debitForAction(hand.Bet); err != nil {
		return err
	}
	return t.Round.Double(handIndex)
}

// Split turns a pair into two hands, each carrying the original bet. The
// second bet is debited first and the action refused if credits fall short.
func (t *Table) Split(handIndex int) error {
	if err := t.requireRound(); err != nil {
		return err
	}
	hand, err := t.Round.selectedHand(handIndex)
	if err != nil {
		return err
	}
	if !t.Round.CanSplit(handIndex) {
		return errors.New("can only split two cards of equal value")
	}

	if err := t.debitForAction(hand.Bet); err != nil {
		return err
	}
	return t.Round.Split(handIndex)
}

func (t *Table) debitForAction(amount int) error {
	balance, err := t.credits.Credits(t.PlayerID)
	if err != nil {
		return err
	}
	if balance < amount {
		return errors.New("insufficient credits")
	}
	return t.setCredits(balance - amount)
}

// FinishDealerTurn plays the dealer out in a tight loop and settles. Paced
// play goes through a Driver instead; the results are identical.
func (t *Table) FinishDealerTurn() error {
	if err := t.requireRound(); err != nil {
		return err
	}

	for t.Round.IsInPhase(RoundPhase_DealerTurn) {
		if err := t.Round.DealerStep(); err != nil {
			return err
		}
	}
	return t.SettleRound()
}

// SettleRound settles every hand and credits the payouts. A zero payout
// still writes the balance back, reconciling any drift.
func (t *Table) SettleRound() error {
	if err := t.requireRound(); err != nil {
		return err
	}
	if err := t.Round.Settle(); err != nil {
		return err
	}

	total := t.Round.TotalPayout()
	balance, err := t.credits.Credits(t.PlayerID)
	if err != nil {
		return err
	}
	if err := t.setCredits(balance + total); err != nil {
		return err
	}

	return t.Round.CompleteResults()
}

// NextRound closes out the finished round and opens a new one. The deferred
// reshuffle happens here, never mid-round: all cards dealt within one round
// come from one physical shoe even after the marker was crossed.
func (t *Table) NextRound() error {
	if err := t.requireRound(); err != nil {
		return err
	}
	if err := t.Round.Finish(); err != nil {
		return err
	}

	if t.shoe.CutCardSeen() {
		t.rebuildShoe()
	}

	t.startRound()
	return nil
}

// Leave removes the player from the table. A round abandoned before the
// dealer turn refunds the bet circle only when the exit was explicitly
// confirmed; mid-dealer-turn the player must wait the few draws out.
func (t *Table) Leave(confirmedExit bool) error {
	if err := t.requireRound(); err != nil {
		return err
	}

	switch t.Round.Phase {
	case RoundPhase_DealerTurn, RoundPhase_SettlingHands, RoundPhase_Results:
		return errors.New("cannot leave while the round is being resolved")
	case RoundPhase_PostRound:
		if err := t.Round.Finish(); err != nil {
			return err
		}
	case RoundPhase_EndRound:
	default:
		amount, err := t.Round.Abandon(confirmedExit)
		if err != nil {
			return err
		}
		if confirmedExit && amount > 0 {
			if err := t.refund(amount); err != nil {
				return err
			}
		}
	}

	playerID := t.PlayerID
	t.PlayerID = ""
	t.PlayerName = ""
	t.Round = nil
	t.Status = TableStatusWaiting

	t.emitEvent(events.PlayerLeftTable{
		TableID:  t.ID,
		PlayerID: playerID,
		At:       time.Now(),
	})
	return nil
}

// SetDeckCount changes the deck count and rebuilds the shoe. Never a live
// patch: it is refused while a round is in progress, and any staged bet is
// refunded before the reset.
func (t *Table) SetDeckCount(deckCount int) error {
	return t.updateRules(TableRules{
		DeckCount:      deckCount,
		IncludeCutCard: t.Rules.IncludeCutCard,
		MinBet:         t.Rules.MinBet,
	})
}

// SetIncludeCutCard toggles the cut card and rebuilds the shoe, under the
// same restrictions as SetDeckCount.
func (t *Table) SetIncludeCutCard(include bool) error {
	return t.updateRules(TableRules{
		DeckCount:      t.Rules.DeckCount,
		IncludeCutCard: include,
		MinBet:         t.Rules.MinBet,
	})
}

func (t *Table) updateRules(rules TableRules) error {
	if t.Round != nil && !t.Round.IsInPhase(RoundPhase_PreDeal) {
		return errors.New("cannot change table rules during a round")
	}

	if t.Round != nil && t.Round.BetCircle > 0 {
		if err := t.ClearBet(); err != nil {
			return err
		}
	}

	t.Rules = rules.normalized()
	t.rebuildShoe()

	if t.PlayerID != "" {
		t.startRound()
	}
	return nil
}

// RunningCount is the high-low sum over every card exposed since the last
// reshuffle.
func (t *Table) RunningCount() int {
	return t.runningCount
}

// TrueCount normalizes the running count by the estimated decks remaining.
func (t *Table) TrueCount() int {
	return t.runningCount / t.shoe.DecksRemaining()
}

// Shoe exposes the current shoe for depth inspection.
func (t *Table) Shoe() *cards.Shoe {
	return t.shoe
}

// Credits returns the seated player's balance.
func (t *Table) Credits() (int, error) {
	return t.credits.Credits(t.PlayerID)
}
