package events

import (
	"time"

	"github.com/playtwentyone/blackjacksrv/cards"
)

// Lobby events

type PlayerEnteredLobby struct {
	PlayerID string
	At       time.Time
}

func (p PlayerEnteredLobby) Name() string { return "PLAYER_ENTERED_LOBBY" }

type PlayerLeftLobby struct {
	PlayerID string
	At       time.Time
}

func (p PlayerLeftLobby) Name() string { return "PLAYER_LEFT_LOBBY" }

// Table events

type PlayerJoinedTable struct {
	TableID  string
	PlayerID string
	At       time.Time
}

func (p PlayerJoinedTable) Name() string { return "PLAYER_JOINED_TABLE" }

type PlayerLeftTable struct {
	TableID  string
	PlayerID string
	At       time.Time
}

func (p PlayerLeftTable) Name() string { return "PLAYER_LEFT_TABLE" }

type ShoeRebuilt struct {
	TableID   string
	DeckCount int
	Size      int
	At        time.Time
}

func (s ShoeRebuilt) Name() string { return "SHOE_REBUILT" }

type CutCardReached struct {
	TableID string
	RoundID string
	At      time.Time
}

func (c CutCardReached) Name() string { return "CUT_CARD_REACHED" }

type CreditsChanged struct {
	TableID  string
	PlayerID string
	Credits  int
	Delta    int
	At       time.Time
}

func (c CreditsChanged) Name() string { return "CREDITS_CHANGED" }

// Round structure events

type RoundStarted struct {
	TableID  string
	RoundID  string
	PlayerID string
	Bet      int
	At       time.Time
}

func (r RoundStarted) Name() string { return "ROUND_STARTED" }

type PhaseChanged struct {
	TableID       string
	RoundID       string
	PreviousPhase string
	NewPhase      string
	At            time.Time
}

func (p PhaseChanged) Name() string { return "PHASE_CHANGED" }

type RoundEnded struct {
	TableID     string
	RoundID     string
	TotalPayout int
	At          time.Time
}

func (r RoundEnded) Name() string { return "ROUND_ENDED" }

type RoundAbandoned struct {
	TableID  string
	RoundID  string
	Refunded bool
	Amount   int
	At       time.Time
}

func (r RoundAbandoned) Name() string { return "ROUND_ABANDONED" }

// Betting events

type BetPlaced struct {
	TableID   string
	RoundID   string
	Amount    int
	BetCircle int
	At        time.Time
}

func (b BetPlaced) Name() string { return "BET_PLACED" }

type BetCleared struct {
	TableID  string
	RoundID  string
	Amount   int
	Refunded bool
	At       time.Time
}

func (b BetCleared) Name() string { return "BET_CLEARED" }

// Dealing and action events

// CardDealt is emitted for every card leaving the shoe, player and dealer
// alike. Face-down deals carry the card too; the server-side dispatcher
// redacts it before anything reaches a client.
type CardDealt struct {
	TableID   string
	RoundID   string
	Seat      string // "player" or "dealer"
	HandIndex int
	Card      cards.Card
	FaceDown  bool
	At        time.Time
}

func (c CardDealt) Name() string { return "CARD_DEALT" }

type DealerHoleCardRevealed struct {
	TableID string
	RoundID string
	Card    cards.Card
	At      time.Time
}

func (d DealerHoleCardRevealed) Name() string { return "DEALER_HOLE_CARD_REVEALED" }

type PlayerHit struct {
	TableID   string
	RoundID   string
	HandIndex int
	Total     int
	Busted    bool
	At        time.Time
}

func (p PlayerHit) Name() string { return "PLAYER_HIT" }

type PlayerStood struct {
	TableID   string
	RoundID   string
	HandIndex int
	Total     int
	At        time.Time
}

func (p PlayerStood) Name() string { return "PLAYER_STOOD" }

type PlayerDoubled struct {
	TableID   string
	RoundID   string
	HandIndex int
	NewBet    int
	Total     int
	Busted    bool
	At        time.Time
}

func (p PlayerDoubled) Name() string { return "PLAYER_DOUBLED" }

type HandSplit struct {
	TableID   string
	RoundID   string
	HandIndex int
	Bet       int
	At        time.Time
}

func (h HandSplit) Name() string { return "HAND_SPLIT" }

type TurnAdvanced struct {
	TableID   string
	RoundID   string
	HandIndex int
	At        time.Time
}

func (t TurnAdvanced) Name() string { return "TURN_ADVANCED" }

type DealerDrew struct {
	TableID string
	RoundID string
	Total   int
	Busted  bool
	At      time.Time
}

func (d DealerDrew) Name() string { return "DEALER_DREW" }

// Settlement events

type HandSettled struct {
	TableID   string
	RoundID   string
	HandIndex int
	Result    string
	Blackjack bool
	Bet       int
	Payout    int
	At        time.Time
}

func (h HandSettled) Name() string { return "HAND_SETTLED" }
