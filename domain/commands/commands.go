package commands

type Command interface {
	Name() string
}

type EnterLobby struct {
	PlayerID   string
	PlayerName string
}

func (e EnterLobby) Name() string { return "ENTER_LOBBY" }

type LeaveLobby struct {
	PlayerID string
}

func (l LeaveLobby) Name() string { return "LEAVE_LOBBY" }

type TakeSeat struct {
	PlayerID string
	TableID  string
}

func (t TakeSeat) Name() string { return "TAKE_SEAT" }

// LeaveTable abandons an unfinished round. ConfirmedExit marks an explicit
// user-confirmed leave, which refunds the bet circle; anything else
// forfeits it.
type LeaveTable struct {
	PlayerID      string
	TableID       string
	ConfirmedExit bool
}

func (l LeaveTable) Name() string { return "LEAVE_TABLE" }

type PlaceChip struct {
	PlayerID string
	TableID  string
	Amount   int
}

func (p PlaceChip) Name() string { return "PLACE_CHIP" }

type ClearBet struct {
	PlayerID string
	TableID  string
}

func (c ClearBet) Name() string { return "CLEAR_BET" }

type Deal struct {
	PlayerID string
	TableID  string
}

func (d Deal) Name() string { return "DEAL" }

type Hit struct {
	PlayerID  string
	TableID   string
	HandIndex int
}

func (h Hit) Name() string { return "HIT" }

type Stay struct {
	PlayerID  string
	TableID   string
	HandIndex int
}

func (s Stay) Name() string { return "STAY" }

type Double struct {
	PlayerID  string
	TableID   string
	HandIndex int
}

func (d Double) Name() string { return "DOUBLE" }

type Split struct {
	PlayerID  string
	TableID   string
	HandIndex int
}

func (s Split) Name() string { return "SPLIT" }

type NextRound struct {
	PlayerID string
	TableID  string
}

func (n NextRound) Name() string { return "NEXT_ROUND" }

type SetDeckCount struct {
	PlayerID  string
	TableID   string
	DeckCount int
}

func (s SetDeckCount) Name() string { return "SET_DECK_COUNT" }
