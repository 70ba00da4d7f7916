package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/playtwentyone/blackjacksrv/domain"
	"github.com/playtwentyone/blackjacksrv/domain/commands"
	"github.com/playtwentyone/blackjacksrv/server/connection"
)

// CommandRouter routes incoming commands to the appropriate handler
type CommandRouter struct {
	lobby       *domain.Lobby
	connMgr     *connection.Manager
	clock       quartz.Clock
	dealerDelay time.Duration
	logger      *log.Logger
}

// NewCommandRouter creates a new command router. dealerDelay paces the
// dealer's draws so connected clients can animate them; zero plays the
// dealer out instantly.
func NewCommandRouter(lobby *domain.Lobby, connMgr *connection.Manager, clock quartz.Clock, dealerDelay time.Duration, logger *log.Logger) *CommandRouter {
	return &CommandRouter{
		lobby:       lobby,
		connMgr:     connMgr,
		clock:       clock,
		dealerDelay: dealerDelay,
		logger:      logger.With("component", "router"),
	}
}

// HandleCommand processes an incoming command message
func (r *CommandRouter) HandleCommand(client *connection.Client, message []byte) error {
	// First determine command type
	var baseCmd struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(message, &baseCmd); err != nil {
		return err
	}

	// Route to appropriate handler based on command type
	switch baseCmd.Name {
	case commands.EnterLobby{}.Name():
		var cmd commands.EnterLobby
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleEnterLobby(client, cmd)

	case commands.LeaveLobby{}.Name():
		var cmd commands.LeaveLobby
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleLeaveLobby(client, cmd)

	case commands.TakeSeat{}.Name():
		var cmd commands.TakeSeat
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleTakeSeat(client, cmd)

	case commands.LeaveTable{}.Name():
		var cmd commands.LeaveTable
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleLeaveTable(client, cmd)

	case commands.PlaceChip{}.Name():
		var cmd commands.PlaceChip
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handlePlaceChip(client, cmd)

	case commands.ClearBet{}.Name():
		var cmd commands.ClearBet
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleClearBet(client, cmd)

	case commands.Deal{}.Name():
		var cmd commands.Deal
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleDeal(client, cmd)

	case commands.Hit{}.Name():
		var cmd commands.Hit
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleHit(client, cmd)

	case commands.Stay{}.Name():
		var cmd commands.Stay
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleStay(client, cmd)

	case commands.Double{}.Name():
		var cmd commands.Double
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleDouble(client, cmd)

	case commands.Split{}.Name():
		var cmd commands.Split
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleSplit(client, cmd)

	case commands.NextRound{}.Name():
		var cmd commands.NextRound
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleNextRound(client, cmd)

	case commands.SetDeckCount{}.Name():
		var cmd commands.SetDeckCount
		if err := json.Unmarshal(message, &cmd); err != nil {
			return err
		}
		return r.handleSetDeckCount(client, cmd)

	default:
		r.logger.Warn("unknown command type", "command", baseCmd.Name)
		return errors.New("unknown command type")
	}
}

func (r *CommandRouter) handleEnterLobby(client *connection.Client, cmd commands.EnterLobby) error {
	if client.Player == nil {
		// Create a new player - in future we'd fetch this from a database
		client.Player = domain.NewPlayer(cmd.PlayerID, cmd.PlayerName)
		r.connMgr.AddPlayerToClient(client.ID, cmd.PlayerID)
	}

	return r.lobby.EntersLobby(client.Player)
}

func (r *CommandRouter) handleLeaveLobby(client *connection.Client, cmd commands.LeaveLobby) error {
	return r.lobby.LeavesLobby(cmd.PlayerID)
}

func (r *CommandRouter) handleTakeSeat(client *connection.Client, cmd commands.TakeSeat) error {
	if client.Player == nil || !r.lobby.IsInLobby(client.Player.ID) {
		return errors.New("client is not in the lobby")
	}

	table, err := r.lobby.GetTable(cmd.TableID)
	if err != nil {
		return err
	}

	table.Lock()
	defer table.Unlock()

	if err := table.SeatPlayer(client.Player.ID, client.Player.Name); err != nil {
		return err
	}

	r.connMgr.SetClientTable(client.ID, cmd.TableID)
	r.sendRoundView(table)
	return nil
}

func (r *CommandRouter) handleLeaveTable(client *connection.Client, cmd commands.LeaveTable) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.Leave(cmd.ConfirmedExit); err != nil {
		return err
	}

	r.connMgr.ClearClientTable(client.ID)
	return nil
}

func (r *CommandRouter) handlePlaceChip(client *connection.Client, cmd commands.PlaceChip) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.PlaceChip(cmd.Amount); err != nil {
		return err
	}

	r.sendRoundView(table)
	return nil
}

func (r *CommandRouter) handleClearBet(client *connection.Client, cmd commands.ClearBet) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.ClearBet(); err != nil {
		return err
	}

	r.sendRoundView(table)
	return nil
}

func (r *CommandRouter) handleDeal(client *connection.Client, cmd commands.Deal) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.Deal(); err != nil {
		return err
	}

	r.sendRoundView(table)
	r.playDealerIfDue(table)
	return nil
}

func (r *CommandRouter) handleHit(client *connection.Client, cmd commands.Hit) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.Hit(cmd.HandIndex); err != nil {
		return err
	}

	r.sendRoundView(table)
	r.playDealerIfDue(table)
	return nil
}

func (r *CommandRouter) handleStay(client *connection.Client, cmd commands.Stay) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.Stay(cmd.HandIndex); err != nil {
		return err
	}

	r.sendRoundView(table)
	r.playDealerIfDue(table)
	return nil
}

func (r *CommandRouter) handleDouble(client *connection.Client, cmd commands.Double) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.Double(cmd.HandIndex); err != nil {
		return err
	}

	r.sendRoundView(table)
	r.playDealerIfDue(table)
	return nil
}

func (r *CommandRouter) handleSplit(client *connection.Client, cmd commands.Split) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.Split(cmd.HandIndex); err != nil {
		return err
	}

	r.sendRoundView(table)
	r.playDealerIfDue(table)
	return nil
}

func (r *CommandRouter) handleNextRound(client *connection.Client, cmd commands.NextRound) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.NextRound(); err != nil {
		return err
	}

	r.sendRoundView(table)
	return nil
}

func (r *CommandRouter) handleSetDeckCount(client *connection.Client, cmd commands.SetDeckCount) error {
	table, err := r.tableFor(client, cmd.TableID)
	if err != nil {
		return err
	}
	defer table.Unlock()

	if err := table.SetDeckCount(cmd.DeckCount); err != nil {
		return err
	}

	r.sendRoundView(table)
	return nil
}

// tableFor resolves the table and verifies the client holds its seat. The
// table comes back locked; the caller unlocks when its command is done, so
// each command is a single critical section against the paced dealer Driver.
func (r *CommandRouter) tableFor(client *connection.Client, tableID string) (*domain.Table, error) {
	if client.Player == nil || !r.lobby.IsInLobby(client.Player.ID) {
		return nil, errors.New("client is not in the lobby")
	}

	table, err := r.lobby.GetTable(tableID)
	if err != nil {
		return nil, err
	}

	table.Lock()
	if table.PlayerID != client.Player.ID {
		table.Unlock()
		return nil, errors.New("client is not seated at this table")
	}
	return table, nil
}

// playDealerIfDue runs the dealer turn when the player's last action handed
// play over. The caller holds the table lock. The paced variant runs in its
// own goroutine so the read loop is not blocked for the duration of the
// animation delays; the Driver locks the table around each draw itself, so
// its first step waits for the current command to finish.
func (r *CommandRouter) playDealerIfDue(table *domain.Table) {
	round := table.Round
	if round == nil || !round.IsInPhase(domain.RoundPhase_DealerTurn) {
		return
	}

	if r.dealerDelay <= 0 {
		if err := table.FinishDealerTurn(); err != nil {
			r.logger.Error("dealer turn failed", "table", table.ID, "err", err)
			return
		}
		r.sendRoundView(table)
		return
	}

	driver := domain.NewDriver(table, r.clock, r.dealerDelay)
	go func() {
		if err := driver.Run(context.Background()); err != nil {
			r.logger.Error("dealer turn failed", "table", table.ID, "err", err)
			return
		}
		table.Lock()
		r.sendRoundView(table)
		table.Unlock()
	}()
}

// sendRoundView pushes a full state snapshot to the table after a command,
// so clients can re-render without replaying the event stream. The caller
// holds the table lock.
func (r *CommandRouter) sendRoundView(table *domain.Table) {
	view := table.BuildView()

	payload, err := json.Marshal(view)
	if err != nil {
		r.logger.Error("failed to marshal round view", "table", table.ID, "err", err)
		return
	}

	envelope := struct {
		Name    string          `json:"name"`
		Payload json.RawMessage `json:"payload"`
	}{
		Name:    "ROUND_VIEW",
		Payload: payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		r.logger.Error("failed to marshal round view envelope", "table", table.ID, "err", err)
		return
	}

	r.connMgr.SendToTable(table.ID, data)
}
