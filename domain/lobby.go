package domain

import (
	"errors"
	"sync"
	"time"

	"github.com/playtwentyone/blackjacksrv/domain/events"
)

// Lobby keeps the tables and the players known to the server. The registries
// are shared by every client connection and by the HTTP handlers, so access
// goes through the lobby's own lock; the per-table lock stays with the table.
type Lobby struct {
	mu      sync.RWMutex
	tables  map[string]*Table
	players map[string]*Player

	credits         CreditStore
	startingCredits int

	// Events
	eventsMu      sync.Mutex
	Events        []events.Event
	eventHandlers []events.EventHandler
}

// NewLobby creates a lobby. New players are seeded with startingCredits the
// first time they enter.
func NewLobby(credits CreditStore, startingCredits int) *Lobby {
	return &Lobby{
		tables:          make(map[string]*Table),
		players:         make(map[string]*Player),
		credits:         credits,
		startingCredits: startingCredits,
	}
}

// IsInLobby checks if a player is in the lobby
func (l *Lobby) IsInLobby(playerID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.players[playerID]
	return exists
}

// EntersLobby adds a player to the lobby
func (l *Lobby) EntersLobby(player *Player) error {
	if player == nil {
		return errors.New("player is nil")
	}
	if player.ID == "" {
		return ErrNotLoggedIn
	}

	l.mu.Lock()
	if _, exists := l.players[player.ID]; exists {
		l.mu.Unlock()
		return errors.New("player is already in the lobby")
	}
	l.players[player.ID] = player
	l.mu.Unlock()

	balance, err := l.credits.Credits(player.ID)
	if err != nil {
		return err
	}
	if balance == 0 && l.startingCredits > 0 {
		if err := l.credits.SetCredits(player.ID, l.startingCredits); err != nil {
			return err
		}
	}

	l.emitEvent(events.PlayerEnteredLobby{
		PlayerID: player.ID,
		At:       time.Now(),
	})

	return nil
}

func (l *Lobby) LeavesLobby(playerID string) error {
	l.mu.Lock()
	_, exists := l.players[playerID]
	if !exists {
		l.mu.Unlock()
		return errors.New("player not found")
	}
	delete(l.players, playerID)
	l.mu.Unlock()

	l.emitEvent(events.PlayerLeftLobby{
		PlayerID: playerID,
		At:       time.Now(),
	})

	return nil
}

// GetPlayer retrieves a lobby player by ID
func (l *Lobby) GetPlayer(playerID string) (*Player, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	player, exists := l.players[playerID]
	if !exists {
		return nil, errors.New("player not found")
	}
	return player, nil
}

// CreateTable creates a new table in the lobby
func (l *Lobby) CreateTable(name string, rules TableRules) (*Table, error) {
	table := NewTable(name, rules, l.credits)
	table.RegisterEventHandler(l.handleTableEvent)

	l.mu.Lock()
	l.tables[table.ID] = table
	l.mu.Unlock()
	return table, nil
}

func (l *Lobby) handleTableEvent(event events.Event) {
	l.emitEvent(event)
}

// GetTable retrieves a table by ID
func (l *Lobby) GetTable(tableID string) (*Table, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	table, exists := l.tables[tableID]
	if !exists {
		return nil, errors.New("table not found")
	}

	return table, nil
}

// GetTables returns all tables in the lobby
func (l *Lobby) GetTables() []*Table {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tables := make([]*Table, 0, len(l.tables))
	for _, table := range l.tables {
		tables = append(tables, table)
	}
	return tables
}

// AddEventHandler adds an event handler to the lobby
func (l *Lobby) AddEventHandler(handler events.EventHandler) {
	l.eventsMu.Lock()
	defer l.eventsMu.Unlock()

	l.eventHandlers = append(l.eventHandlers, handler)
}

// emitEvent notifies all registered handlers of a new event. Events forwarded
// from a table arrive on that table's goroutine, so the shared log has its
// own lock; handlers run outside it.
func (l *Lobby) emitEvent(event events.Event) {
	l.eventsMu.Lock()
	l.Events = append(l.Events, event)
	handlers := l.eventHandlers
	l.eventsMu.Unlock()

	for _, handler := range handlers {
		handler(event)
	}
}
