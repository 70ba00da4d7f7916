package connection

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/playtwentyone/blackjacksrv/domain"
)

// Client represents a connected player
type Client struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Player  *domain.Player // Links to domain.Player.ID
	TableID string         // The table the player is currently seated at
}

// Manager handles all client connections
type Manager struct {
	clients    map[string]*Client // Map connection IDs to clients
	playerMap  map[string]string  // Map player IDs to connection IDs
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

// NewManager creates a new connection manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		playerMap:  make(map[string]string),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start begins processing connection events
func (m *Manager) Start() {
	for {
		select {
		case client := <-m.Register:
			m.mutex.Lock()
			m.clients[client.ID] = client
			if client.Player != nil {
				m.playerMap[client.Player.ID] = client.ID
			}
			m.mutex.Unlock()
		case client := <-m.Unregister:
			m.mutex.Lock()
			if _, ok := m.clients[client.ID]; ok {
				if client.Player != nil {
					delete(m.playerMap, client.Player.ID)
				}
				delete(m.clients, client.ID)
				close(client.Send)
			}
			m.mutex.Unlock()
		}
	}
}

// AddPlayerToClient links an authenticated player ID to a connection
func (m *Manager) AddPlayerToClient(clientID string, playerID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.clients[clientID]; ok {
		m.playerMap[playerID] = clientID
		return true
	}
	return false
}

// SendToPlayer sends a message to a specific player
func (m *Manager) SendToPlayer(playerID string, message []byte) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if connID, exists := m.playerMap[playerID]; exists {
		if client, ok := m.clients[connID]; ok {
			client.Send <- message
			return true
		}
	}
	return false
}

// SendToTable sends a message to every client watching a table. With one
// seat per table this is usually a single client, but a freshly vacated
// table can still have a spectator waiting on the farewell events.
func (m *Manager) SendToTable(tableID string, message []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, client := range m.clients {
		if client.TableID == tableID {
			client.Send <- message
		}
	}
}

// SetClientTable records which table a client is seated at
func (m *Manager) SetClientTable(clientID string, tableID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, ok := m.clients[clientID]; ok {
		client.TableID = tableID
		return true
	}
	return false
}

// ClearClientTable removes a client's table association
func (m *Manager) ClearClientTable(clientID string) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, ok := m.clients[clientID]; ok {
		client.TableID = ""
		return true
	}
	return false
}

// IsClientAtTable checks if a client is seated at a specific table
func (m *Manager) IsClientAtTable(clientID string, tableID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if client, ok := m.clients[clientID]; ok {
		return client.TableID == tableID
	}
	return false
}
