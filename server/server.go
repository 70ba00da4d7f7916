package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playtwentyone/blackjacksrv/config"
	"github.com/playtwentyone/blackjacksrv/domain"
	domainevents "github.com/playtwentyone/blackjacksrv/domain/events"
	"github.com/playtwentyone/blackjacksrv/server/connection"
	"github.com/playtwentyone/blackjacksrv/server/events"
	"github.com/playtwentyone/blackjacksrv/server/handlers"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, implement proper origin checks
	},
}

// Server represents the blackjack WebSocket server
type Server struct {
	lobby      *domain.Lobby
	connMgr    *connection.Manager
	cmdRouter  *handlers.CommandRouter
	dispatcher *events.Dispatcher
	eventStore domainevents.EventStore
	logger     *log.Logger
	httpServer *http.Server
}

// TableResponse represents a table in API responses
type TableResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Occupied  bool   `json:"occupied"`
	DeckCount int    `json:"deckCount"`
	MinBet    int    `json:"minBet"`
	Phase     string `json:"phase,omitempty"`
}

// CreateTableRequest represents the request to create a new table
type CreateTableRequest struct {
	Name      string `json:"name"`
	DeckCount int    `json:"deckCount"`
	NoCutCard bool   `json:"noCutCard"`
	MinBet    int    `json:"minBet"`
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// NewServer creates a blackjack server with the tables named in the
// configuration already open.
func NewServer(cfg *config.Config, logger *log.Logger) (*Server, error) {
	credits := domain.NewInMemoryCreditStore()
	lobby := domain.NewLobby(credits, cfg.Server.StartingCredits)
	connMgr := connection.NewManager()

	dispatcher := events.NewDispatcher(connMgr, logger)
	cmdRouter := handlers.NewCommandRouter(
		lobby,
		connMgr,
		quartz.NewReal(),
		time.Duration(cfg.Server.DealerDelayMs)*time.Millisecond,
		logger,
	)

	// Register dispatcher as event handler for the lobby
	lobby.AddEventHandler(dispatcher.HandleEvent)

	// Keep the per-table event history for the audit endpoint. Lobby-only
	// events carry no table ID and are not retained.
	eventStore := domainevents.NewInMemoryEventStore()
	lobby.AddEventHandler(func(event domainevents.Event) {
		if domainevents.ExtractTableID(event) == "" {
			return
		}
		if err := eventStore.Append(event); err != nil {
			logger.Error("failed to store event", "event", event.Name(), "err", err)
		}
	})

	for _, tc := range cfg.Tables {
		table, err := lobby.CreateTable(tc.Name, domain.TableRules{
			DeckCount:      tc.DeckCount,
			IncludeCutCard: !tc.NoCutCard,
			MinBet:         tc.MinBet,
		})
		if err != nil {
			return nil, err
		}
		table.Debug = cfg.Server.Debug
		logger.Info("table opened", "table", table.ID, "name", table.Name,
			"decks", table.Rules.DeckCount, "minBet", table.Rules.MinBet)
	}

	return &Server{
		lobby:      lobby,
		connMgr:    connMgr,
		cmdRouter:  cmdRouter,
		dispatcher: dispatcher,
		eventStore: eventStore,
		logger:     logger.With("component", "server"),
	}, nil
}

// Lobby exposes the server's lobby.
func (s *Server) Lobby() *domain.Lobby {
	return s.lobby
}

// Start begins serving on the given address and blocks until the listener
// closes.
func (s *Server) Start(addr string) error {
	// Start connection manager in its own goroutine
	go s.connMgr.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/tables", corsMiddleware(s.handleGetTables))
	mux.HandleFunc("/api/tables/create", corsMiddleware(s.handleCreateTable))
	mux.HandleFunc("/api/tables/events", corsMiddleware(s.handleGetTableEvents))

	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	s.logger.Info("starting server", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleWebSocket handles incoming WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("error upgrading to websocket", "err", err)
		return
	}

	clientID := uuid.NewString()
	s.logger.Info("new client connected", "remote", r.RemoteAddr, "client", clientID)

	client := &connection.Client{
		ID:   clientID,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	// Register with connection manager
	s.connMgr.Register <- client

	// Handle reading and writing in separate goroutines
	go s.readPump(client)
	go s.writePump(client)
}

// readPump reads messages from the WebSocket connection
func (s *Server) readPump(client *connection.Client) {
	defer func() {
		s.connMgr.Unregister <- client
		client.Conn.Close()
	}()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("read error", "client", client.ID, "err", err)
			}
			break
		}

		if err := s.cmdRouter.HandleCommand(client, message); err != nil {
			s.logger.Warn("command rejected", "client", client.ID, "err", err)
			s.sendError(client, err)
		}
	}
}

// writePump sends messages to the WebSocket connection
func (s *Server) writePump(client *connection.Client) {
	defer func() {
		client.Conn.Close()
	}()

	for {
		message, ok := <-client.Send
		if !ok {
			// Channel closed
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			s.logger.Error("write error", "client", client.ID, "err", err)
			return
		}
	}
}

// sendError reports a rejected command back to its sender.
func (s *Server) sendError(client *connection.Client, cause error) {
	envelope := struct {
		Name    string `json:"name"`
		Payload struct {
			Error string `json:"error"`
		} `json:"payload"`
	}{Name: "ERROR"}
	envelope.Payload.Error = cause.Error()

	data, err := json.Marshal(envelope)
	if err != nil {
		return
	}

	select {
	case client.Send <- data:
	default:
	}
}

// handleGetTables returns a list of all tables
func (s *Server) handleGetTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tables := s.lobby.GetTables()
	tableResponses := make([]TableResponse, 0, len(tables))

	for _, table := range tables {
		table.Lock()
		response := TableResponse{
			ID:        table.ID,
			Name:      table.Name,
			Status:    string(table.Status),
			Occupied:  table.PlayerID != "",
			DeckCount: table.Rules.DeckCount,
			MinBet:    table.Rules.MinBet,
		}
		if table.Round != nil {
			response.Phase = string(table.Round.Phase)
		}
		table.Unlock()
		tableResponses = append(tableResponses, response)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tableResponses)
}

// handleGetTableEvents returns the stored event history for one table
func (s *Server) handleGetTableEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tableID := r.URL.Query().Get("table")
	if tableID == "" {
		http.Error(w, "table query parameter is required", http.StatusBadRequest)
		return
	}
	if _, err := s.lobby.GetTable(tableID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	stored, err := s.eventStore.LoadEvents(tableID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	envelopes := make([]events.EventEnvelope, 0, len(stored))
	for _, event := range stored {
		payload, err := json.Marshal(events.Redact(event))
		if err != nil {
			continue
		}
		envelopes = append(envelopes, events.EventEnvelope{
			Name:    event.Name(),
			Payload: payload,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(envelopes)
}

// handleCreateTable creates a new table
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var createReq CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if createReq.Name == "" {
		http.Error(w, "Table name is required", http.StatusBadRequest)
		return
	}
	if createReq.DeckCount == 0 {
		createReq.DeckCount = 1
	}
	if createReq.MinBet == 0 {
		createReq.MinBet = 5
	}

	table, err := s.lobby.CreateTable(createReq.Name, domain.TableRules{
		DeckCount:      createReq.DeckCount,
		IncludeCutCard: !createReq.NoCutCard,
		MinBet:         createReq.MinBet,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := TableResponse{
		ID:        table.ID,
		Name:      table.Name,
		Status:    string(table.Status),
		DeckCount: table.Rules.DeckCount,
		MinBet:    table.Rules.MinBet,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}
