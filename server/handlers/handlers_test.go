package handlers

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/playtwentyone/blackjacksrv/domain"
	"github.com/playtwentyone/blackjacksrv/server/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*CommandRouter, *domain.Lobby, *domain.Table) {
	t.Helper()

	credits := domain.NewInMemoryCreditStore()
	lobby := domain.NewLobby(credits, 1000)
	table, err := lobby.CreateTable("Main", domain.TableRules{DeckCount: 1, MinBet: 5})
	require.NoError(t, err)

	router := NewCommandRouter(lobby, connection.NewManager(), quartz.NewMock(t), 0, log.New(io.Discard))
	return router, lobby, table
}

func newTestClient() *connection.Client {
	return &connection.Client{
		ID:   "client-1",
		Send: make(chan []byte, 16),
	}
}

func command(t *testing.T, fields map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	return data
}

func TestHandleCommandRejectsGarbage(t *testing.T) {
	router, _, _ := newTestRouter(t)
	client := newTestClient()

	assert.Error(t, router.HandleCommand(client, []byte("not json")))
	assert.Error(t, router.HandleCommand(client, command(t, map[string]any{
		"name": "NO_SUCH_COMMAND",
	})))
}

func TestHandleEnterLobby(t *testing.T) {
	router, lobby, _ := newTestRouter(t)
	client := newTestClient()

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":       "ENTER_LOBBY",
		"PlayerID":   "player-1",
		"PlayerName": "Player One",
	})))

	require.NotNil(t, client.Player)
	assert.Equal(t, "player-1", client.Player.ID)
	assert.True(t, lobby.IsInLobby("player-1"))
}

func TestTableCommandsRequireLobby(t *testing.T) {
	router, _, table := newTestRouter(t)
	client := newTestClient()

	err := router.HandleCommand(client, command(t, map[string]any{
		"name":     "TAKE_SEAT",
		"PlayerID": "player-1",
		"TableID":  table.ID,
	}))
	assert.Error(t, err)
}

func TestHandleTableFlow(t *testing.T) {
	router, _, table := newTestRouter(t)
	client := newTestClient()

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":       "ENTER_LOBBY",
		"PlayerID":   "player-1",
		"PlayerName": "Player One",
	})))

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":     "TAKE_SEAT",
		"PlayerID": "player-1",
		"TableID":  table.ID,
	})))
	assert.Equal(t, "player-1", table.PlayerID)
	require.NotNil(t, table.Round)

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":     "PLACE_CHIP",
		"PlayerID": "player-1",
		"TableID":  table.ID,
		"Amount":   50,
	})))
	assert.Equal(t, 50, table.Round.BetCircle)

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":     "CLEAR_BET",
		"PlayerID": "player-1",
		"TableID":  table.ID,
	})))
	assert.Equal(t, 0, table.Round.BetCircle)

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":      "SET_DECK_COUNT",
		"PlayerID":  "player-1",
		"TableID":   table.ID,
		"DeckCount": 3,
	})))
	assert.Equal(t, 3, table.Rules.DeckCount)

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":          "LEAVE_TABLE",
		"PlayerID":      "player-1",
		"TableID":       table.ID,
		"ConfirmedExit": true,
	})))
	assert.Empty(t, table.PlayerID)
}

func TestHandleCommandRefusesForeignTable(t *testing.T) {
	router, lobby, table := newTestRouter(t)
	client := newTestClient()

	require.NoError(t, router.HandleCommand(client, command(t, map[string]any{
		"name":       "ENTER_LOBBY",
		"PlayerID":   "player-1",
		"PlayerName": "Player One",
	})))

	// Another player holds the seat.
	require.NoError(t, lobby.EntersLobby(domain.NewPlayer("player-2", "Player Two")))
	require.NoError(t, table.SeatPlayer("player-2", "Player Two"))

	err := router.HandleCommand(client, command(t, map[string]any{
		"name":     "PLACE_CHIP",
		"PlayerID": "player-1",
		"TableID":  table.ID,
		"Amount":   50,
	}))
	assert.Error(t, err)
}
