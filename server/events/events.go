package events

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/playtwentyone/blackjacksrv/cards"
	"github.com/playtwentyone/blackjacksrv/domain/events"
	"github.com/playtwentyone/blackjacksrv/server/connection"
)

// EventEnvelope wraps an event with its name for client consumption
type EventEnvelope struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher handles routing events to clients
type Dispatcher struct {
	connMgr *connection.Manager
	logger  *log.Logger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(connMgr *connection.Manager, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		connMgr: connMgr,
		logger:  logger.With("component", "dispatcher"),
	}
}

// HandleEvent processes domain events and sends them to clients. The dealer's
// face-down card must never cross the wire, so CardDealt events are redacted
// before marshalling; the client learns the hole card only from the later
// DealerHoleCardRevealed event.
func (d *Dispatcher) HandleEvent(event events.Event) {
	event = Redact(event)

	eventPayload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("failed to marshal event payload", "event", event.Name(), "err", err)
		return
	}

	envelope := EventEnvelope{
		Name:    event.Name(),
		Payload: eventPayload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		d.logger.Error("failed to marshal event envelope", "event", event.Name(), "err", err)
		return
	}

	d.logger.Debug("dispatching event", "event", event.Name())

	switch e := event.(type) {
	case events.PlayerEnteredLobby:
		d.connMgr.SendToPlayer(e.PlayerID, envelopeData)

	case events.PlayerLeftLobby:
		d.connMgr.SendToPlayer(e.PlayerID, envelopeData)

	case events.CreditsChanged:
		// Balances are private to their owner.
		d.connMgr.SendToPlayer(e.PlayerID, envelopeData)

	default:
		if tableID := events.ExtractTableID(event); tableID != "" {
			d.connMgr.SendToTable(tableID, envelopeData)
		}
	}
}

// Redact strips the identity of any face-down card from an outgoing event.
func Redact(event events.Event) events.Event {
	dealt, ok := event.(events.CardDealt)
	if !ok || !dealt.FaceDown {
		return event
	}

	dealt.Card = cards.Card{ID: dealt.Card.ID, FaceDown: true}
	return dealt
}
