package domain

// Player represents a blackjack player known to the lobby
type Player struct {
	ID   string
	Name string
}

// NewPlayer creates a new player with the given ID and name
func NewPlayer(id string, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
	}
}
