package entity

// Player is a participant bound to one connection and the role it plays in its room.
type Player struct {
	ID   string `json:"id"`
	Mark Mark   `json:"mark,omitempty"`
}
