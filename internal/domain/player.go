package domain

import "time"

// PlayerRole is the primary role of a player, derived from its flags.
type PlayerRole string

const (
	RoleVoter       PlayerRole = "voter"
	RoleObserver    PlayerRole = "observer"
	RoleFacilitator PlayerRole = "facilitator"
)

// Player is a named member of a room. Identity is the id; the vote is an
// empty string until cast.
type Player struct {
	ID          string
	Name        string
	Observer    bool
	Facilitator bool
	Vote        string
	Connected   bool
	JoinedAt    time.Time
}

// NewPlayer avoids raw literals in adapters and keeps construction obvious.
func NewPlayer(id, name string, observer, facilitator bool) *Player {
	return &Player{
		ID:          id,
		Name:        name,
		Observer:    observer,
		Facilitator: facilitator,
		Connected:   true,
		JoinedAt:    time.Now(),
	}
}

func (p *Player) HasVoted() bool { return p.Vote != "" }

// SetVote records the player's vote; an empty token clears it.
func (p *Player) SetVote(token string) { p.Vote = token }

func (p *Player) ClearVote() { p.Vote = "" }

// CanVote reports whether the player participates in the current round.
func (p *Player) CanVote() bool { return !p.Observer && p.Connected }

func (p *Player) Disconnect() { p.Connected = false }

func (p *Player) Reconnect() { p.Connected = true }

// Role returns the player's primary role. Facilitator wins over observer.
func (p *Player) Role() PlayerRole {
	switch {
	case p.Facilitator:
		return RoleFacilitator
	case p.Observer:
		return RoleObserver
	default:
		return RoleVoter
	}
}
