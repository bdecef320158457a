package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nmoreno/scrumpoker/internal/domain"
)

func TestNewPlayer(t *testing.T) {
	p := domain.NewPlayer("p1", "Alice", false, true)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Alice", p.Name)
	assert.True(t, p.Facilitator)
	assert.False(t, p.Observer)
	assert.True(t, p.Connected)
	assert.False(t, p.HasVoted())
	assert.WithinDuration(t, time.Now(), p.JoinedAt, time.Second)
}

func TestPlayer_Vote(t *testing.T) {
	t.Run("set and clear", func(t *testing.T) {
		p := domain.NewPlayer("p1", "Alice", false, false)

		p.SetVote("5")
		assert.True(t, p.HasVoted())
		assert.Equal(t, "5", p.Vote)

		p.ClearVote()
		assert.False(t, p.HasVoted())
	})

	t.Run("empty token clears the vote", func(t *testing.T) {
		p := domain.NewPlayer("p1", "Alice", false, false)
		p.SetVote("8")

		p.SetVote("")
		assert.False(t, p.HasVoted())
	})
}

func TestPlayer_CanVote(t *testing.T) {
	t.Run("observers never vote", func(t *testing.T) {
		p := domain.NewPlayer("p1", "Eve", true, false)
		assert.False(t, p.CanVote())
	})

	t.Run("disconnected voters do not count", func(t *testing.T) {
		p := domain.NewPlayer("p1", "Bob", false, false)
		p.Disconnect()
		assert.False(t, p.CanVote())

		p.Reconnect()
		assert.True(t, p.CanVote())
	})
}

func TestPlayer_Role(t *testing.T) {
	assert.Equal(t, domain.RoleFacilitator, domain.NewPlayer("p1", "A", false, true).Role())
	assert.Equal(t, domain.RoleObserver, domain.NewPlayer("p2", "B", true, false).Role())
	assert.Equal(t, domain.RoleVoter, domain.NewPlayer("p3", "C", false, false).Role())

	// Facilitator wins when both flags are set.
	assert.Equal(t, domain.RoleFacilitator, domain.NewPlayer("p4", "D", true, true).Role())
}
