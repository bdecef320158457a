package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/scrumpoker/internal/domain"
)

func newRoomWithVoters(t *testing.T, votes map[string]string) *domain.Room {
	t.Helper()
	room := domain.NewRoom("r1", "Sprint 1")
	i := 0
	for name, vote := range votes {
		p := domain.NewPlayer(name+"-id", name, false, i == 0)
		p.SetVote(vote)
		room.AddPlayer(p)
		i++
	}
	return room
}

func TestNewRoom(t *testing.T) {
	room := domain.NewRoom("r1", "Sprint 1")

	assert.Equal(t, "r1", room.ID)
	assert.Equal(t, "Sprint 1", room.Name)
	assert.Equal(t, domain.StatusVoting, room.Status)
	assert.Equal(t, domain.ModePublic, room.VotingMode)
	assert.Equal(t, domain.DefaultScaleName, room.ScaleName)
	assert.Empty(t, room.Players)
	assert.Empty(t, room.History)
	assert.WithinDuration(t, time.Now(), room.CreatedAt, time.Second)
}

func TestRoom_FindPlayerByName(t *testing.T) {
	room := domain.NewRoom("r1", "Sprint 1")
	room.AddPlayer(domain.NewPlayer("p1", "Alice", false, true))

	t.Run("matches case-insensitively", func(t *testing.T) {
		p, ok := room.FindPlayerByName("aLiCe")
		require.True(t, ok)
		assert.Equal(t, "p1", p.ID)
	})

	t.Run("misses unknown names", func(t *testing.T) {
		_, ok := room.FindPlayerByName("Bob")
		assert.False(t, ok)
	})
}

func TestRoom_ActiveVoters(t *testing.T) {
	room := domain.NewRoom("r1", "Sprint 1")
	voter := domain.NewPlayer("p1", "Alice", false, true)
	observer := domain.NewPlayer("p2", "Eve", true, false)
	gone := domain.NewPlayer("p3", "Bob", false, false)
	gone.Disconnect()
	room.AddPlayer(voter)
	room.AddPlayer(observer)
	room.AddPlayer(gone)

	voters := room.ActiveVoters()
	require.Len(t, voters, 1)
	assert.Equal(t, "p1", voters[0].ID)

	assert.Len(t, room.ConnectedPlayers(), 2)
}

func TestRoom_AllVoted(t *testing.T) {
	t.Run("false with no active voters", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		assert.False(t, room.AllVoted())

		// Observers alone still leave the set empty.
		room.AddPlayer(domain.NewPlayer("p1", "Eve", true, false))
		assert.False(t, room.AllVoted())
	})

	t.Run("false until every active voter has voted", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		alice := domain.NewPlayer("p1", "Alice", false, true)
		bob := domain.NewPlayer("p2", "Bob", false, false)
		room.AddPlayer(alice)
		room.AddPlayer(bob)

		alice.SetVote("5")
		assert.False(t, room.AllVoted())

		bob.SetVote("8")
		assert.True(t, room.AllVoted())
	})

	t.Run("disconnected voters are ignored", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		alice := domain.NewPlayer("p1", "Alice", false, true)
		bob := domain.NewPlayer("p2", "Bob", false, false)
		room.AddPlayer(alice)
		room.AddPlayer(bob)

		alice.SetVote("5")
		bob.Disconnect()
		assert.True(t, room.AllVoted())
	})
}

func TestRoom_ScaleManagement(t *testing.T) {
	t.Run("custom scale overrides the predefined one", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		room.SetCustomScale([]string{"S", "M", "L"})

		assert.Equal(t, "custom", room.ScaleName)
		assert.Equal(t, []string{"S", "M", "L"}, room.CurrentScaleValues())
	})

	t.Run("switching back to predefined clears custom values", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		room.SetCustomScale([]string{"S", "M", "L"})

		room.SetScale("fibonacci")
		assert.Equal(t, "fibonacci", room.ScaleName)
		assert.Nil(t, room.CustomScale)
		assert.Equal(t, domain.PredefinedScales["fibonacci"], room.CurrentScaleValues())
	})

	t.Run("unknown stored name resolves to the default", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		room.SetScale("bogus")

		assert.Equal(t, domain.PredefinedScales[domain.DefaultScaleName], room.CurrentScaleValues())
	})

	t.Run("vote validity follows the current scale", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		assert.True(t, room.IsValidVote("5"))
		assert.False(t, room.IsValidVote("4"))

		room.SetCustomScale([]string{"S", "M"})
		assert.True(t, room.IsValidVote("M"))
		assert.False(t, room.IsValidVote("5"))
	})
}

func TestRoom_VoteSummary(t *testing.T) {
	room := newRoomWithVoters(t, map[string]string{"Alice": "5", "Bob": "8", "Carol": "5"})

	t.Run("empty before reveal", func(t *testing.T) {
		assert.Empty(t, room.VoteSummary())
	})

	t.Run("tallied after reveal", func(t *testing.T) {
		room.RevealVotes()
		assert.Equal(t, map[string]int{"5": 2, "8": 1}, room.VoteSummary())
	})

	t.Run("observer votes never counted", func(t *testing.T) {
		observer := domain.NewPlayer("obs", "Eve", true, false)
		observer.SetVote("8")
		room.AddPlayer(observer)

		assert.Equal(t, map[string]int{"5": 2, "8": 1}, room.VoteSummary())
	})
}

func TestRoom_AverageVote(t *testing.T) {
	t.Run("no result before reveal", func(t *testing.T) {
		room := newRoomWithVoters(t, map[string]string{"Alice": "5"})
		_, ok := room.AverageVote()
		assert.False(t, ok)
	})

	t.Run("mean of numeric votes only", func(t *testing.T) {
		room := newRoomWithVoters(t, map[string]string{"Alice": "5", "Bob": "8", "Carol": "?"})
		room.RevealVotes()

		avg, ok := room.AverageVote()
		require.True(t, ok)
		assert.InDelta(t, 6.5, avg, 1e-9)
	})

	t.Run("no result when every vote is symbolic", func(t *testing.T) {
		room := newRoomWithVoters(t, map[string]string{"Alice": "?", "Bob": "☕"})
		room.RevealVotes()

		_, ok := room.AverageVote()
		assert.False(t, ok)
	})
}

func TestRoom_RevealIsIdempotent(t *testing.T) {
	room := domain.NewRoom("r1", "Sprint 1")

	room.RevealVotes()
	assert.True(t, room.IsRevealed())
	room.RevealVotes()
	assert.True(t, room.IsRevealed())
}

func TestRoom_ResetVotes(t *testing.T) {
	t.Run("archives the round and clears state", func(t *testing.T) {
		room := newRoomWithVoters(t, map[string]string{"Alice": "5", "Bob": "8"})
		room.SetStoryName("US-1")
		room.RevealVotes()

		room.ResetVotes()

		require.Len(t, room.History, 1)
		record := room.History[0]
		assert.Equal(t, "US-1", record.StoryName)
		assert.Equal(t, map[string]string{"Alice": "5", "Bob": "8"}, record.Votes)
		assert.Equal(t, map[string]int{"5": 1, "8": 1}, record.VoteSummary)
		require.NotNil(t, record.Average)
		assert.InDelta(t, 6.5, *record.Average, 1e-9)
		require.NotNil(t, record.RoundedAverage)
		assert.Equal(t, "5", *record.RoundedAverage)
		assert.Equal(t, 1, record.RoundNumber)
		assert.False(t, record.Superseded)

		assert.Equal(t, domain.StatusVoting, room.Status)
		assert.Empty(t, room.StoryName)
		for _, p := range room.Players {
			assert.False(t, p.HasVoted())
		}
	})

	t.Run("no story name leaves history untouched", func(t *testing.T) {
		room := newRoomWithVoters(t, map[string]string{"Alice": "5"})
		room.RevealVotes()

		room.ResetVotes()

		assert.Empty(t, room.History)
		assert.Equal(t, domain.StatusVoting, room.Status)
	})

	t.Run("no votes leaves history untouched but still resets", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		room.AddPlayer(domain.NewPlayer("p1", "Alice", false, true))
		room.SetStoryName("US-2")
		room.RevealVotes()

		room.ResetVotes()

		assert.Empty(t, room.History)
		assert.Empty(t, room.StoryName)
		assert.Equal(t, domain.StatusVoting, room.Status)
	})

	t.Run("observer votes are not archived", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		voter := domain.NewPlayer("p1", "Alice", false, true)
		voter.SetVote("3")
		observer := domain.NewPlayer("p2", "Eve", true, false)
		observer.SetVote("8")
		room.AddPlayer(voter)
		room.AddPlayer(observer)
		room.SetStoryName("US-3")

		room.ResetVotes()

		require.Len(t, room.History, 1)
		assert.Equal(t, map[string]string{"Alice": "3"}, room.History[0].Votes)
	})
}

func TestRoom_HistorySupersession(t *testing.T) {
	estimate := func(room *domain.Room, story, vote string) {
		room.SetStoryName(story)
		for _, p := range room.Players {
			if !p.Observer {
				p.SetVote(vote)
			}
		}
		room.ResetVotes()
	}

	t.Run("re-estimation supersedes earlier rounds", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		room.AddPlayer(domain.NewPlayer("p1", "Alice", false, true))

		estimate(room, "US-1", "5")
		estimate(room, "US-1", "8")
		estimate(room, "US-1", "13")

		require.Len(t, room.History, 3)
		assert.True(t, room.History[0].Superseded)
		assert.True(t, room.History[1].Superseded)
		assert.False(t, room.History[2].Superseded)
		assert.Equal(t, 1, room.History[0].RoundNumber)
		assert.Equal(t, 2, room.History[1].RoundNumber)
		assert.Equal(t, 3, room.History[2].RoundNumber)
	})

	t.Run("different stories never supersede each other", func(t *testing.T) {
		room := domain.NewRoom("r1", "Sprint 1")
		room.AddPlayer(domain.NewPlayer("p1", "Alice", false, true))

		estimate(room, "US-1", "5")
		estimate(room, "US-2", "8")

		require.Len(t, room.History, 2)
		assert.False(t, room.History[0].Superseded)
		assert.False(t, room.History[1].Superseded)
		assert.Equal(t, 1, room.History[1].RoundNumber)
	})
}

func TestRoom_TotalStoryPoints(t *testing.T) {
	room := domain.NewRoom("r1", "Sprint 1")
	room.AddPlayer(domain.NewPlayer("p1", "Alice", false, true))

	vote := func(story, token string) {
		room.SetStoryName(story)
		p, _ := room.Player("p1")
		p.SetVote(token)
		room.ResetVotes()
	}

	vote("US-1", "5")
	vote("US-2", "8")
	vote("US-1", "13") // supersedes the first US-1 round

	assert.InDelta(t, 21.0, room.TotalStoryPoints(), 1e-9)

	t.Run("non-numeric rounded averages are skipped", func(t *testing.T) {
		room.SetCustomScale([]string{"S", "M", "L"})
		vote("US-3", "M") // symbolic scale, no numeric average

		assert.InDelta(t, 21.0, room.TotalStoryPoints(), 1e-9)
	})
}

func TestRoom_ToggleVotingMode(t *testing.T) {
	room := domain.NewRoom("r1", "Sprint 1")
	room.RevealVotes()

	assert.Equal(t, domain.ModeAnonymous, room.ToggleVotingMode())
	assert.True(t, room.IsAnonymous())
	assert.Equal(t, domain.ModePublic, room.ToggleVotingMode())

	// Toggling never touches the voting status.
	assert.Equal(t, domain.StatusRevealed, room.Status)
}

func TestRoom_Facilitator(t *testing.T) {
	room := domain.NewRoom("r1", "Sprint 1")

	_, ok := room.Facilitator()
	assert.False(t, ok)

	room.AddPlayer(domain.NewPlayer("p1", "Alice", false, true))
	room.AddPlayer(domain.NewPlayer("p2", "Bob", false, false))

	facilitator, ok := room.Facilitator()
	require.True(t, ok)
	assert.Equal(t, "p1", facilitator.ID)
}
