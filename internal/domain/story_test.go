package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmoreno/scrumpoker/internal/domain"
)

func TestNewStoryRecord(t *testing.T) {
	votes := map[string]string{"Alice": "5", "Bob": "8"}
	summary := map[string]int{"5": 1, "8": 1}
	avg := 6.5
	rounded := "5"

	record := domain.NewStoryRecord("US-1", votes, summary, &avg, &rounded, 1)

	assert.Equal(t, "US-1", record.StoryName)
	assert.Equal(t, 2, record.TotalVoters())
	assert.True(t, record.HasNumericAverage())

	t.Run("copies are independent of caller maps", func(t *testing.T) {
		votes["Carol"] = "13"
		summary["13"] = 1

		assert.Len(t, record.Votes, 2)
		assert.Len(t, record.VoteSummary, 2)
	})
}

func TestStoryRecord_Consensus(t *testing.T) {
	t.Run("unanimous round", func(t *testing.T) {
		record := domain.NewStoryRecord("US-1",
			map[string]string{"Alice": "8", "Bob": "8"},
			map[string]int{"8": 2}, nil, nil, 1)

		token, ok := record.Consensus()
		require.True(t, ok)
		assert.Equal(t, "8", token)
	})

	t.Run("split round", func(t *testing.T) {
		record := domain.NewStoryRecord("US-1",
			map[string]string{"Alice": "5", "Bob": "8"},
			map[string]int{"5": 1, "8": 1}, nil, nil, 1)

		_, ok := record.Consensus()
		assert.False(t, ok)
	})

	t.Run("no votes", func(t *testing.T) {
		record := domain.NewStoryRecord("US-1", nil, nil, nil, nil, 1)

		_, ok := record.Consensus()
		assert.False(t, ok)
	})
}
