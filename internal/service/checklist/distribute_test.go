package checklist

import (
	"math/rand"
	"testing"
	"time"

	"katrina-one-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDateStaysInInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		d := RandomDate(rng, from, to, false)
		assert.False(t, d.Before(from))
		assert.False(t, d.After(to))
	}
}

func TestRandomDateExcludesWeekends(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 500; i++ {
		d := RandomDate(rng, from, to, true)
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
}

func TestRandomDateWeekendOnlyIntervalFallsThrough(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// 2025-05-03/04 is a Saturday/Sunday pair.
	from := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)

	d := RandomDate(rng, from, to, true)
	assert.False(t, d.Before(from))
	assert.False(t, d.After(to))
}

func TestRandomDateSingleDay(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	day := time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day, RandomDate(rng, day, day, false))
}

func TestDistributeCoversEveryTask(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	tasks := []domain.Task{
		{ID: "ve-sinh-kho"},
		{ID: "kiem-ke-ly"},
		{ID: "lau-quat-tran"},
	}
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 14, 0, 0, 0, 0, time.UTC)

	out := Distribute(rng, tasks, from, to, true)
	require.Len(t, out, len(tasks))
	for _, task := range tasks {
		d, ok := out[task.ID]
		require.True(t, ok)
		assert.False(t, d.Before(from))
		assert.False(t, d.After(to))
	}
}
