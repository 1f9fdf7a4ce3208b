package handler

import (
	"sync"
	"testing"

	"katrina-one-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPickWinnerCoversAllEntries(t *testing.T) {
	entries := []domain.BallotEntry{
		{UserID: 1, UserName: "An"},
		{UserID: 2, UserName: "Bình"},
		{UserID: 3, UserName: "Chi"},
	}
	valid := map[int64]bool{1: true, 2: true, 3: true}

	seen := map[int64]bool{}
	for i := 0; i < 500; i++ {
		w := pickWinner(entries)
		assert.True(t, valid[w.UserID])
		seen[w.UserID] = true
	}
	assert.Len(t, seen, 3)
}

func TestPickWinnerConcurrent(t *testing.T) {
	entries := []domain.BallotEntry{
		{UserID: 1, UserName: "An"},
		{UserID: 2, UserName: "Bình"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				w := pickWinner(entries)
				if w.UserID != 1 && w.UserID != 2 {
					t.Errorf("unexpected winner %d", w.UserID)
				}
			}
		}()
	}
	wg.Wait()
}

func TestPickWinnerSingleEntry(t *testing.T) {
	entries := []domain.BallotEntry{{UserID: 7, UserName: "Dũng"}}
	assert.Equal(t, int64(7), pickWinner(entries).UserID)
}
