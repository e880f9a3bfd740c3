package repository

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rtchat/errs"
)

func TestInMemoryRoomRepo(t *testing.T) {
	t.Run("should list rooms in creation order", func(t *testing.T) {
		req := require.New(t)
		repo := NewInMemoryRoomRepo()

		names := []string{"alpha", "beta", "gamma"}
		for _, n := range names {
			_, err := repo.Create(n, "creator")
			req.NoError(err)
		}

		rooms, err := repo.List()
		req.NoError(err)
		req.Len(rooms, 3)
		for i, n := range names {
			req.Equal(n, rooms[i].Name)
		}
	})

	t.Run("should allow duplicate names", func(t *testing.T) {
		req := require.New(t)
		repo := NewInMemoryRoomRepo()

		r1, err := repo.Create("General", "creator")
		req.NoError(err)
		r2, err := repo.Create("General", "creator")
		req.NoError(err)
		req.NotEqual(r1.ID, r2.ID)
	})

	t.Run("should report a missing room", func(t *testing.T) {
		repo := NewInMemoryRoomRepo()
		_, err := repo.FindByID("nope")
		require.ErrorIs(t, err, errs.ErrNotFound)
	})
}
