package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rtchat/models"
)

func TestInMemoryMessageRepo(t *testing.T) {
	t.Run("should preserve append order", func(t *testing.T) {
		req := require.New(t)
		repo := NewInMemoryMessageRepo()

		for i := 0; i < 10; i++ {
			_, err := repo.Append(&models.Message{RoomID: "r1", UserID: "u1", Content: fmt.Sprintf("m%d", i)})
			req.NoError(err)
		}

		msgs, err := repo.ListByRoom("r1", 10, time.Time{})
		req.NoError(err)
		req.Len(msgs, 10)
		for i, m := range msgs {
			req.Equal(fmt.Sprintf("m%d", i), m.Content)
		}
	})

	t.Run("should return the most recent limit messages chronologically", func(t *testing.T) {
		req := require.New(t)
		repo := NewInMemoryMessageRepo()

		for i := 0; i < 5; i++ {
			_, err := repo.Append(&models.Message{RoomID: "r1", UserID: "u1", Content: fmt.Sprintf("m%d", i)})
			req.NoError(err)
		}

		msgs, err := repo.ListByRoom("r1", 2, time.Time{})
		req.NoError(err)
		req.Len(msgs, 2)
		req.Equal("m3", msgs[0].Content)
		req.Equal("m4", msgs[1].Content)
	})

	t.Run("should honor the before cursor strictly", func(t *testing.T) {
		req := require.New(t)
		repo := NewInMemoryMessageRepo()

		base := time.Now()
		for i := 0; i < 5; i++ {
			_, err := repo.Append(&models.Message{
				RoomID:    "r1",
				UserID:    "u1",
				Content:   fmt.Sprintf("m%d", i),
				Timestamp: base.Add(time.Duration(i) * time.Second),
			})
			req.NoError(err)
		}

		msgs, err := repo.ListByRoom("r1", 10, base.Add(3*time.Second))
		req.NoError(err)
		req.Len(msgs, 3)
		req.Equal("m2", msgs[len(msgs)-1].Content)
	})

	t.Run("should return an empty slice for an unknown room", func(t *testing.T) {
		req := require.New(t)
		repo := NewInMemoryMessageRepo()

		msgs, err := repo.ListByRoom("ghost", 10, time.Time{})
		req.NoError(err)
		req.Empty(msgs)
	})
}
