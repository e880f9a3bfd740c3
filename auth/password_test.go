package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	t.Run("should check a hashed password", func(t *testing.T) {
		req := require.New(t)

		hash, err := HashPassword("pw1")
		req.NoError(err)
		req.NotEqual("pw1", hash)

		req.True(CheckPassword("pw1", hash))
		req.False(CheckPassword("pw2", hash))
	})

	t.Run("should salt every hash", func(t *testing.T) {
		req := require.New(t)

		h1, err := HashPassword("same-password")
		req.NoError(err)
		h2, err := HashPassword("same-password")
		req.NoError(err)
		req.NotEqual(h1, h2)
	})

	t.Run("should never match an empty stored hash", func(t *testing.T) {
		require.False(t, CheckPassword("anything", ""))
	})
}
