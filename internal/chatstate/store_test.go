package chatstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	t.Run("First access initializes normal/initial", func(t *testing.T) {
		store := NewMemoryStore()
		state := store.Get(7)
		assert.Equal(t, ModeNormal, state.Mode)
		assert.Equal(t, PhaseInitial, state.Phase)
		assert.Zero(t, state.RoundCount)
	})

	t.Run("Set round-trips and rooms are independent", func(t *testing.T) {
		store := NewMemoryStore()
		store.Set(1, State{Mode: ModeEnding, Phase: PhaseExtended, RoundCount: 3})

		assert.Equal(t, ModeEnding, store.Get(1).Mode)
		assert.Equal(t, ModeNormal, store.Get(2).Mode)
	})

	t.Run("Delete resets a room to the initial state", func(t *testing.T) {
		store := NewMemoryStore()
		store.Set(1, State{Mode: ModeDone, Phase: PhaseDone})
		store.Delete(1)
		assert.Equal(t, ModeNormal, store.Get(1).Mode)
	})
}
