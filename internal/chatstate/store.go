package chatstate

import "sync"

// Dialogue modes and phases of the guided chat state machine.
const (
	ModeNormal   = "normal"
	ModeExtended = "extended"
	ModeEnding   = "ending"
	ModeDone     = "done"

	PhaseInitial  = "initial"
	PhaseExtended = "extended"
	PhaseDone     = "done"
)

// State is the per-room conversation state. It is process-resident and
// rebuildable from the persisted question count of a room's message log.
type State struct {
	Mode       string
	Phase      string
	RoundCount int
}

// Store keeps conversation state keyed by room id. It is injected into the
// chat service rather than held in a package-level map so it can be swapped
// for a distributed cache in a multi-process deployment.
type Store interface {
	// Get returns the state for a room, initializing (normal, initial, 0) on
	// first access.
	Get(roomID int64) State
	Set(roomID int64, state State)
	Delete(roomID int64)
}

type memoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewMemoryStore creates an in-process Store.
func NewMemoryStore() Store {
	return &memoryStore{states: make(map[int64]State)}
}

func (s *memoryStore) Get(roomID int64) State {
	s.mu.RLock()
	state, ok := s.states[roomID]
	s.mu.RUnlock()
	if !ok {
		return State{Mode: ModeNormal, Phase: PhaseInitial, RoundCount: 0}
	}
	return state
}

func (s *memoryStore) Set(roomID int64, state State) {
	s.mu.Lock()
	s.states[roomID] = state
	s.mu.Unlock()
}

func (s *memoryStore) Delete(roomID int64) {
	s.mu.Lock()
	delete(s.states, roomID)
	s.mu.Unlock()
}
