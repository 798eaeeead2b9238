package bot

import "sync"

type session struct {
	mu    sync.Mutex
	state UserState
}

// SessionStore keeps one conversation session per chat. Events for the
// same chat apply one at a time under the chat's own lock, so two
// near-simultaneous inputs can never interleave into a torn draft;
// distinct chats proceed in parallel.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*session),
	}
}

// Do runs fn with exclusive access to the chat's state.
func (s *SessionStore) Do(chatID int64, fn func(state *UserState)) {
	s.mu.Lock()
	sess, exists := s.sessions[chatID]
	if !exists {
		sess = &session{}
		s.sessions[chatID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	fn(&sess.state)
}
