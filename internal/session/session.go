// Package session tracks active interactive sessions: at most one per
// namespaced key, created by a start command, mutated by inbound messages and
// removed on completion, explicit end, or shutdown.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrAlreadyActive is returned by Start when a session already exists for the
// key. Features surface it to the user as a rejection.
var ErrAlreadyActive = errors.New("session already active")

// Lifecycle states shared by all features. Concrete features may skip
// StateSelecting when they need no configuration step. No transition is valid
// out of StateEnded.
const (
	StateCreated   = "created"
	StateSelecting = "selecting"
	StateActive    = "active"
	StateEnded     = "ended"
)

// Turn roles for transcript entries.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Turn is one transcript entry: either something a user said or something the
// bot replied. The explicit role tag replaces presence-checking on optional
// fields.
type Turn struct {
	Role string    `json:"role"`
	Who  string    `json:"who,omitempty"`
	Text string    `json:"text"`
	When time.Time `json:"when"`
}

// UserTurn builds a user-authored transcript entry.
func UserTurn(who, text string) Turn {
	return Turn{Role: RoleUser, Who: who, Text: text, When: time.Now().UTC()}
}

// BotTurn builds a bot-authored transcript entry.
func BotTurn(text string) Turn {
	return Turn{Role: RoleBot, Text: text, When: time.Now().UTC()}
}

// Session is the state of one in-progress interactive feature.
type Session struct {
	Key       string
	Type      string
	State     string
	Mode      string
	OwnerID   string
	ChannelID string
	StartedAt time.Time
	Turns     []Turn

	// Data carries feature-specific state (game boards, scores). Only the
	// owning feature reads it, always under Registry.Update.
	Data any
}

// Duration reports how long the session has been running.
func (s *Session) Duration() time.Duration {
	return time.Since(s.StartedAt)
}

// AppendTurn records a transcript entry, keeping at most limit entries.
func (s *Session) AppendTurn(turn Turn, limit int) {
	s.Turns = append(s.Turns, turn)
	if limit > 0 && len(s.Turns) > limit {
		s.Turns = s.Turns[len(s.Turns)-limit:]
	}
}

// UserTurnCount counts the user-authored transcript entries.
func (s *Session) UserTurnCount() int {
	n := 0
	for _, turn := range s.Turns {
		if turn.Role == RoleUser {
			n++
		}
	}
	return n
}

// Key builds a namespaced session key so features sharing a channel or user
// never collide.
func Key(namespace, id string) string {
	return namespace + ":" + id
}

// Registry is a keyed table of active sessions. The backing map is injected
// so features can be tested in isolation against a fresh registry.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Start creates a session for key, failing with ErrAlreadyActive when one
// exists.
func (r *Registry) Start(key, typeTag, state string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyActive, key)
	}
	s := &Session{
		Key:       key,
		Type:      typeTag,
		State:     state,
		StartedAt: time.Now().UTC(),
	}
	r.sessions[key] = s
	return s, nil
}

// StartWith creates a session like Start and runs configure on it before
// the registry lock is released, so concurrent readers never observe a
// half-initialized session.
func (r *Registry) StartWith(key, typeTag, state string, configure func(*Session)) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyActive, key)
	}
	s := &Session{
		Key:       key,
		Type:      typeTag,
		State:     state,
		StartedAt: time.Now().UTC(),
	}
	if configure != nil {
		configure(s)
	}
	r.sessions[key] = s
	return s, nil
}

// Get returns the session for key, if any.
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Update applies mutator to the session for key under the registry lock.
// Absent keys and ended sessions are a no-op, reported by the return value.
func (r *Registry) Update(key string, mutator func(*Session)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok || s.State == StateEnded {
		return false
	}
	mutator(s)
	return true
}

// End removes and returns the session for key so the caller can do final
// accounting (ledger payout, history persistence). Absent keys return false.
func (r *Registry) End(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		return nil, false
	}
	delete(r.sessions, key)
	s.State = StateEnded
	return s, true
}

// Keys returns the active keys in a namespace. Used by shutdown sweeps that
// end each feature's sessions sequentially.
func (r *Registry) Keys(namespace string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := namespace + ":"
	var keys []string
	for key := range r.sessions {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len reports the number of active sessions across all namespaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
