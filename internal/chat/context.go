// Package chat turns natural-language questions about a user's
// statements into validated SQL, executes it and explains the result.
package chat

import "sync"

// historyLimit bounds how many recent questions feed follow-up
// translation.
const historyLimit = 6

// Conversations tracks each user's recent questions so vague follow-ups
// like "go deeper into Food" can reuse the earlier question's filters.
type Conversations struct {
	mu      sync.Mutex
	history map[int64][]string
}

func NewConversations() *Conversations {
	return &Conversations{history: make(map[int64][]string)}
}

// Remember appends a question to the user's history, evicting the
// oldest entry once the limit is reached.
func (c *Conversations) Remember(userID int64, question string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := append(c.history[userID], question)
	if len(h) > historyLimit {
		h = h[len(h)-historyLimit:]
	}
	c.history[userID] = h
}

// Recent returns a copy of the user's question history, oldest first.
func (c *Conversations) Recent(userID int64) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.history[userID]
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// Reset clears a user's history, e.g. on logout.
func (c *Conversations) Reset(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.history, userID)
}
