package bot

import (
	"sync"
	"time"

	"github.com/steelproxy/twitta/internal/models"
)

// Counters holds the process-wide running totals. They are mutated only
// by the dispatch loop; observers read lock-free best-effort snapshots
// through Snapshot.
type Counters struct {
	mu            sync.RWMutex
	replyCount    int
	errorCount    int
	lastReply     time.Time
	statusMessage string
}

func (c *Counters) recordReply(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replyCount++
	c.lastReply = at
}

func (c *Counters) recordError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
	c.statusMessage = message
}

func (c *Counters) setStatus(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusMessage = message
}

// Snapshot returns the current totals as a monitoring view.
func (c *Counters) Snapshot() models.Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return models.Summary{
		GeneratedAt:   time.Now(),
		ReplyCount:    c.replyCount,
		LastReply:     c.lastReply,
		ErrorCount:    c.errorCount,
		StatusMessage: c.statusMessage,
	}
}
