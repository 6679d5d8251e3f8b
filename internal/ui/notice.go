package ui

import (
	"strconv"
	"sync"
	"time"
)

// Notice kinds.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// DefaultNoticeTTL is how long a notice stays visible.
const DefaultNoticeTTL = 3 * time.Second

// Notice is a transient notification about the outcome of an intent.
type Notice struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier queues notices until they are shown or expire.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	seq     uint64
	pending []Notice
	publish func(Notice)
}

// NewNotifier creates a notifier whose notices expire after ttl. publish, if
// non-nil, receives every notice as it is pushed.
func NewNotifier(ttl time.Duration, publish func(Notice)) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notifier{ttl: ttl, now: time.Now, publish: publish}
}

// TTL returns the notice lifetime.
func (n *Notifier) TTL() time.Duration { return n.ttl }

// Push queues a notice and forwards it to the publish hook.
func (n *Notifier) Push(kind, message string) Notice {
	n.mu.Lock()
	n.seq++
	notice := Notice{ID: strconv.FormatUint(n.seq, 10), Kind: kind, Message: message, CreatedAt: n.now()}
	n.pending = append(n.pruneLocked(), notice)
	n.mu.Unlock()

	if n.publish != nil {
		n.publish(notice)
	}
	return notice
}

// Take returns the unexpired notices and clears the queue; each notice is
// shown at most once.
func (n *Notifier) Take() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := n.pruneLocked()
	n.pending = nil
	return out
}

// Claim removes and returns the unexpired notice with id. Surfaces that
// serve several viewers use it so that each notice reaches the viewer whose
// intent produced it.
func (n *Notifier) Claim(id string) (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pending = n.pruneLocked()
	for i, notice := range n.pending {
		if notice.ID == id {
			n.pending = append(n.pending[:i], n.pending[i+1:]...)
			return notice, true
		}
	}
	return Notice{}, false
}

func (n *Notifier) pruneLocked() []Notice {
	cutoff := n.now().Add(-n.ttl)
	out := n.pending[:0]
	for _, notice := range n.pending {
		if notice.CreatedAt.After(cutoff) {
			out = append(out, notice)
		}
	}
	return out
}
