package systems

import (
	"time"

	"github.com/l1jgo/uihost/internal/core/system"
)

// ChatMessage is one line in a chat channel.
type ChatMessage struct {
	Channel string
	Sender  string
	Text    string
}

// Chat keeps a bounded message history and hands new messages to listeners
// once per tick.
type Chat struct {
	history   []ChatMessage
	pending   []ChatMessage
	listeners []chatListener
	nextID    int
	limit     int
}

type chatListener struct {
	id int
	fn func(ChatMessage)
}

func NewChat(limit int) *Chat {
	if limit <= 0 {
		limit = 100
	}
	return &Chat{limit: limit}
}

func (c *Chat) Phase() system.Phase { return system.PhaseUpdate }

// Update delivers messages posted since the previous tick.
func (c *Chat) Update(_ time.Duration) {
	if len(c.pending) == 0 {
		return
	}
	batch := c.pending
	c.pending = nil
	for _, msg := range batch {
		c.history = append(c.history, msg)
		// Listeners may stop themselves or register others while handling msg.
		ls := append([]chatListener(nil), c.listeners...)
		for _, l := range ls {
			if c.listening(l.id) {
				l.fn(msg)
			}
		}
	}
	if over := len(c.history) - c.limit; over > 0 {
		c.history = append(c.history[:0], c.history[over:]...)
	}
}

// Post queues a message for the next tick.
func (c *Chat) Post(channel, sender, text string) {
	c.pending = append(c.pending, ChatMessage{Channel: channel, Sender: sender, Text: text})
}

// Listen registers fn for delivered messages. The returned func removes it.
func (c *Chat) Listen(fn func(ChatMessage)) (stop func()) {
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, chatListener{id: id, fn: fn})
	return func() {
		for i, l := range c.listeners {
			if l.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Chat) listening(id int) bool {
	for _, l := range c.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// Listeners returns the number of registered listeners.
func (c *Chat) Listeners() int { return len(c.listeners) }

// History returns delivered messages, oldest first.
func (c *Chat) History() []ChatMessage {
	out := make([]ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}
