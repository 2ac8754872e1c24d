package mind

import "strings"

// DefaultHistorySize is how many messages are kept per channel.
const DefaultHistorySize = 20

// Entry is one message in a channel history.
type Entry struct {
	Author string
	Text   string
	Self   bool // written by the participant
}

// History keeps a bounded, chronological log of recent messages per channel.
// Not safe for concurrent use: the Engine loop is its only owner.
type History struct {
	size int
	logs map[string][]Entry
}

// NewHistory creates a History keeping at most size entries per channel.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		logs: make(map[string][]Entry),
	}
}

// Add appends a message to the channel log, evicting the oldest entry when full.
func (h *History) Add(channelID, author, text string, self bool) {
	buf := h.logs[channelID]
	e := Entry{Author: author, Text: text, Self: self}
	if len(buf) < h.size {
		h.logs[channelID] = append(buf, e)
		return
	}
	copy(buf, buf[1:])
	buf[len(buf)-1] = e
}

// Entries returns a copy of the channel log, oldest first.
func (h *History) Entries(channelID string) []Entry {
	buf := h.logs[channelID]
	out := make([]Entry, len(buf))
	copy(out, buf)
	return out
}

// Len returns the number of entries kept for the channel.
func (h *History) Len(channelID string) int {
	return len(h.logs[channelID])
}

// Formatted renders the channel log as "author: text" lines.
// The participant's own lines carry a " (you)" suffix on the author.
func (h *History) Formatted(channelID string) string {
	buf := h.logs[channelID]
	if len(buf) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range buf {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(e.Author)
		if e.Self {
			sb.WriteString(" (you)")
		}
		sb.WriteString(": ")
		sb.WriteString(e.Text)
	}
	return sb.String()
}
