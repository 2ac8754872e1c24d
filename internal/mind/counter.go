package mind

// DefaultJoinThreshold is how many unanswered messages make the participant join in.
const DefaultJoinThreshold = 10

// Counter counts messages per channel against a threshold.
// The comparison is level-triggered: once reached, every Increment reports true
// until Reset is called. Not safe for concurrent use.
type Counter struct {
	threshold int
	counts    map[string]int
}

// NewCounter creates a Counter with the given threshold.
func NewCounter(threshold int) *Counter {
	if threshold <= 0 {
		threshold = DefaultJoinThreshold
	}
	return &Counter{
		threshold: threshold,
		counts:    make(map[string]int),
	}
}

// Increment bumps the channel count and reports whether it reached the threshold.
func (c *Counter) Increment(channelID string) bool {
	c.counts[channelID]++
	return c.counts[channelID] >= c.threshold
}

// Reset sets the channel count back to zero.
func (c *Counter) Reset(channelID string) {
	c.counts[channelID] = 0
}

// Reached reports whether the channel count is at or above the threshold.
func (c *Counter) Reached(channelID string) bool {
	return c.counts[channelID] >= c.threshold
}

// Count returns the current channel count.
func (c *Counter) Count(channelID string) int {
	return c.counts[channelID]
}
