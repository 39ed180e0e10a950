// ABOUTME: Fixed-capacity ring buffer for resampled audio
// ABOUTME: Overwrites the oldest unread samples instead of blocking the producer
package output

import "sync"

// RingBuffer provides a thread-safe circular buffer for audio samples.
// A push that would overrun unread data evicts the oldest samples first.
type RingBuffer struct {
	buffer []float32
	start  int // next read position
	end    int // next write position
	count  int // samples currently readable
	mu     sync.Mutex
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		buffer: make([]float32, capacity),
	}
}

// Push appends samples and returns how many unread samples were evicted
func (rb *RingBuffer) Push(samples []float32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	size := len(rb.buffer)
	n := len(samples)
	if n == 0 {
		return 0
	}

	// Only the newest size samples can survive
	if n >= size {
		evicted := rb.count + n - size
		copy(rb.buffer, samples[n-size:])
		rb.start = 0
		rb.end = 0
		rb.count = size
		return evicted
	}

	first := copy(rb.buffer[rb.end:], samples)
	copy(rb.buffer, samples[first:])
	rb.end = (rb.end + n) % size

	rb.count += n
	evicted := 0
	if rb.count > size {
		evicted = rb.count - size
		rb.start = (rb.start + evicted) % size
		rb.count = size
	}
	return evicted
}

// Pull fills dst from the oldest unread sample, padding any shortfall with
// neutral. Returns the number of real samples copied.
func (rb *RingBuffer) Pull(dst []float32, neutral float32) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(dst)
	if n > rb.count {
		n = rb.count
	}

	first := copy(dst[:n], rb.buffer[rb.start:])
	copy(dst[first:n], rb.buffer)
	rb.start = (rb.start + n) % len(rb.buffer)
	rb.count -= n

	// Underrun: fill with the idle level
	for i := n; i < len(dst); i++ {
		dst[i] = neutral
	}

	return n
}

// Remaining returns the number of unread samples
func (rb *RingBuffer) Remaining() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Capacity returns the maximum number of unread samples
func (rb *RingBuffer) Capacity() int {
	return len(rb.buffer)
}

// Reset drops all unread samples
func (rb *RingBuffer) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.start = 0
	rb.end = 0
	rb.count = 0
}
