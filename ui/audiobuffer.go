package ui

import (
	"io"
	"sync"
)

// AudioRingBuffer is a thread-safe ring of interleaved stereo int16
// samples. The emulation goroutine writes samples and oto's player reads
// them back as little-endian bytes. Read blocks when empty; Write drops
// the oldest samples on overflow.
type AudioRingBuffer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     []int16
	readPos int
	count   int
	closed  bool
	oddByte int // pending high byte of a split sample, or -1
}

// NewAudioRingBuffer creates a ring holding capacity samples.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	rb := &AudioRingBuffer{
		buf:     make([]int16, capacity),
		oddByte: -1,
	}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write appends samples, dropping the oldest ones when full.
func (rb *AudioRingBuffer) Write(samples []int16) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed || len(samples) == 0 {
		return
	}

	capacity := len(rb.buf)
	if len(samples) > capacity {
		samples = samples[len(samples)-capacity:]
	}
	if overflow := rb.count + len(samples) - capacity; overflow > 0 {
		rb.readPos = (rb.readPos + overflow) % capacity
		rb.count -= overflow
	}

	writePos := (rb.readPos + rb.count) % capacity
	n := copy(rb.buf[writePos:], samples)
	copy(rb.buf, samples[n:])
	rb.count += len(samples)

	rb.cond.Signal()
}

// Read implements io.Reader, producing little-endian bytes. It blocks
// until samples are available and returns io.EOF once closed and empty.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 && rb.oddByte < 0 {
		if rb.closed {
			return 0, io.EOF
		}
		rb.cond.Wait()
	}

	n := 0
	if rb.oddByte >= 0 && len(p) > 0 {
		p[0] = byte(rb.oddByte)
		rb.oddByte = -1
		n++
	}
	capacity := len(rb.buf)
	for n < len(p) && rb.count > 0 {
		s := rb.buf[rb.readPos]
		rb.readPos = (rb.readPos + 1) % capacity
		rb.count--
		p[n] = byte(s)
		n++
		if n == len(p) {
			rb.oddByte = int(byte(s >> 8))
			break
		}
		p[n] = byte(s >> 8)
		n++
	}
	return n, nil
}

// Buffered returns the number of bytes currently in the buffer.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	n := rb.count * 2
	if rb.oddByte >= 0 {
		n++
	}
	return n
}

// Clear discards all buffered samples.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.readPos = 0
	rb.count = 0
	rb.oddByte = -1
}

// Close signals shutdown and unblocks any goroutine waiting in Read.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.closed = true
	rb.cond.Broadcast()
}
