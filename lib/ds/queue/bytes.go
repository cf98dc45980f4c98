package queue

import "bytes"

// Bytes is a FIFO of bytes. Bytes are enqueued at the tail and dequeued
// from the head. Dequeued bytes are never handed out again.
type Bytes struct {
	buf  []byte
	head uint // start of unread bytes in buf.
}

func NewBytes(initialCap uint) *Bytes {
	return &Bytes{buf: make([]byte, 0, initialCap)}
}

// Enqueue appends p to the tail.
func (q *Bytes) Enqueue(p []byte) {
	if q.head > 0 && q.head >= uint(len(q.buf))/2 {
		// More than half of buf is already consumed. Reclaim it.
		n := copy(q.buf, q.buf[q.head:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	q.buf = append(q.buf, p...)
}

// Dequeue removes at most n bytes from the head and returns them.
func (q *Bytes) Dequeue(n uint) []byte {
	n = min(n, q.Len())

	out := make([]byte, n)
	copy(out, q.buf[q.head:q.head+n])
	q.head += n

	if q.head == uint(len(q.buf)) {
		q.buf = q.buf[:0]
		q.head = 0
	}

	return out
}

// IndexByte returns the offset from the head of the first c at or after
// from, or -1 if c is not queued.
func (q *Bytes) IndexByte(c byte, from uint) int {
	if from >= q.Len() {
		return -1
	}

	idx := bytes.IndexByte(q.buf[q.head+from:], c)
	if idx < 0 {
		return -1
	}
	return int(from) + idx
}

// Len returns the number of unread bytes.
func (q *Bytes) Len() uint {
	return uint(len(q.buf)) - q.head
}
