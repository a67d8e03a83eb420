package kafka

import (
	"sync"

	"github.com/segmentio/kafka-go"
)

// offsetTracker turns out-of-order worker acknowledgements into in-order
// consumer-group commits. Group commits are per-partition watermarks: a
// commit at offset N marks everything below N consumed, so committing a
// later message while an earlier one is still unhandled would bury it and
// the broker would never redeliver. The tracker records fetch order per
// partition and only releases the newest contiguously acknowledged message
// for commit.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[int]*partitionOffsets
}

type partitionOffsets struct {
	pending []kafka.Message // fetch order, head is the commit barrier
	acked   map[int64]bool  // handled out of order, waiting on the barrier
	ready   kafka.Message   // newest message cleared for commit
	dirty   bool            // ready not yet handed to the committer
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[int]*partitionOffsets)}
}

func (t *offsetTracker) partition(id int) *partitionOffsets {
	p, ok := t.partitions[id]
	if !ok {
		p = &partitionOffsets{acked: make(map[int64]bool)}
		t.partitions[id] = p
	}
	return p
}

// observe records a fetched message. Fetch order defines commit order, so
// offset gaps (compaction, control records) cannot stall the watermark.
func (t *offsetTracker) observe(msg kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.partition(msg.Partition)
	p.pending = append(p.pending, msg)
}

// ack marks a message handled and reports whether its partition watermark
// advanced, i.e. whether there is something new to commit.
func (t *offsetTracker) ack(msg kafka.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.partition(msg.Partition)
	p.acked[msg.Offset] = true

	advanced := false
	for len(p.pending) > 0 && p.acked[p.pending[0].Offset] {
		delete(p.acked, p.pending[0].Offset)
		p.ready = p.pending[0]
		p.pending = p.pending[1:]
		p.dirty = true
		advanced = true
	}
	return advanced
}

// commitReady returns, per partition, the newest message cleared for
// commit since the last call. Intermediate watermark positions collapse
// into the newest one.
func (t *offsetTracker) commitReady() []kafka.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	var msgs []kafka.Message
	for _, p := range t.partitions {
		if p.dirty {
			msgs = append(msgs, p.ready)
			p.dirty = false
		}
	}
	return msgs
}
