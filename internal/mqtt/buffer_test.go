package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(b byte) bufferedMsg {
	return bufferedMsg{topic: Topic, payload: []byte{b}}
}

func payloads(msgs []bufferedMsg) []byte {
	out := make([]byte, len(msgs))
	for i, m := range msgs {
		out[i] = m.payload[0]
	}
	return out
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	assert.Nil(t, rb.drainAll())
	assert.Equal(t, 0, rb.len())
}

func TestRingBufferKeepsOrder(t *testing.T) {
	rb := newRingBuffer(10)
	for i := byte(0); i < 5; i++ {
		rb.push(msg(i))
	}

	assert.Equal(t, 5, rb.len())
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, payloads(rb.drainAll()))
	assert.Nil(t, rb.drainAll(), "second drain should be empty")
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	rb := newRingBuffer(5)
	for i := byte(0); i < 8; i++ {
		rb.push(msg(i))
	}

	assert.Equal(t, 5, rb.len())
	assert.Equal(t, 3, rb.dropped)
	assert.Equal(t, []byte{3, 4, 5, 6, 7}, payloads(rb.drainAll()))
	assert.Equal(t, 0, rb.dropped)
}

func TestRingBufferReuseAfterDrain(t *testing.T) {
	rb := newRingBuffer(3)
	rb.push(msg(1))
	rb.push(msg(2))
	require.Len(t, rb.drainAll(), 2)

	for i := byte(10); i < 14; i++ {
		rb.push(msg(i))
	}
	assert.Equal(t, []byte{11, 12, 13}, payloads(rb.drainAll()))
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(2)
	in := bufferedMsg{topic: TopicSystem, payload: []byte(`{"x":1}`), qos: 1, retained: true}
	rb.push(in)

	out := rb.drainAll()
	require.Len(t, out, 1)
	assert.Equal(t, in, out[0])
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	rb := newRingBuffer(0)
	rb.push(msg(1))
	rb.push(msg(2))
	assert.Equal(t, []byte{2}, payloads(rb.drainAll()))
}
