// Package messaging connects simulation modules through typed output and input messages. An output
// message is written by exactly one module; any number of input messages may subscribe to it.
package messaging

import (
	"sync"
)

// MsgHeader describes the last write of a message.
type MsgHeader struct {
	IsWritten   bool
	TimeWritten uint64 // [ns]
	ModuleID    int64
}

// OutMsg holds the latest payload written by its owner.
type OutMsg[T any] struct {
	mu          sync.RWMutex
	payload     T
	header      MsgHeader
	subscribers int
}

// NewOutMsg returns an unlinked, unwritten message.
func NewOutMsg[T any]() *OutMsg[T] {
	return &OutMsg[T]{}
}

// ZeroPayload returns the zero value of the payload type.
func (m *OutMsg[T]) ZeroPayload() T {
	var zero T
	return zero
}

// Write stores payload as the latest value.
func (m *OutMsg[T]) Write(payload T, moduleID int64, clock uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = payload
	m.header = MsgHeader{IsWritten: true, TimeWritten: clock, ModuleID: moduleID}
}

// IsLinked reports whether anything subscribed to the message.
func (m *OutMsg[T]) IsLinked() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subscribers > 0
}

// Read returns the latest payload and its header.
func (m *OutMsg[T]) Read() (T, MsgHeader) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payload, m.header
}

// AddSubscriber returns a new input message subscribed to m.
func (m *OutMsg[T]) AddSubscriber() *InMsg[T] {
	in := &InMsg[T]{}
	in.SubscribeTo(m)
	return in
}

// InMsg reads the payload of the output message it is subscribed to.
type InMsg[T any] struct {
	src *OutMsg[T]
}

// SubscribeTo links the input message to out.
func (in *InMsg[T]) SubscribeTo(out *OutMsg[T]) {
	if out == nil {
		return
	}
	out.mu.Lock()
	out.subscribers++
	out.mu.Unlock()
	in.src = out
}

// IsLinked reports whether the input message has a source.
func (in *InMsg[T]) IsLinked() bool {
	return in != nil && in.src != nil
}

// IsWritten reports whether the source has been written at least once.
func (in *InMsg[T]) IsWritten() bool {
	if !in.IsLinked() {
		return false
	}
	_, h := in.src.Read()
	return h.IsWritten
}

// Read returns the source payload, or the zero payload when unlinked.
func (in *InMsg[T]) Read() T {
	if !in.IsLinked() {
		var zero T
		return zero
	}
	p, _ := in.src.Read()
	return p
}
