package sim

import (
	"log"
)

// BufferedSender is the send stage of a component. Producers inside the
// component enqueue messages when CanSend allows, and Tick moves them into the
// port one per call, keeping the order.
type BufferedSender interface {
	// CanSend checks if the buffer has room for count more messages.
	CanSend(count int) bool

	// Send enqueues a message to be sent out by Tick.
	Send(msg Msg)

	// Size returns the number of messages waiting.
	Size() int

	// Clear removes all the messages to send
	Clear()

	// Tick tries to send one message out. If successful, Tick returns true.
	Tick() bool
}

// NewBufferedSender creates a BufferedSender that drains buffer into port.
func NewBufferedSender(port Port, buffer Buffer) BufferedSender {
	return &bufferedSenderImpl{
		port:   port,
		buffer: buffer,
	}
}

type bufferedSenderImpl struct {
	port   Port
	buffer Buffer
}

func (s *bufferedSenderImpl) CanSend(count int) bool {
	if count > s.buffer.Capacity() {
		log.Panic("trying to send number of messages exceeding capacity")
	}

	return count+s.buffer.Size() <= s.buffer.Capacity()
}

func (s *bufferedSenderImpl) Send(msg Msg) {
	s.buffer.Push(msg)
}

func (s *bufferedSenderImpl) Size() int {
	return s.buffer.Size()
}

func (s *bufferedSenderImpl) Clear() {
	s.buffer.Clear()
}

func (s *bufferedSenderImpl) Tick() bool {
	item := s.buffer.Peek()
	if item == nil {
		return false
	}

	if err := s.port.Send(item.(Msg)); err != nil {
		return false
	}

	s.buffer.Pop()

	return true
}
