// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync"
)

// queue sizes
const (
	paymentQueueSize = 1000
	testQueueSize    = 50
)

// Message - a command and its encoded parameters
type Message struct {
	Command    string
	Parameters [][]byte
}

// Queue - a single consumer queue
//
// a full queue drops new messages so a slow consumer never blocks
// the sender
type Queue struct {
	sync.Mutex
	c       chan Message
	dropped uint64
}

// BroadcastQueue - every listener receives every message sent after
// it started listening
type BroadcastQueue struct {
	sync.Mutex
	listeners []chan Message
}

type busses struct {
	Payments  *Queue          // payment state changes
	Routes    *BroadcastQueue // routing table changes
	TestQueue *Queue
}

// Bus - all the queues of the connector
var Bus = busses{
	Payments:  newQueue(paymentQueueSize),
	Routes:    &BroadcastQueue{},
	TestQueue: newQueue(testQueueSize),
}

func newQueue(size int) *Queue {
	return &Queue{
		c: make(chan Message, size),
	}
}

// Send - queue a command, returns false if the queue was full
func (q *Queue) Send(command string, parameters ...[]byte) bool {
	select {
	case q.c <- Message{Command: command, Parameters: parameters}:
		return true
	default:
		q.Lock()
		q.dropped += 1
		q.Unlock()
		return false
	}
}

// Chan - channel to read from
func (q *Queue) Chan() <-chan Message {
	return q.c
}

// Dropped - number of messages lost to a full queue
func (q *Queue) Dropped() uint64 {
	q.Lock()
	defer q.Unlock()
	return q.dropped
}

// Send - deliver a command to every listener, a listener whose
// buffer is full misses it
func (b *BroadcastQueue) Send(command string, parameters ...[]byte) {
	m := Message{
		Command:    command,
		Parameters: parameters,
	}

	b.Lock()
	defer b.Unlock()
	for _, l := range b.listeners {
		select {
		case l <- m:
		default:
		}
	}
}

// Chan - start listening with a buffer of size
func (b *BroadcastQueue) Chan(size int) <-chan Message {
	if size < 0 {
		size = 0
	}
	c := make(chan Message, size)

	b.Lock()
	b.listeners = append(b.listeners, c)
	b.Unlock()
	return c
}

// Release - stop listening, the channel is closed
func (b *BroadcastQueue) Release(c <-chan Message) {
	b.Lock()
	defer b.Unlock()
	for i, l := range b.listeners {
		if c == (<-chan Message)(l) {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(l)
			return
		}
	}
}
