// Package store holds the in-memory conversation log, the single source of
// truth for what the UI renders.
package store

import (
	"sync"

	"github.com/prismchat/prism/internal/domain"
)

// Log is an ordered, append-mostly list of messages, each independently
// mutable by id. Mutations happen under a lock and go through whole-message
// patches, so readers never observe a partially updated message.
type Log struct {
	mu       sync.RWMutex
	messages []*domain.Message
	byID     map[domain.MessageID]int
}

func NewLog() *Log {
	return &Log{
		byID: make(map[domain.MessageID]int),
	}
}

// Append adds messages to the end of the log in the given order.
func (l *Log) Append(msgs ...*domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range msgs {
		cp := *m
		l.byID[cp.ID] = len(l.messages)
		l.messages = append(l.messages, &cp)
	}
}

// Patch applies fn to a copy of the message with the given id and swaps the
// result in. Returns ErrMessageNotFound if the id is unknown.
func (l *Log) Patch(id domain.MessageID, fn func(*domain.Message)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.byID[id]
	if !ok {
		return domain.ErrMessageNotFound
	}

	cp := *l.messages[idx]
	fn(&cp)
	cp.ID = id // the patch must not change identity
	l.messages[idx] = &cp
	return nil
}

// Get returns a copy of the message with the given id.
func (l *Log) Get(id domain.MessageID) (*domain.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}

	cp := *l.messages[idx]
	return &cp, nil
}

// Messages returns a snapshot of the log in insertion order.
func (l *Log) Messages() []*domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.Message, len(l.messages))
	for i, m := range l.messages {
		cp := *m
		out[i] = &cp
	}
	return out
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Clear drops the whole log.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = nil
	l.byID = make(map[domain.MessageID]int)
}

// PrecedingUserTurn returns the user message immediately before the model
// message with the given id. Retry depends on this pairing: anything other
// than a user-authored immediate predecessor means the log was corrupted or
// externally mutated, reported as ErrInternalInconsistency.
func (l *Log) PrecedingUserTurn(id domain.MessageID) (*domain.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	if idx == 0 {
		return nil, domain.ErrInternalInconsistency
	}

	prev := l.messages[idx-1]
	if prev.Role != domain.RoleUser {
		return nil, domain.ErrInternalInconsistency
	}

	cp := *prev
	return &cp, nil
}
