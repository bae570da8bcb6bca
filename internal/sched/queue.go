package sched

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/storage"
)

// Queue is the durable pending action queue. Every action is written through
// to the store when scheduled, so a restart reconstructs the queue exactly.
// Draining order is (DueAt, Seq), never insertion order.
type Queue struct {
	mu      sync.Mutex
	store   storage.Storer[*Action]
	actions map[string]*Action
	nextSeq uint64
}

// NewQueue loads any persisted actions from a previous run. The sequence
// counter resumes past the highest loaded value so replayed and new actions
// never collide.
func NewQueue(store storage.Storer[*Action]) *Queue {
	q := &Queue{
		store:   store,
		actions: store.GetAll(),
	}
	for _, a := range q.actions {
		if a.Seq >= q.nextSeq {
			q.nextSeq = a.Seq + 1
		}
	}
	return q
}

// Schedule persists a new action and returns it. The payload may be nil.
func (q *Queue) Schedule(kind Kind, ownerID string, dueAt time.Time, payload any) (*Action, error) {
	a := &Action{
		ID:      uuid.NewString(),
		Kind:    kind,
		OwnerID: ownerID,
		DueAt:   dueAt,
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", kind, err)
		}
		a.Payload = data
	}

	q.mu.Lock()
	a.Seq = q.nextSeq
	q.nextSeq++
	q.actions[a.ID] = a
	q.mu.Unlock()

	if err := q.store.Save(a.ID, a); err != nil {
		return nil, &game.StoreError{Op: "schedule " + string(kind), Err: err}
	}
	return a, nil
}

// Cancel removes an action that has not fired yet. Cancelling an id that has
// already been consumed is a no-op, which lets callers cancel stale handles
// without racing the clock.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	_, exists := q.actions[id]
	delete(q.actions, id)
	q.mu.Unlock()

	if !exists {
		return nil
	}
	if err := q.store.Delete(id); err != nil {
		return &game.StoreError{Op: "cancel action", Err: err}
	}
	return nil
}

// CancelOwner removes every pending action belonging to an owner. Used when a
// player leaves the world for good.
func (q *Queue) CancelOwner(ownerID string) error {
	q.mu.Lock()
	var ids []string
	for id, a := range q.actions {
		if a.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(q.actions, id)
	}
	q.mu.Unlock()

	for _, id := range ids {
		if err := q.store.Delete(id); err != nil {
			return &game.StoreError{Op: "cancel owner actions", Err: err}
		}
	}
	return nil
}

// Due removes and returns every action due at or before now, ordered by
// (DueAt, Seq). Consumed actions are deleted from the store before they are
// handed out; a resolver crash therefore drops the action rather than
// replaying it.
func (q *Queue) Due(now time.Time) []*Action {
	q.mu.Lock()
	var due []*Action
	for _, a := range q.actions {
		if !a.DueAt.After(now) {
			due = append(due, a)
		}
	}
	for _, a := range due {
		delete(q.actions, a.ID)
	}
	q.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].Seq < due[j].Seq
	})

	for _, a := range due {
		// A failed delete leaves the file behind; it gets re-queued and
		// re-resolved on the next restart, which every resolver tolerates.
		_ = q.store.Delete(a.ID)
	}
	return due
}

// Len reports the number of pending actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}
