package sched

import (
	"testing"
	"time"

	"github.com/pixil98/go-outbreak/internal/storage"
	"github.com/pixil98/go-testutil"
)

type mockActionStore struct {
	records map[string]*Action
}

func newMockActionStore() *mockActionStore {
	return &mockActionStore{records: map[string]*Action{}}
}

func (m *mockActionStore) Save(id string, a *Action) error {
	m.records[id] = a
	return nil
}

func (m *mockActionStore) Get(id string) *Action {
	return m.records[id]
}

func (m *mockActionStore) GetAll() map[string]*Action {
	out := map[string]*Action{}
	for id, a := range m.records {
		out[id] = a
	}
	return out
}

func (m *mockActionStore) Delete(id string) error {
	delete(m.records, id)
	return nil
}

var _ storage.Storer[*Action] = (*mockActionStore)(nil)

func TestQueue_ScheduleAndDue(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMockActionStore()
	q := NewQueue(store)

	late, err := q.Schedule(KindOfflineResolution, "p1", base.Add(time.Hour), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	early, err := q.Schedule(KindDecisionExpiry, "p1", base.Add(7*time.Second), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Nothing due yet.
	testutil.AssertEqual(t, "value", 0, len(q.Due(base)))
	testutil.AssertEqual(t, "value", 2, q.Len())

	// Only the decision expiry is due at +10s.
	due := q.Due(base.Add(10 * time.Second))
	testutil.AssertEqual(t, "value", 1, len(due))
	testutil.AssertEqual(t, "value", early.ID, due[0].ID)

	// Consumed actions are gone from memory and disk.
	testutil.AssertEqual(t, "value", 1, q.Len())
	if store.Get(early.ID) != nil {
		t.Error("consumed action still persisted")
	}
	if store.Get(late.ID) == nil {
		t.Error("pending action missing from store")
	}
}

func TestQueue_DueOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue(newMockActionStore())

	// Two actions due at the same instant resolve in schedule order, and an
	// earlier due time beats a lower sequence number.
	b, _ := q.Schedule(KindVehicleArrival, "p2", base.Add(time.Minute), nil)
	c, _ := q.Schedule(KindConstructionComplete, "p3", base.Add(time.Minute), nil)
	a, _ := q.Schedule(KindDecisionExpiry, "p1", base.Add(time.Second), nil)

	due := q.Due(base.Add(2 * time.Minute))
	testutil.AssertEqual(t, "value", 3, len(due))
	testutil.AssertEqual(t, "value", a.ID, due[0].ID)
	testutil.AssertEqual(t, "value", b.ID, due[1].ID)
	testutil.AssertEqual(t, "value", c.ID, due[2].ID)
}

func TestQueue_Cancel(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMockActionStore()
	q := NewQueue(store)

	a, _ := q.Schedule(KindDecisionExpiry, "p1", base, nil)
	if err := q.Cancel(a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", 0, q.Len())
	if store.Get(a.ID) != nil {
		t.Error("cancelled action still persisted")
	}

	// Cancelling a consumed or unknown id is a no-op.
	if err := q.Cancel(a.ID); err != nil {
		t.Errorf("cancelling stale id: %v", err)
	}
}

func TestQueue_CancelOwner(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue(newMockActionStore())

	q.Schedule(KindDecisionExpiry, "p1", base, nil)
	q.Schedule(KindOfflineResolution, "p1", base.Add(time.Hour), nil)
	keep, _ := q.Schedule(KindVehicleArrival, "p2", base, nil)

	if err := q.CancelOwner("p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", 1, q.Len())

	due := q.Due(base)
	testutil.AssertEqual(t, "value", 1, len(due))
	testutil.AssertEqual(t, "value", keep.ID, due[0].ID)
}

func TestNewQueue_ResumesFromStore(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newMockActionStore()

	first := NewQueue(store)
	a, _ := first.Schedule(KindOfflineResolution, "p1", base.Add(time.Hour), nil)
	b, _ := first.Schedule(KindOfflineResolution, "p2", base.Add(time.Hour), nil)

	// A fresh queue over the same store sees the same actions in the same
	// order, and new actions sequence after the replayed ones.
	second := NewQueue(store)
	testutil.AssertEqual(t, "value", 2, second.Len())

	c, _ := second.Schedule(KindOfflineResolution, "p3", base.Add(time.Hour), nil)
	if c.Seq <= a.Seq || c.Seq <= b.Seq {
		t.Errorf("resumed sequence %d does not follow replayed sequences %d, %d", c.Seq, a.Seq, b.Seq)
	}

	due := second.Due(base.Add(2 * time.Hour))
	testutil.AssertEqual(t, "value", 3, len(due))
	testutil.AssertEqual(t, "value", a.ID, due[0].ID)
	testutil.AssertEqual(t, "value", b.ID, due[1].ID)
	testutil.AssertEqual(t, "value", c.ID, due[2].ID)
}

func TestAction_Payload(t *testing.T) {
	type stats struct {
		Health int `json:"health"`
	}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue(newMockActionStore())

	a, err := q.Schedule(KindDecisionExpiry, "p1", base, stats{Health: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got stats
	if err := a.DecodePayload(&got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", 30, got.Health)
}
