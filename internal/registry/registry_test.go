package registry

import (
	"errors"
	"testing"

	"github.com/venuemint/venuemint/internal/storage"
	"github.com/venuemint/venuemint/pkg/types"
)

func vendor(b byte) types.Address {
	var a types.Address
	a[0] = b
	return a
}

func create(t *testing.T, r *Registry, db storage.DB, name string, v types.Address, count int, tier uint8, prices []uint64) *Event {
	t.Helper()
	var ev *Event
	err := db.Update(func(txn storage.Txn) error {
		e, err := r.CreateEvent(txn, name, v, count, tier, prices)
		if err != nil {
			return err
		}
		ev = e
		return nil
	})
	if err != nil {
		t.Fatalf("CreateEvent(%q) error: %v", name, err)
	}
	return ev
}

func TestCreateEvent(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	ev := create(t, r, db, "gala", vendor(1), 3, 2, []uint64{100, 200, 300})

	if ev.FirstID != 1 || ev.LastID != 3 {
		t.Errorf("range = [%d, %d], want [1, 3]", ev.FirstID, ev.LastID)
	}
	if ev.Tier != 2 {
		t.Errorf("tier = %d, want 2", ev.Tier)
	}
	if ev.Count() != 3 {
		t.Errorf("Count() = %d, want 3", ev.Count())
	}

	got, err := r.Lookup("gala")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if got.Name != "gala" || got.Vendor != vendor(1) || got.FirstID != 1 || got.LastID != 3 {
		t.Errorf("Lookup() = %+v", got)
	}
	if len(got.Prices) != 3 || got.Prices[1] != 200 {
		t.Errorf("Lookup() prices = %v", got.Prices)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	tests := []struct {
		name    string
		evName  string
		count   int
		prices  []uint64
		wantErr error
	}{
		{"empty name", "", 1, []uint64{1}, ErrInvalidName},
		{"zero count", "ev", 0, nil, ErrInvalidCount},
		{"negative count", "ev", -1, nil, ErrInvalidCount},
		{"too few prices", "ev", 3, []uint64{1, 2}, ErrPriceCount},
		{"too many prices", "ev", 1, []uint64{1, 2}, ErrPriceCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.Update(func(txn storage.Txn) error {
				_, err := r.CreateEvent(txn, tt.evName, vendor(1), tt.count, 0, tt.prices)
				return err
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateEvent() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateEvent_DuplicateName(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	create(t, r, db, "gala", vendor(1), 1, 0, []uint64{50})

	err := db.Update(func(txn storage.Txn) error {
		_, err := r.CreateEvent(txn, "gala", vendor(2), 2, 0, []uint64{1, 2})
		return err
	})
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("CreateEvent() duplicate = %v, want ErrDuplicateEvent", err)
	}

	// Original registration untouched; the rejected attempt must not have
	// consumed IDs.
	ev, err := r.Lookup("gala")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if ev.Vendor != vendor(1) {
		t.Errorf("vendor = %s, want original", ev.Vendor)
	}
	next, err := r.NextID()
	if err != nil {
		t.Fatalf("NextID() error: %v", err)
	}
	if next != 2 {
		t.Errorf("NextID() = %d, want 2", next)
	}
}

func TestCreateEvent_FailedCreationConsumesNoIDs(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	err := db.Update(func(txn storage.Txn) error {
		_, err := r.CreateEvent(txn, "bad", vendor(1), 2, 0, []uint64{1})
		return err
	})
	if !errors.Is(err, ErrPriceCount) {
		t.Fatalf("CreateEvent() = %v, want ErrPriceCount", err)
	}

	ev := create(t, r, db, "good", vendor(1), 2, 0, []uint64{1, 2})
	if ev.FirstID != 1 {
		t.Errorf("FirstID after failed creation = %d, want 1", ev.FirstID)
	}
}

func TestGetEventIDs_Sentinel(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	first, last, err := r.GetEventIDs("nope")
	if err != nil {
		t.Fatalf("GetEventIDs() error: %v", err)
	}
	if first != 0 || last != 0 {
		t.Errorf("GetEventIDs(unknown) = (%d, %d), want (0, 0)", first, last)
	}

	create(t, r, db, "gala", vendor(1), 4, 0, []uint64{1, 2, 3, 4})

	first, last, err = r.GetEventIDs("gala")
	if err != nil {
		t.Fatalf("GetEventIDs() error: %v", err)
	}
	if first != 1 || last != 4 {
		t.Errorf("GetEventIDs(gala) = (%d, %d), want (1, 4)", first, last)
	}

	// Lookup distinguishes unknown explicitly.
	if _, err := r.Lookup("nope"); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("Lookup(unknown) = %v, want ErrUnknownEvent", err)
	}
}

// Ranges of successive events are contiguous and disjoint, and the
// allocator never reuses IDs.
func TestContiguousRanges(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	var prevLast types.TokenID
	for i := 0; i < 10; i++ {
		count := i%3 + 1
		prices := make([]uint64, count)
		for j := range prices {
			prices[j] = uint64(10 * (j + 1))
		}
		ev := create(t, r, db, string(rune('a'+i)), vendor(byte(i+1)), count, 0, prices)

		if ev.FirstID != prevLast+1 {
			t.Errorf("event %d: FirstID = %d, want %d", i, ev.FirstID, prevLast+1)
		}
		if ev.LastID != ev.FirstID+types.TokenID(count)-1 {
			t.Errorf("event %d: LastID = %d for count %d", i, ev.LastID, count)
		}
		prevLast = ev.LastID
	}
}

func TestByIDResolution(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	create(t, r, db, "first", vendor(1), 2, 0, []uint64{10, 20})
	create(t, r, db, "second", vendor(2), 3, 1, []uint64{30, 40, 50})

	tests := []struct {
		id        types.TokenID
		wantEvent string
		wantPrice uint64
	}{
		{1, "first", 10},
		{2, "first", 20},
		{3, "second", 30},
		{5, "second", 50},
	}
	for _, tt := range tests {
		ev, err := r.EventOf(tt.id)
		if err != nil {
			t.Fatalf("EventOf(%d) error: %v", tt.id, err)
		}
		if ev.Name != tt.wantEvent {
			t.Errorf("EventOf(%d) = %q, want %q", tt.id, ev.Name, tt.wantEvent)
		}
		price, err := r.PriceOf(tt.id)
		if err != nil {
			t.Fatalf("PriceOf(%d) error: %v", tt.id, err)
		}
		if price != tt.wantPrice {
			t.Errorf("PriceOf(%d) = %d, want %d", tt.id, price, tt.wantPrice)
		}
	}

	v, err := r.VendorOf(4)
	if err != nil {
		t.Fatalf("VendorOf(4) error: %v", err)
	}
	if v != vendor(2) {
		t.Errorf("VendorOf(4) = %s, want vendor 2", v)
	}

	// Outside every range: 0 and past the end.
	for _, id := range []types.TokenID{0, 6, 100} {
		if _, err := r.EventOf(id); !errors.Is(err, ErrUnknownToken) {
			t.Errorf("EventOf(%d) = %v, want ErrUnknownToken", id, err)
		}
	}
}

func TestList(t *testing.T) {
	db := storage.NewMemory()
	r := New(db)

	events, err := r.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("List() on empty registry = %d events", len(events))
	}

	create(t, r, db, "one", vendor(1), 1, 0, []uint64{1})
	create(t, r, db, "two", vendor(2), 1, 0, []uint64{2})

	events, err = r.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List() = %d events, want 2", len(events))
	}
	names := map[string]bool{}
	for _, ev := range events {
		names[ev.Name] = true
	}
	if !names["one"] || !names["two"] {
		t.Errorf("List() names = %v", names)
	}
}
