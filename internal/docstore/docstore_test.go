package docstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

type item struct {
	ID      string `json:"id"`
	Owner   string `json:"owner,omitempty"`
	Status  string `json:"status"`
	Deleted bool   `json:"isDeleted,omitempty"`
	Count   int    `json:"count,omitempty"`
}

type status string

func setupStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "docs.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func seed(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	items := []item{
		{ID: "03", Owner: "ann", Status: "open"},
		{ID: "01", Owner: "bob", Status: "open", Count: 2},
		{ID: "02", Owner: "ann", Status: "done", Deleted: true},
		{ID: "04", Status: "open"},
	}
	for _, it := range items {
		if err := Insert(ctx, s, "items", it.ID, it); err != nil {
			t.Fatalf("Insert %s: %v", it.ID, err)
		}
	}
}

func ids(items []item) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestStoreContract(t *testing.T) {
	for name, s := range setupStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, s)

			got, err := Load[item](ctx, s, "items", "01")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Owner != "bob" || got.Count != 2 {
				t.Errorf("Load = %+v", got)
			}

			if _, err := s.Get(ctx, "items", "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing = %v, want ErrNotFound", err)
			}
			if err := Insert(ctx, s, "items", "01", item{ID: "01"}); !errors.Is(err, ErrConflict) {
				t.Errorf("duplicate Insert = %v, want ErrConflict", err)
			}

			tests := []struct {
				name   string
				filter Filter
				want   []string
			}{
				{"all ordered by id", nil, []string{"01", "02", "03", "04"}},
				{"string equality", Filter{"owner": "ann"}, []string{"02", "03"}},
				{"typed string value", Filter{"status": status("open")}, []string{"01", "03", "04"}},
				{"false matches absent field", Filter{"isDeleted": false}, []string{"01", "03", "04"}},
				{"true", Filter{"isDeleted": true}, []string{"02"}},
				{"empty string matches absent field", Filter{"owner": ""}, []string{"04"}},
				{"combined", Filter{"owner": "ann", "isDeleted": false}, []string{"03"}},
				{"number", Filter{"count": 2}, []string{"01"}},
				{"no match", Filter{"owner": "nobody"}, []string{}},
			}
			for _, tt := range tests {
				items, err := Query[item](ctx, s, "items", tt.filter)
				if err != nil {
					t.Fatalf("%s: Query: %v", tt.name, err)
				}
				if got := ids(items); !equalStrings(got, tt.want) {
					t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
				}
			}

			if err := Replace(ctx, s, "items", "04", item{ID: "04", Owner: "cid", Status: "done"}); err != nil {
				t.Fatalf("Replace: %v", err)
			}
			if got, _ := Load[item](ctx, s, "items", "04"); got.Owner != "cid" {
				t.Errorf("after Replace owner = %q, want cid", got.Owner)
			}
			if err := Replace(ctx, s, "items", "99", item{ID: "99"}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Replace missing = %v, want ErrNotFound", err)
			}

			if err := s.Delete(ctx, "items", "04"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, "items", "04"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestMemoryStoreCopiesBodies(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	body := []byte(`{"id":"a","owner":"ann"}`)
	if err := s.Create(ctx, "items", "a", body); err != nil {
		t.Fatalf("Create: %v", err)
	}
	body[8] = 'X'
	got, _ := s.Get(ctx, "items", "a")
	if string(got) != `{"id":"a","owner":"ann"}` {
		t.Errorf("stored body changed with caller slice: %s", got)
	}
}

func TestMatch(t *testing.T) {
	body := []byte(`{"id":"x","status":"open","isDeleted":false,"count":3}`)
	tests := []struct {
		filter Filter
		want   bool
	}{
		{Filter{"status": "open"}, true},
		{Filter{"status": "done"}, false},
		{Filter{"isDeleted": false}, true},
		{Filter{"owner": ""}, true},
		{Filter{"owner": "ann"}, false},
		{Filter{"count": 3}, true},
		{Filter{"count": 0}, false},
	}
	for _, tt := range tests {
		got, err := Match(body, tt.filter)
		if err != nil {
			t.Fatalf("Match(%v): %v", tt.filter, err)
		}
		if got != tt.want {
			t.Errorf("Match(%v) = %v, want %v", tt.filter, got, tt.want)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
