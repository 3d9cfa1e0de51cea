package store

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/thornmill/relabel/internal/shared"
)

// newTestDB opens an in-memory database with the kv_store schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// newTestStore returns a store scoped to a fixed test instance.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(newTestDB(t), "https://photos.example.com")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestInstanceID(t *testing.T) {
	tt := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "https origin",
			url:  "https://photos.example.com",
			want: "https___photos_example_com",
		},
		{
			name: "origin with port",
			url:  "http://localhost:2342",
			want: "http___localhost_2342",
		},
		{
			name: "path is ignored",
			url:  "https://photos.example.com/library/browse",
			want: "https___photos_example_com",
		},
		{
			name:    "empty URL",
			url:     "",
			wantErr: true,
		},
		{
			name:    "missing scheme",
			url:     "photos.example.com",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := InstanceID(tc.url)
			if tc.wantErr {
				if !errors.Is(err, shared.ErrNoInstance) {
					t.Fatalf("expected ErrNoInstance, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("InstanceID() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStore(t *testing.T) {
	t.Run("Set then Get round-trips", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.Set("greeting_", "hello"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		var got string
		found, err := s.Get("greeting_", &got)
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if !found {
			t.Fatal("expected key to be found")
		}
		if got != "hello" {
			t.Errorf("got %q, want hello", got)
		}
	})

	t.Run("Get missing key reports absent", func(t *testing.T) {
		s := newTestStore(t)

		var got string
		found, err := s.Get("missing_", &got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("expected key to be absent")
		}
	})

	t.Run("Set overwrites existing value", func(t *testing.T) {
		s := newTestStore(t)

		if err := s.Set("counter_", 1); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := s.Set("counter_", 2); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		var got int
		if _, err := s.Get("counter_", &got); err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if got != 2 {
			t.Errorf("got %d, want 2", got)
		}
	})

	t.Run("instances do not share state", func(t *testing.T) {
		db := newTestDB(t)

		first, err := NewStore(db, "https://photos.example.com")
		if err != nil {
			t.Fatalf("failed to create first store: %v", err)
		}
		second, err := NewStore(db, "https://archive.example.com")
		if err != nil {
			t.Fatalf("failed to create second store: %v", err)
		}

		if err := first.Set("labelCache_", map[string]int{"sunset": 7}); err != nil {
			t.Fatalf("failed to set: %v", err)
		}

		got := map[string]int{}
		found, err := second.Get("labelCache_", &got)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Error("second instance should not see first instance's state")
		}
	})

	t.Run("Delete removes only this instance's key", func(t *testing.T) {
		db := newTestDB(t)

		first, _ := NewStore(db, "https://photos.example.com")
		second, _ := NewStore(db, "https://archive.example.com")

		first.Set("x_", "a")
		second.Set("x_", "b")

		if err := first.Delete("x_"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		var got string
		if found, _ := first.Get("x_", &got); found {
			t.Error("expected first instance key to be deleted")
		}
		if found, _ := second.Get("x_", &got); !found || got != "b" {
			t.Error("second instance key should survive")
		}
	})

	t.Run("NewStore without origin fails", func(t *testing.T) {
		if _, err := NewStore(newTestDB(t), ""); !errors.Is(err, shared.ErrNoInstance) {
			t.Errorf("expected ErrNoInstance, got %v", err)
		}
	})

	t.Run("Key composes base key and instance", func(t *testing.T) {
		s := newTestStore(t)
		if got := s.Key("labelCache_"); got != "labelCache_https___photos_example_com" {
			t.Errorf("unexpected composite key %q", got)
		}
	})
}
