package store

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
)

// Both file-less drivers share the same contract; exercise them through one
// table of constructors.
func TestStoreContract(t *testing.T) {
	drivers := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{
			name: "memory",
			open: func(t *testing.T) Store { return NewMemory() },
		},
		{
			name: "bolt",
			open: func(t *testing.T) Store {
				s, err := OpenBolt(filepath.Join(t.TempDir(), "watch.db"))
				if err != nil {
					t.Fatalf("OpenBolt: %v", err)
				}
				return s
			},
		},
	}

	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			ctx := context.Background()
			s := d.open(t)
			defer s.Close()

			// Absent groups are disabled.
			on, err := s.Enabled(ctx, 100)
			if err != nil || on {
				t.Fatalf("Enabled(absent) = %v, %v; want false, nil", on, err)
			}

			// Enable is idempotent.
			for i := 0; i < 2; i++ {
				if err := s.Enable(ctx, 100); err != nil {
					t.Fatalf("Enable: %v", err)
				}
			}
			if err := s.Enable(ctx, 200); err != nil {
				t.Fatalf("Enable: %v", err)
			}

			on, _ = s.Enabled(ctx, 100)
			if !on {
				t.Error("group 100 should be enabled")
			}

			ids, err := s.ListEnabled(ctx)
			if err != nil {
				t.Fatalf("ListEnabled: %v", err)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			if len(ids) != 2 || ids[0] != 100 || ids[1] != 200 {
				t.Errorf("ListEnabled = %v, want [100 200]", ids)
			}

			// Disable is idempotent too.
			for i := 0; i < 2; i++ {
				if err := s.Disable(ctx, 100); err != nil {
					t.Fatalf("Disable: %v", err)
				}
			}
			on, _ = s.Enabled(ctx, 100)
			if on {
				t.Error("group 100 should be disabled")
			}
			ids, _ = s.ListEnabled(ctx)
			if len(ids) != 1 || ids[0] != 200 {
				t.Errorf("ListEnabled after disable = %v, want [200]", ids)
			}
		})
	}
}
