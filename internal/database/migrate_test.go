package database

import "testing"

func TestEmbeddedMigrationsDiscovered(t *testing.T) {
	sorted := Migrations.Sorted()
	if len(sorted) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(sorted))
	}
	m := sorted[0]
	if m.Name != "20260301000001" || m.Comment != "init" {
		t.Fatalf("unexpected migration %s_%s", m.Name, m.Comment)
	}
	if m.Up == nil || m.Down == nil {
		t.Fatal("init migration must have both up and down steps")
	}
}
