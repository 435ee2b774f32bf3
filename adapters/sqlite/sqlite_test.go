package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/artpar/copydata/adapters/sqlite"
	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "copydata-test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("schema_migrations rows = %d, want 1", n)
	}
}

func TestDatabag_GetSet(t *testing.T) {
	ctx := context.Background()
	tr := sqlite.NewTransport(setupTestDB(t))
	bag := tr.Databag("sink:1", topology.Unit("b-sink/0"))

	if _, ok, err := bag.Get(ctx, "int"); ok || err != nil {
		t.Fatalf("Get() on empty bag = ok %v, err %v", ok, err)
	}

	if err := bag.Set(ctx, "int", "5"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := bag.Set(ctx, "int", "6"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	v, ok, err := bag.Get(ctx, "int")
	if err != nil || !ok || v != "6" {
		t.Errorf("Get() = %q, %v, %v", v, ok, err)
	}

	// Empty strings are stored values, not absence.
	if err := bag.Set(ctx, "str", ""); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := bag.Get(ctx, "str"); !ok {
		t.Error("empty value reported absent")
	}
}

func TestDatabag_Isolation(t *testing.T) {
	ctx := context.Background()
	tr := sqlite.NewTransport(setupTestDB(t))

	tr.Databag("sink:1", topology.App("b-sink")).Set(ctx, "k", "app")
	tr.Databag("sink:1", topology.Unit("b-sink/0")).Set(ctx, "k", "unit")
	tr.Databag("sink:2", topology.App("b-sink")).Set(ctx, "k", "other")

	got, _, _ := tr.Databag("sink:1", topology.App("b-sink")).Get(ctx, "k")
	if got != "app" {
		t.Errorf("app bag = %q, want app", got)
	}

	dump, err := tr.Databag("sink:1", topology.Unit("b-sink/0")).(ports.DatabagDumper).Dump(ctx)
	if err != nil || len(dump) != 1 || dump["k"] != "unit" {
		t.Errorf("Dump() = %v, %v", dump, err)
	}
}

func TestDatabag_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	db.Migrate(ctx)
	sqlite.NewTransport(db).Databag("r", topology.App("a")).Set(ctx, "flag", "true")
	db.Close()

	db, err = sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}

	v, ok, err := sqlite.NewTransport(db).Databag("r", topology.App("a")).Get(ctx, "flag")
	if err != nil || !ok || v != "true" {
		t.Errorf("after reopen Get() = %q, %v, %v", v, ok, err)
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
}
