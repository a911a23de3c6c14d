package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fleetcore/internal/infra/persistence/memory"
	"fleetcore/pkg/domain"
)

func TestNewStoreSeedsEmptyDatabase(t *testing.T) {
	db, conn := newStubDB(t)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := len(store.ListShips()); got != 3 {
		t.Fatalf("expected seeded fleet, got %d ships", got)
	}

	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.execs)
	}
	if got := len(conn.buckets); got != len(postgresBuckets) {
		t.Fatalf("expected %d persisted buckets, got %d", len(postgresBuckets), got)
	}
}

func TestNewStoreHydratesExistingSnapshot(t *testing.T) {
	db, conn := newStubDB(t)

	seed := memory.SeedSnapshot()
	ships, err := json.Marshal(seed.Ships)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	conn.buckets["ships"] = ships

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if got := len(store.ListShips()); got != len(seed.Ships) {
		t.Fatalf("expected %d hydrated ships, got %d", len(seed.Ships), got)
	}
	// A non-empty snapshot must never be overwritten by the seed fixture.
	if got := len(store.ListComponents()); got != 0 {
		t.Fatalf("expected no components, got %d", got)
	}
}

func TestRunInTransactionPersistsState(t *testing.T) {
	db, conn := newStubDB(t)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateShip(domain.Ship{Name: "Atlantic Carrier", IMONumber: "7654321", Flag: "NO", Status: domain.ShipStatusActive})
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	var ships map[string]domain.Ship
	if err := json.Unmarshal(conn.buckets["ships"], &ships); err != nil {
		t.Fatalf("decode persisted ships: %v", err)
	}
	if len(ships) != 4 {
		t.Fatalf("expected seed plus one persisted, got %d", len(ships))
	}
	var found bool
	for _, ship := range ships {
		if ship.IMONumber == "7654321" {
			found = true
		}
	}
	if !found {
		t.Fatal("created ship missing from persisted bucket")
	}
}

func TestNewStorePropagatesOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("connection refused")
	})
	defer restore()

	if _, err := NewStore("", nil); err == nil {
		t.Fatal("expected open error")
	}
}

func TestPersistFailureSurfacesFromTransaction(t *testing.T) {
	db, conn := newStubDB(t)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.failExec.Store(true)
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateShip(domain.Ship{Name: "Doomed", IMONumber: "1111111", Flag: "DE", Status: domain.ShipStatusActive})
		return err
	}); err == nil {
		t.Fatal("expected persist error to surface")
	}
}

// stubConn is an in-memory driver.Conn that understands only the statements
// the store issues against the state table.
type stubConn struct {
	execs    []string
	buckets  map[string][]byte
	failExec atomic.Bool
}

func newStubDB(t *testing.T) (*sql.DB, *stubConn) {
	t.Helper()
	conn := &stubConn{buckets: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		t.Fatalf("open stub: %v", err)
	}
	return db, conn
}

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }
func (c *stubConn) Ping(context.Context) error          { return nil }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if c.failExec.Load() {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected bucket and payload, got %d args", len(args))
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg type %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg type %T", args[1].Value)
		}
		c.buckets[bucket] = append([]byte(nil), payload...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(query, "FROM state") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	rows := &stubRows{cols: []string{"bucket", "payload"}}
	for bucket, payload := range c.buckets {
		rows.rows = append(rows.rows, []driver.Value{bucket, append([]byte(nil), payload...)})
	}
	return rows, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
