package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/artpar/copydata/core/topology"
	"github.com/artpar/copydata/ports"
)

// Transport implements ports.Transport on the relation_data table.
type Transport struct {
	db *DB
}

// NewTransport creates a transport over a migrated database.
func NewTransport(db *DB) *Transport {
	return &Transport{db: db}
}

// Databag returns the bag of e within relationID.
func (t *Transport) Databag(relationID string, e topology.Entity) ports.Databag {
	return &Databag{db: t.db, relationID: relationID, entity: e.Name}
}

// Databag is one entity's rows in relation_data.
type Databag struct {
	db         *DB
	relationID string
	entity     string
}

// Get retrieves a single value.
func (d *Databag) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRowContext(ctx,
		`SELECT value FROM relation_data WHERE relation_id = ? AND entity = ? AND key = ?`,
		d.relationID, d.entity, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: get %s/%s/%s: %w", d.relationID, d.entity, key, err)
	}
	return value, true, nil
}

// Set stores a value, replacing any previous one.
func (d *Databag) Set(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO relation_data (relation_id, entity, key, value, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(relation_id, entity, key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, d.relationID, d.entity, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: set %s/%s/%s: %w", d.relationID, d.entity, key, err)
	}
	return nil
}

// Dump returns every key of the bag.
func (d *Databag) Dump(ctx context.Context) (map[string]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT key, value FROM relation_data WHERE relation_id = ? AND entity = ?`,
		d.relationID, d.entity,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: dump %s/%s: %w", d.relationID, d.entity, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

// Ensure interface compliance.
var (
	_ ports.Transport     = (*Transport)(nil)
	_ ports.Databag       = (*Databag)(nil)
	_ ports.DatabagDumper = (*Databag)(nil)
)
