package catalogstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gridcode-frt/frt-go/pkg/fault"
)

// SaveCatalog stores a catalog, replacing any catalog with the same key.
func (s *Store) SaveCatalog(ctx context.Context, c *fault.Catalog, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	key := c.Key()
	if _, err := tx.ExecContext(ctx, `DELETE FROM fault_tests WHERE catalog_key = ?`, key.String()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalogs (key, standard, type, description, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET description = excluded.description, updated_at = excluded.updated_at
	`, key.String(), key.Standard, key.Type, description, time.Now().UTC()); err != nil {
		return err
	}

	for pos, t := range c.All() {
		if err := insertTest(ctx, tx, key, pos, t); err != nil {
			return fmt.Errorf("test %d: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func insertTest(ctx context.Context, tx *sql.Tx, key fault.Key, pos int, t fault.Test) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fault_tests (catalog_key, test_id, position, duration, fault_type, uf, leg, qset, phases, uv)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, key.String(), t.ID, pos, t.Duration, int(t.FaultType), t.ResidualVoltage,
		t.Leg.String(), t.ReactivePower.String(), t.Phases, t.PreFaultVoltage)
	return err
}

// LoadCatalog reads a catalog in stored order.
func (s *Store) LoadCatalog(ctx context.Context, key fault.Key) (*fault.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.catalogExists(ctx, key); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT test_id, duration, fault_type, uf, leg, qset, phases, uv
		FROM fault_tests WHERE catalog_key = ? ORDER BY position
	`, key.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := fault.NewCatalog(key)
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, err
		}
		if err := c.Append(t); err != nil {
			return nil, err
		}
	}
	return c, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTest(row scanner) (fault.Test, error) {
	var t fault.Test
	var ft int
	var leg, qset string
	if err := row.Scan(&t.ID, &t.Duration, &ft, &t.ResidualVoltage, &leg, &qset, &t.Phases, &t.PreFaultVoltage); err != nil {
		return fault.Test{}, err
	}
	t.FaultType = fault.FaultType(ft)
	var err error
	if t.Leg, err = fault.ParseGridLeg(leg); err != nil {
		return fault.Test{}, fmt.Errorf("test %d: %w", t.ID, err)
	}
	mode, ok := fault.ParseReactivePowerMode(qset)
	if !ok && qset != fault.ReactiveUnspecified.String() {
		return fault.Test{}, fmt.Errorf("test %d: unknown reactive power mode %q", t.ID, qset)
	}
	t.ReactivePower = mode
	return t, nil
}

func (s *Store) catalogExists(ctx context.Context, key fault.Key) error {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalogs WHERE key = ?`, key.String()).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, key)
	}
	return nil
}

// ListCatalogs lists stored catalogs ordered by key.
func (s *Store) ListCatalogs(ctx context.Context) ([]CatalogInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.standard, c.type, c.description, c.updated_at,
		       (SELECT COUNT(*) FROM fault_tests t WHERE t.catalog_key = c.key)
		FROM catalogs c ORDER BY c.standard, c.type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CatalogInfo
	for rows.Next() {
		var info CatalogInfo
		var desc sql.NullString
		if err := rows.Scan(&info.Key.Standard, &info.Key.Type, &desc, &info.UpdatedAt, &info.Tests); err != nil {
			return nil, err
		}
		info.Description = desc.String
		out = append(out, info)
	}
	return out, rows.Err()
}

// RemoveCatalog deletes a catalog and its tests.
func (s *Store) RemoveCatalog(ctx context.Context, key fault.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM catalogs WHERE key = ?`, key.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrCatalogNotFound, key)
	}
	return nil
}

// GetTest reads one test of a catalog.
func (s *Store) GetTest(ctx context.Context, key fault.Key, id int) (fault.Test, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT test_id, duration, fault_type, uf, leg, qset, phases, uv
		FROM fault_tests WHERE catalog_key = ? AND test_id = ?
	`, key.String(), id)
	t, err := scanTest(row)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.catalogExists(ctx, key); err != nil {
			return fault.Test{}, err
		}
		return fault.Test{}, fmt.Errorf("%w: %s test %d", ErrTestNotFound, key, id)
	}
	return t, err
}

// AppendTest adds a test at the end of a catalog.
func (s *Store) AppendTest(ctx context.Context, key fault.Key, t fault.Test) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalogExists(ctx, key); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM fault_tests WHERE catalog_key = ? AND test_id = ?`,
		key.String(), t.ID).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return &fault.DuplicateIDError{Key: key, ID: t.ID}
	}

	var pos int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM fault_tests WHERE catalog_key = ?`,
		key.String()).Scan(&pos); err != nil {
		return err
	}
	if err := insertTest(ctx, tx, key, pos, t); err != nil {
		return err
	}
	if err := touch(ctx, tx, key); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTest replaces the definition of an existing test, keeping its
// position.
func (s *Store) UpdateTest(ctx context.Context, key fault.Key, t fault.Test) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE fault_tests
		SET duration = ?, fault_type = ?, uf = ?, leg = ?, qset = ?, phases = ?, uv = ?
		WHERE catalog_key = ? AND test_id = ?
	`, t.Duration, int(t.FaultType), t.ResidualVoltage, t.Leg.String(), t.ReactivePower.String(),
		t.Phases, t.PreFaultVoltage, key.String(), t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s test %d", ErrTestNotFound, key, t.ID)
	}
	return nil
}

// RemoveTest deletes one test from a catalog.
func (s *Store) RemoveTest(ctx context.Context, key fault.Key, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM fault_tests WHERE catalog_key = ? AND test_id = ?`, key.String(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s test %d", ErrTestNotFound, key, id)
	}
	return nil
}

func touch(ctx context.Context, tx *sql.Tx, key fault.Key) error {
	_, err := tx.ExecContext(ctx, `UPDATE catalogs SET updated_at = ? WHERE key = ?`, time.Now().UTC(), key.String())
	return err
}

// Seed stores the built-in catalogs. Existing catalogs are kept unless
// overwrite is set. It returns the number of catalogs written.
func (s *Store) Seed(ctx context.Context, overwrite bool) (int, error) {
	written := 0
	for _, key := range fault.Keys() {
		if !overwrite {
			s.mu.RLock()
			err := s.catalogExists(ctx, key)
			s.mu.RUnlock()
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrCatalogNotFound) {
				return written, err
			}
		}
		c, err := fault.Standard(key)
		if err != nil {
			return written, err
		}
		if err := s.SaveCatalog(ctx, c, "built-in "+key.String()); err != nil {
			return written, fmt.Errorf("seed %s: %w", key, err)
		}
		written++
	}
	return written, nil
}
