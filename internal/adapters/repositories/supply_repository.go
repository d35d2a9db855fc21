package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"supply-route-service/internal/domain"
	"supply-route-service/internal/platform/obs"
)

// SQL-backed implementation of the SupplyRepository port. The same queries
// run on SQLite and Postgres; only the bind placeholders differ.
type SQLSupplyRepository struct {
	DB       *sql.DB
	postgres bool
}

func NewSqliteSupplyRepository(db *sql.DB) *SQLSupplyRepository {
	return &SQLSupplyRepository{DB: db}
}

func NewPostgresSupplyRepository(db *sql.DB) *SQLSupplyRepository {
	return &SQLSupplyRepository{DB: db, postgres: true}
}

const supplyColumns = `id, name, material, capacity, lon, lat, status, manager, address, general_data, all_fields`

// rebind rewrites "?" placeholders into "$n" for Postgres.
func (s *SQLSupplyRepository) rebind(q string) string {
	if !s.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Return supply locations in catalogue order; an empty material returns all.
func (s *SQLSupplyRepository) ListSupply(ctx context.Context, material string) (_ []domain.SupplyLocation, err error) {
	defer obs.Time(ctx, "supply.repo.ListSupply")(&err)

	if s.DB == nil {
		return nil, errors.New("supply repository: DB is nil")
	}

	query := `SELECT ` + supplyColumns + ` FROM supply_locations`
	args := []any{}
	if material != "" {
		query += ` WHERE material = ?`
		args = append(args, material)
	}
	query += ` ORDER BY position, id;`

	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list supply: query supply_locations table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SupplyLocation, 0, 64)
	for rows.Next() {
		loc, err := scanSupply(rows)
		if err != nil {
			return nil, fmt.Errorf("list supply: %w", err)
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list supply: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLSupplyRepository) GetSupply(ctx context.Context, id string) (domain.SupplyLocation, error) {
	if s.DB == nil {
		return domain.SupplyLocation{}, errors.New("supply repository: DB is nil")
	}

	query := s.rebind(`SELECT ` + supplyColumns + ` FROM supply_locations WHERE id = ?;`)
	loc, err := scanSupply(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SupplyLocation{}, fmt.Errorf("get supply id=%q: %w", id, domain.ErrSupplyNotFound)
	}
	if err != nil {
		return domain.SupplyLocation{}, fmt.Errorf("get supply id=%q: %w", id, err)
	}
	return loc, nil
}

// UpsertSupply inserts or updates locations. New rows are appended after the
// current catalogue; existing rows keep their position.
func (s *SQLSupplyRepository) UpsertSupply(ctx context.Context, locations []domain.SupplyLocation) error {
	return s.write(ctx, locations, false)
}

// ReplaceAll swaps the whole table for locations in one transaction.
func (s *SQLSupplyRepository) ReplaceAll(ctx context.Context, locations []domain.SupplyLocation) error {
	return s.write(ctx, locations, true)
}

func (s *SQLSupplyRepository) write(ctx context.Context, locations []domain.SupplyLocation, replace bool) error {
	if s.DB == nil {
		return errors.New("supply repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert supply: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var base int64
	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM supply_locations;`); err != nil {
			return fmt.Errorf("upsert supply: clear table: %w", err)
		}
	} else {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM supply_locations;`).Scan(&base); err != nil {
			return fmt.Errorf("upsert supply: read max position: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
	INSERT INTO supply_locations (
		id, position, name, material, capacity, lon, lat,
		status, manager, address, general_data, all_fields
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET name = excluded.name,
		material = excluded.material,
		capacity = excluded.capacity,
		lon = excluded.lon,
		lat = excluded.lat,
		status = excluded.status,
		manager = excluded.manager,
		address = excluded.address,
		general_data = excluded.general_data,
		all_fields = excluded.all_fields;
	`))
	if err != nil {
		return fmt.Errorf("upsert supply: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range locations {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("upsert supply: location at index %d has empty id", i)
		}
		if !l.Coordinates.Valid() {
			return fmt.Errorf("upsert supply id=%q: invalid coordinates %s", l.ID, l.Coordinates)
		}

		holder, err := encodeHolder(l.Holder)
		if err != nil {
			return fmt.Errorf("upsert supply id=%q: %w", l.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			l.ID, base+int64(i), l.Name, l.Material, l.Capacity, l.Coordinates.Lon, l.Coordinates.Lat,
			l.Status, l.Manager, l.Address, holder, l.AllFields,
		); err != nil {
			return fmt.Errorf("upsert supply id=%q: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert supply: commit tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSupply(r rowScanner) (domain.SupplyLocation, error) {
	var (
		loc    domain.SupplyLocation
		holder sql.NullString
	)
	err := r.Scan(
		&loc.ID, &loc.Name, &loc.Material, &loc.Capacity,
		&loc.Coordinates.Lon, &loc.Coordinates.Lat,
		&loc.Status, &loc.Manager, &loc.Address, &holder, &loc.AllFields,
	)
	if err != nil {
		return domain.SupplyLocation{}, err
	}

	if holder.Valid && holder.String != "" {
		var h domain.Holder
		if err := json.Unmarshal([]byte(holder.String), &h); err != nil {
			return domain.SupplyLocation{}, fmt.Errorf("decode general_data id=%q: %w", loc.ID, err)
		}
		loc.Holder = &h
	}
	return loc, nil
}

func encodeHolder(h *domain.Holder) (sql.NullString, error) {
	if h == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode general_data: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
