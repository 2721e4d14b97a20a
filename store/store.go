// Package store loads and persists compound spectra in a SQLite catalog.
//
// The catalog mirrors the layout of the original spectral databases: a
// compounds table carrying the scalar photophysical constants, and one
// table of wavelength/value rows per spectrum kind. Spectrum queries
// return [series.Series] values sorted by ascending wavelength, ready
// for interpolation and fitting.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-spectra/spectral/series"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a compound id has no catalog row.
var ErrNotFound = errors.New("store: compound not found")

// Compound is a catalog entry: identity plus the scalar constants the
// analysis drivers anchor on. Missing numeric columns read as zero.
type Compound struct {
	ID           string
	Name         string
	DatabaseName string
	// Epsilon is the molar absorptivity at EpsilonWavelength, in M⁻¹cm⁻¹.
	Epsilon           float64
	EpsilonWavelength float64 // nm
	QuantumYield      float64
}

// Store wraps SQLite access to the compound catalog.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}

		return nil, err
	}

	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS compounds (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			database_name TEXT NOT NULL DEFAULT '',
			epsilon REAL,
			epsilon_wavelength REAL,
			quantum_yield REAL
		);`,
		`CREATE TABLE IF NOT EXISTS compounds_absorptions (
			compound_id TEXT NOT NULL,
			wavelength REAL NOT NULL,
			coefficient REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS compounds_emissions (
			compound_id TEXT NOT NULL,
			wavelength REAL NOT NULL,
			intensity REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_compounds_absorptions_compound ON compounds_absorptions(compound_id);`,
		`CREATE INDEX IF NOT EXISTS idx_compounds_emissions_compound ON compounds_emissions(compound_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// ListCompounds returns every catalog entry ordered by id.
func (s *Store) ListCompounds(ctx context.Context) ([]Compound, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, database_name, epsilon, epsilon_wavelength, quantum_yield
		 FROM compounds ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var compounds []Compound
	for rows.Next() {
		c, err := scanCompound(rows)
		if err != nil {
			return nil, err
		}

		compounds = append(compounds, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return compounds, nil
}

// Compound returns the catalog entry for id, or [ErrNotFound].
func (s *Store) Compound(ctx context.Context, id string) (Compound, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, database_name, epsilon, epsilon_wavelength, quantum_yield
		 FROM compounds WHERE id = ?`, id)

	c, err := scanCompound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Compound{}, ErrNotFound
	}

	if err != nil {
		return Compound{}, err
	}

	return c, nil
}

// Absorption returns the compound's absorption spectrum sorted by
// ascending wavelength. A compound without absorption rows yields an
// empty series, not an error.
func (s *Store) Absorption(ctx context.Context, id string) (series.Series, error) {
	return s.spectrum(ctx, series.Absorption, id,
		`SELECT wavelength, coefficient FROM compounds_absorptions
		 WHERE compound_id = ? ORDER BY wavelength`)
}

// Emission returns the compound's emission spectrum sorted by ascending
// wavelength. A compound without emission rows yields an empty series,
// not an error.
func (s *Store) Emission(ctx context.Context, id string) (series.Series, error) {
	return s.spectrum(ctx, series.Emission, id,
		`SELECT wavelength, intensity FROM compounds_emissions
		 WHERE compound_id = ? ORDER BY wavelength`)
}

func (s *Store) spectrum(ctx context.Context, kind series.Kind, id, query string) (series.Series, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return series.Series{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	out := series.Series{Kind: kind}
	for rows.Next() {
		var wavelength, value sql.NullFloat64
		if err := rows.Scan(&wavelength, &value); err != nil {
			return series.Series{}, err
		}

		out.Samples = append(out.Samples, series.NewSample(kind, wavelength.Float64, value.Float64))
	}

	if err := rows.Err(); err != nil {
		return series.Series{}, err
	}

	return out, nil
}

// InsertCompound stores or replaces a catalog entry.
func (s *Store) InsertCompound(ctx context.Context, c Compound) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO compounds (id, name, database_name, epsilon, epsilon_wavelength, quantum_yield)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.DatabaseName, c.Epsilon, c.EpsilonWavelength, c.QuantumYield)

	return err
}

// InsertSpectrum replaces the compound's stored spectrum of the series'
// kind with the given samples.
func (s *Store) InsertSpectrum(ctx context.Context, id string, sp series.Series) error {
	table, column := "compounds_absorptions", "coefficient"
	if sp.Kind == series.Emission {
		table, column = "compounds_emissions", "intensity"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE compound_id = ?`, id); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+table+` (compound_id, wavelength, `+column+`) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, smp := range sp.Samples {
		if _, err = stmt.ExecContext(ctx, id, smp.Wavelength, smp.Value(sp.Kind)); err != nil {
			return err
		}
	}

	err = tx.Commit()

	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompound(row rowScanner) (Compound, error) {
	var (
		c                         Compound
		name, databaseName        sql.NullString
		eps, epsWavelength, yield sql.NullFloat64
	)

	if err := row.Scan(&c.ID, &name, &databaseName, &eps, &epsWavelength, &yield); err != nil {
		return Compound{}, err
	}

	c.Name = name.String
	c.DatabaseName = databaseName.String
	c.Epsilon = eps.Float64
	c.EpsilonWavelength = epsWavelength.Float64
	c.QuantumYield = yield.Float64

	return c, nil
}
