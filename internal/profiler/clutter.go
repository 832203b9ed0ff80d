package profiler

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"math"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var clutterMigrations embed.FS

// ClutterMap loads and queries a static clutter map (spec.md §6's
// useClutterMap/clutterMap option), backed by a small SQLite database
// keyed by (elevation, azimuth, range) buckets. This mirrors the teacher's
// internal/db/db.go + internal/db/migrate.go pattern; it is a
// configuration input read once at the start of a run, not storage of
// intermediate scan data (the non-goal in spec.md §1 concerns volumes
// across runs, not this kind of static reference table).
type ClutterMap struct {
	db *sql.DB
}

// OpenClutterMap opens (creating if absent) the clutter database at path
// and brings its schema up to date.
func OpenClutterMap(path string) (*ClutterMap, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open clutter map: %w", err)
	}
	cm := &ClutterMap{db: db}
	if err := cm.migrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate clutter map: %w", err)
	}
	return cm, nil
}

func (c *ClutterMap) migrateUp() error {
	sourceDriver, err := iofs.New(subFS(clutterMigrations), ".")
	if err != nil {
		return err
	}
	dbDriver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func subFS(embedded embed.FS) fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err) // embedded at build time, cannot fail at runtime
	}
	return sub
}

// Close releases the underlying database handle.
func (c *ClutterMap) Close() error { return c.db.Close() }

// Put records a clutter value for one gate, bucketed by elevation
// (tenths of a degree), azimuth (whole degrees) and range bin index.
func (c *ClutterMap) Put(elevDeg, azimDeg float64, iRang int, value float64) error {
	eb, ab := bucketKey(elevDeg, azimDeg)
	_, err := c.db.Exec(
		`INSERT INTO clutter_value (elev_bucket, azim_bucket, range_bucket, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT(elev_bucket, azim_bucket, range_bucket) DO UPDATE SET value=excluded.value`,
		eb, ab, iRang, value)
	return err
}

// IsClutter reports whether the gate at (iAzim, iRang) of scan is tagged
// above clutterValueMin in the clutter map.
func (c *ClutterMap) IsClutter(scan PolarScan, iAzim, iRang int, clutterValueMin float64) bool {
	v, ok := c.Value(scan, iAzim, iRang)
	return ok && v > clutterValueMin
}

// Value returns the raw clutter value stored for (iAzim, iRang) of scan,
// or (0, false) if nothing is recorded there.
func (c *ClutterMap) Value(scan PolarScan, iAzim, iRang int) (float64, bool) {
	azimDeg := 360.0 * float64(iAzim) / float64(scan.NAzim())
	elevDeg := scan.ElevationRad() * 180 / math.Pi
	eb, ab := bucketKey(elevDeg, azimDeg)

	var value float64
	row := c.db.QueryRow(
		`SELECT value FROM clutter_value WHERE elev_bucket=? AND azim_bucket=? AND range_bucket=?`,
		eb, ab, iRang)
	if err := row.Scan(&value); err != nil {
		return 0, false
	}
	return value, true
}

func bucketKey(elevDeg, azimDeg float64) (elevBucket, azimBucket int) {
	return int(math.Round(elevDeg * 10)), int(math.Round(azimDeg))
}
