package terrainlibrary

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/KirkDiggler/hexroom/internal/errors"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS terrain_maps (
	name      TEXT PRIMARY KEY,
	hex_count INTEGER NOT NULL,
	saved_at  INTEGER NOT NULL,
	data      BLOB NOT NULL
);`

type sqliteRow struct {
	Name     string `db:"name"`
	HexCount int    `db:"hex_count"`
	SavedAt  int64  `db:"saved_at"`
	Data     []byte `db:"data"`
}

func (row sqliteRow) entry() Entry {
	return Entry{Name: row.Name, HexCount: row.HexCount, SavedAt: time.UnixMilli(row.SavedAt).UTC()}
}

// SQLiteRepository stores maps in a local SQLite file
type SQLiteRepository struct {
	db    *sqlx.DB
	clock clock.Clock
}

// OpenSQLite opens or creates the library database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, clk clock.Clock) (*SQLiteRepository, error) {
	if path == "" {
		return nil, errors.InvalidArgument("sqlite path is required")
	}
	if clk == nil {
		clk = clock.New()
	}

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open terrain library %s", path)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to migrate terrain library")
	}

	return &SQLiteRepository{db: db, clock: clk}, nil
}

var _ Repository = (*SQLiteRepository)(nil)

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Save inserts or replaces the map
func (r *SQLiteRepository) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if err := validateSave(input); err != nil {
		return nil, err
	}

	row := sqliteRow{
		Name:     input.Name,
		HexCount: input.HexCount,
		SavedAt:  r.clock.Now().UnixMilli(),
		Data:     compress(input.Data),
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO terrain_maps (name, hex_count, saved_at, data)
		VALUES (:name, :hex_count, :saved_at, :data)
		ON CONFLICT(name) DO UPDATE SET
			hex_count = excluded.hex_count,
			saved_at  = excluded.saved_at,
			data      = excluded.data`, row)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to save terrain %s", input.Name)
	}

	return &SaveOutput{Entry: row.entry()}, nil
}

// Load returns the decompressed map
func (r *SQLiteRepository) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if err := validateLoad(input); err != nil {
		return nil, err
	}

	var row sqliteRow
	err := r.db.GetContext(ctx, &row,
		`SELECT name, hex_count, saved_at, data FROM terrain_maps WHERE name = ?`, input.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(input.Name)
		}
		return nil, errors.Wrapf(err, "failed to load terrain %s", input.Name)
	}

	data, err := decompress(row.Data)
	if err != nil {
		return nil, err
	}
	return &LoadOutput{Entry: row.entry(), Data: data}, nil
}

// List returns every saved map sorted by name
func (r *SQLiteRepository) List(ctx context.Context, _ *ListInput) (*ListOutput, error) {
	var rows []sqliteRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT name, hex_count, saved_at FROM terrain_maps ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list terrain maps")
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = row.entry()
	}
	return &ListOutput{Entries: entries}, nil
}

// Delete removes a map
func (r *SQLiteRepository) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return &DeleteOutput{}, nil
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM terrain_maps WHERE name = ?`, input.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete terrain %s", input.Name)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "failed to count deleted rows")
	}
	return &DeleteOutput{Deleted: n > 0}, nil
}
