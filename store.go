package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Siqu/shpParser/shp"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// fileStore is where decoded files end up.
type fileStore interface {
	isProcessed(ctx context.Context, path string, fp fileFingerprint) (bool, error)
	save(ctx context.Context, f *decodedFile) error
}

type sqlStore struct {
	db *sql.DB
}

type storedFile struct {
	Id        string          `json:"id"`
	Path      string          `json:"path"`
	Checksum  uint16          `json:"checksum"`
	Size      int64           `json:"size"`
	Version   uint32          `json:"version"`
	ShapeType string          `json:"shapeType"`
	Records   int             `json:"records"`
	Box       shp.BoundingBox `json:"box"`
	LoadedAt  time.Time       `json:"loadedAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS shape_types (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shape_files (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	checksum INTEGER NOT NULL,
	size INTEGER NOT NULL,
	file_length INTEGER NOT NULL,
	version INTEGER NOT NULL,
	shape_type INTEGER NOT NULL REFERENCES shape_types(id),
	x_min REAL, x_max REAL, y_min REAL, y_max REAL,
	z_min REAL, z_max REAL, m_min REAL, m_max REAL,
	record_count INTEGER NOT NULL,
	loaded_at INTEGER NOT NULL,
	UNIQUE(path, checksum, size)
);

CREATE TABLE IF NOT EXISTS shape_records (
	file_id TEXT NOT NULL REFERENCES shape_files(id) ON DELETE CASCADE,
	record_index INTEGER NOT NULL,
	number INTEGER NOT NULL,
	content_length INTEGER NOT NULL,
	shape_type INTEGER NOT NULL REFERENCES shape_types(id),
	x_min REAL, x_max REAL, y_min REAL, y_max REAL,
	z_min REAL, z_max REAL, m_min REAL, m_max REAL,
	PRIMARY KEY (file_id, record_index)
);

CREATE TABLE IF NOT EXISTS shape_parts (
	file_id TEXT NOT NULL,
	record_index INTEGER NOT NULL,
	part INTEGER NOT NULL,
	start_index INTEGER NOT NULL,
	PRIMARY KEY (file_id, record_index, part)
);

CREATE TABLE IF NOT EXISTS shape_points (
	file_id TEXT NOT NULL,
	record_index INTEGER NOT NULL,
	point INTEGER NOT NULL,
	x REAL NOT NULL, y REAL NOT NULL, z REAL NOT NULL, m REAL NOT NULL,
	PRIMARY KEY (file_id, record_index, point)
);
`

func openStore(path string) (*sqlStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; parallel decodes queue up for the connection.
	db.SetMaxOpenConns(1)

	s := &sqlStore{db: db}

	if err = s.initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *sqlStore) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for _, t := range shp.ShapeTypes() {
		_, err := s.db.Exec(`INSERT OR IGNORE INTO shape_types (id, name) VALUES (?, ?)`, int32(t), t.String())

		if err != nil {
			return fmt.Errorf("failed to seed shape types: %w", err)
		}
	}

	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) isProcessed(ctx context.Context, path string, fp fileFingerprint) (bool, error) {
	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shape_files WHERE path = ? AND checksum = ? AND size = ?`,
		path, fp.Checksum, fp.Size,
	).Scan(&count)

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *sqlStore) save(ctx context.Context, f *decodedFile) (err error) {
	if f.err != nil {
		return fmt.Errorf("%s: decode failed: %w", f.path, f.err)
	}

	if f.header == nil {
		return fmt.Errorf("%s: no header decoded", f.path)
	}

	tx, err := s.db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	id := uuid.New().String()
	h := f.header
	b := h.Box

	_, err = tx.ExecContext(ctx,
		`INSERT INTO shape_files (id, path, checksum, size, file_length, version, shape_type,
			x_min, x_max, y_min, y_max, z_min, z_max, m_min, m_max, record_count, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, f.path, f.fingerprint.Checksum, f.fingerprint.Size, h.FileLength, h.Version, int32(h.ShapeType),
		b.XMin, b.XMax, b.YMin, b.YMax, b.ZMin, b.ZMax, b.MMin, b.MMax, len(f.records), time.Now().Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}

	recordStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shape_records (file_id, record_index, number, content_length, shape_type,
			x_min, x_max, y_min, y_max, z_min, z_max, m_min, m_max)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	if err != nil {
		return err
	}

	defer recordStmt.Close()

	partStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shape_parts (file_id, record_index, part, start_index) VALUES (?, ?, ?, ?)`)

	if err != nil {
		return err
	}

	defer partStmt.Close()

	pointStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO shape_points (file_id, record_index, point, x, y, z, m) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	if err != nil {
		return err
	}

	defer pointStmt.Close()

	for i, rec := range f.records {
		var box shp.BoundingBox

		if rec.Geometry != nil {
			box = rec.Geometry.Bounds()
		}

		_, err = recordStmt.ExecContext(ctx, id, i, rec.Number, rec.ContentLength, int32(rec.ShapeType),
			box.XMin, box.XMax, box.YMin, box.YMax, box.ZMin, box.ZMax, box.MMin, box.MMax)

		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", rec.Number, err)
		}

		parts, points := recordGeometry(rec)

		for j, start := range parts {
			if _, err = partStmt.ExecContext(ctx, id, i, j, start); err != nil {
				return fmt.Errorf("failed to insert part of record %d: %w", rec.Number, err)
			}
		}

		for j, p := range points {
			if _, err = pointStmt.ExecContext(ctx, id, i, j, p.X, p.Y, p.Z, p.M); err != nil {
				return fmt.Errorf("failed to insert point of record %d: %w", rec.Number, err)
			}
		}
	}

	return tx.Commit()
}

func recordGeometry(rec *shp.Record) ([]int, []shp.Point) {
	switch g := rec.Geometry.(type) {
	case *shp.Point:
		return nil, []shp.Point{*g}
	case *shp.MultiPoint:
		return nil, g.Points
	case *shp.PolyLine:
		return partStarts(g.Parts), g.Points
	case *shp.Polygon:
		return partStarts(g.Parts), g.Points
	default:
		return nil, nil
	}
}

func partStarts(parts []shp.Part) []int {
	starts := make([]int, len(parts))

	for i, p := range parts {
		starts[i] = p.Start
	}

	return starts
}

func (s *sqlStore) listFiles(ctx context.Context) ([]storedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.path, f.checksum, f.size, f.version, t.name, f.record_count,
			f.x_min, f.x_max, f.y_min, f.y_max, f.z_min, f.z_max, f.m_min, f.m_max, f.loaded_at
		FROM shape_files f JOIN shape_types t ON t.id = f.shape_type
		ORDER BY f.loaded_at, f.path`)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	files := make([]storedFile, 0)

	for rows.Next() {
		var f storedFile
		var loadedAt int64
		b := &f.Box

		err = rows.Scan(&f.Id, &f.Path, &f.Checksum, &f.Size, &f.Version, &f.ShapeType, &f.Records,
			&b.XMin, &b.XMax, &b.YMin, &b.YMax, &b.ZMin, &b.ZMax, &b.MMin, &b.MMax, &loadedAt)

		if err != nil {
			return nil, err
		}

		f.LoadedAt = time.Unix(loadedAt, 0).UTC()

		files = append(files, f)
	}

	return files, rows.Err()
}

// decodedFile collects one file's header and records while it is decoded;
// they are written in a single transaction once the whole file decoded.
type decodedFile struct {
	ctx         context.Context
	path        string
	fingerprint fileFingerprint
	header      *shp.FileHeader
	records     []*shp.Record
	err         error
}

func newDecodedFile(ctx context.Context, path string, fp fileFingerprint) *decodedFile {
	return &decodedFile{
		ctx:         ctx,
		path:        path,
		fingerprint: fp,
		records:     make([]*shp.Record, 0),
	}
}

func (d *decodedFile) OnHeader(h *shp.FileHeader) error {
	d.header = h
	return nil
}

func (d *decodedFile) OnRecord(r *shp.Record) error {
	if err := d.ctx.Err(); err != nil {
		return err
	}

	d.records = append(d.records, r)
	return nil
}

func (d *decodedFile) OnError(err error) {
	d.err = err
}
