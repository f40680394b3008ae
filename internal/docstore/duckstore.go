package docstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cadream/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
)

// DuckStore is a session-scoped DuckDB file indexing entity bounding boxes,
// so viewport window queries over very large imports become range scans
// instead of full in-memory passes.
type DuckStore struct {
	db        *sql.DB
	dbPath    string
	count     int
	batchSize int
	batch     []indexRow
	lastError error
}

type indexRow struct {
	id                     int
	kind, layer            string
	minX, minY, maxX, maxY float64
}

// NewDuckStore creates the index file for a session in tempDir.
func NewDuckStore(tempDir, sessionID string) (*DuckStore, error) {
	dbPath := filepath.Join(tempDir, fmt.Sprintf("doc_%s.duckdb", sessionID))

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE entities (
			id    INTEGER PRIMARY KEY,
			kind  VARCHAR NOT NULL,
			layer VARCHAR NOT NULL,
			min_x DOUBLE NOT NULL,
			min_y DOUBLE NOT NULL,
			max_x DOUBLE NOT NULL,
			max_y DOUBLE NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &DuckStore{
		db:        db,
		dbPath:    dbPath,
		batchSize: 50000,
		batch:     make([]indexRow, 0, 50000),
	}, nil
}

// IndexDocument bulk-loads every modelspace entity that has resolvable
// bounds. Call Finalize afterwards.
func (ds *DuckStore) IndexDocument(doc *Document) error {
	for _, e := range doc.Doc.Entities {
		b := doc.EntityBounds(e)
		if b == nil {
			continue
		}
		ds.Add(e, *b)
	}
	if ds.lastError != nil {
		return ds.lastError
	}
	return ds.Finalize()
}

// Add queues one entity row. Rows are batched and written through the
// Appender API.
func (ds *DuckStore) Add(e *models.RenderEntity, b models.Bounds) {
	ds.batch = append(ds.batch, indexRow{
		id:    e.ID,
		kind:  string(e.Kind),
		layer: e.Layer,
		minX:  b.Min.X,
		minY:  b.Min.Y,
		maxX:  b.Max.X,
		maxY:  b.Max.Y,
	})
	ds.count++

	if len(ds.batch) >= ds.batchSize {
		if err := ds.flushBatch(); err != nil {
			ds.lastError = err
		}
	}
}

// flushBatch writes the pending rows using the native Appender API, which is
// far faster than prepared INSERTs for bulk loads.
func (ds *DuckStore) flushBatch() error {
	if len(ds.batch) == 0 {
		return nil
	}

	conn, err := ds.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "entities")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, row := range ds.batch {
			err := appender.AppendRow(
				int32(row.id),
				row.kind,
				row.layer,
				row.minX,
				row.minY,
				row.maxX,
				row.maxY,
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	ds.batch = ds.batch[:0]
	return nil
}

// Finalize flushes pending rows and builds the query indexes. Index creation
// is deferred to here because building them during inserts slows the load.
func (ds *DuckStore) Finalize() error {
	if err := ds.flushBatch(); err != nil {
		return err
	}

	if _, err := ds.db.Exec("CREATE INDEX idx_bbox_x ON entities(min_x, max_x)"); err != nil {
		return fmt.Errorf("idx_bbox_x creation failed: %w", err)
	}
	if _, err := ds.db.Exec("CREATE INDEX idx_bbox_y ON entities(min_y, max_y)"); err != nil {
		return fmt.Errorf("idx_bbox_y creation failed: %w", err)
	}
	if _, err := ds.db.Exec("CREATE INDEX idx_layer ON entities(layer)"); err != nil {
		return fmt.Errorf("idx_layer creation failed: %w", err)
	}
	return nil
}

// Len returns the number of indexed entities.
func (ds *DuckStore) Len() int {
	return ds.count
}

// QueryWindow returns the ids of entities whose boxes intersect the window,
// excluding hidden layers.
func (ds *DuckStore) QueryWindow(window models.Bounds, hiddenLayers []string) ([]int, error) {
	query := `
		SELECT id FROM entities
		WHERE min_x <= ? AND max_x >= ? AND min_y <= ? AND max_y >= ?`
	args := []interface{}{window.Max.X, window.Min.X, window.Max.Y, window.Min.Y}

	if len(hiddenLayers) > 0 {
		placeholders := make([]string, len(hiddenLayers))
		for i, layer := range hiddenLayers {
			placeholders[i] = "?"
			args = append(args, layer)
		}
		query += fmt.Sprintf(" AND layer NOT IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY id"

	rows, err := ds.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("window query failed: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LayerCounts returns entity counts per layer.
func (ds *DuckStore) LayerCounts() (map[string]int, error) {
	rows, err := ds.db.Query("SELECT layer, COUNT(*) FROM entities GROUP BY layer")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var layer string
		var n int
		if err := rows.Scan(&layer, &n); err != nil {
			return nil, err
		}
		out[layer] = n
	}
	return out, rows.Err()
}

// Close closes the database and removes the index file.
func (ds *DuckStore) Close() error {
	if ds.db == nil {
		return nil
	}
	err := ds.db.Close()
	ds.db = nil
	os.Remove(ds.dbPath)
	return err
}
