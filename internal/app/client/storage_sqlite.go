package client

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// schemaVersion is stored in PRAGMA user_version so later releases can
// migrate the local database in place.
const schemaVersion = 1

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("local database schema v%d is newer than this build (v%d)", version, schemaVersion)
	}

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS clients (
			local_id   INTEGER PRIMARY KEY AUTOINCREMENT,
			server_id  INTEGER,
			name       TEXT NOT NULL,
			document   TEXT NOT NULL UNIQUE,
			contact    TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			synced     BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_clients_name ON clients(name);
		CREATE INDEX IF NOT EXISTS idx_clients_synced ON clients(synced);

		CREATE TABLE IF NOT EXISTS inspections (
			local_id        INTEGER PRIMARY KEY AUTOINCREMENT,
			server_id       INTEGER,
			client_local_id INTEGER REFERENCES clients(local_id),
			protocol        TEXT NOT NULL UNIQUE,
			form            TEXT NOT NULL,
			created_at      DATETIME NOT NULL,
			updated_at      DATETIME NOT NULL,
			synced_at       DATETIME
		);

		CREATE INDEX IF NOT EXISTS idx_inspections_client ON inspections(client_local_id);
		CREATE INDEX IF NOT EXISTS idx_inspections_created ON inspections(created_at);
		CREATE INDEX IF NOT EXISTS idx_inspections_synced ON inspections(synced_at);

		CREATE TABLE IF NOT EXISTS photos (
			local_id            INTEGER PRIMARY KEY AUTOINCREMENT,
			inspection_local_id INTEGER NOT NULL REFERENCES inspections(local_id) ON DELETE CASCADE,
			nc_key              TEXT NOT NULL,
			data                BLOB NOT NULL,
			synced              BOOLEAN NOT NULL DEFAULT 0,
			server_url          TEXT NOT NULL DEFAULT '',
			created_at          DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_photos_inspection ON photos(inspection_local_id);
		CREATE INDEX IF NOT EXISTS idx_photos_nc_key ON photos(nc_key);

		CREATE TABLE IF NOT EXISTS sync_queue (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			kind             TEXT NOT NULL,
			payload          TEXT NOT NULL,
			related_local_id INTEGER NOT NULL,
			retries          INTEGER NOT NULL DEFAULT 0,
			conflict         BOOLEAN NOT NULL DEFAULT 0,
			progress         TEXT NOT NULL DEFAULT '{}',
			last_attempt_at  DATETIME,
			last_error       TEXT NOT NULL DEFAULT '',
			created_at       DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_queue_kind ON sync_queue(kind);
		CREATE INDEX IF NOT EXISTS idx_queue_related ON sync_queue(related_local_id);
		CREATE INDEX IF NOT EXISTS idx_queue_created ON sync_queue(created_at);
		CREATE INDEX IF NOT EXISTS idx_queue_retries ON sync_queue(retries);
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

// isUniqueViolation unwraps the sqlite constraint error for duplicate
// document/protocol detection.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// withTx runs fn inside a single transaction so partial writes are never
// observable.
func (s *SQLiteStorage) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func enqueueTx(tx *sql.Tx, task *Task) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.Progress == nil {
		task.Progress = Progress{}
	}

	progress, err := json.Marshal(task.Progress)
	if err != nil {
		return fmt.Errorf("marshal task progress: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO sync_queue (kind, payload, related_local_id, retries, conflict, progress, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(task.Kind), string(task.Payload), task.RelatedLocalID, task.Retries,
		task.Conflict, string(progress), task.LastError, task.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	task.ID, err = res.LastInsertId()
	return err
}

// --- clients ---

func (s *SQLiteStorage) PutClient(c *Client, task *Task) (*Client, error) {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	err := s.withTx(func(tx *sql.Tx) error {
		if c.LocalID == 0 {
			res, err := tx.Exec(`
				INSERT INTO clients (server_id, name, document, contact, email, phone, synced, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, c.ServerID, c.Name, c.Document, c.Contact, c.Email, c.Phone, c.Synced,
				c.CreatedAt.UTC().Format(time.RFC3339Nano), c.UpdatedAt.UTC().Format(time.RFC3339Nano))
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: document %s", ErrDuplicate, c.Document)
				}
				return fmt.Errorf("insert client: %w", err)
			}

			c.LocalID, err = res.LastInsertId()
			if err != nil {
				return err
			}
		} else {
			res, err := tx.Exec(`
				UPDATE clients
				SET name = ?, document = ?, contact = ?, email = ?, phone = ?, synced = ?, updated_at = ?
				WHERE local_id = ?
			`, c.Name, c.Document, c.Contact, c.Email, c.Phone, c.Synced,
				c.UpdatedAt.UTC().Format(time.RFC3339Nano), c.LocalID)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: document %s", ErrDuplicate, c.Document)
				}
				return fmt.Errorf("update client: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: client %d", ErrNotFound, c.LocalID)
			}
		}

		if task != nil {
			if task.RelatedLocalID == 0 {
				task.RelatedLocalID = c.LocalID
			}
			return enqueueTx(tx, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (s *SQLiteStorage) GetClient(localID int64) (*Client, error) {
	row := s.db.QueryRow(`
		SELECT local_id, server_id, name, document, contact, email, phone, synced, created_at, updated_at
		FROM clients WHERE local_id = ?
	`, localID)

	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: client %d", ErrNotFound, localID)
	}
	return c, err
}

func (s *SQLiteStorage) ListClients() ([]*Client, error) {
	rows, err := s.db.Query(`
		SELECT local_id, server_id, name, document, contact, email, phone, synced, created_at, updated_at
		FROM clients ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *SQLiteStorage) PendingClients() ([]*Client, error) {
	rows, err := s.db.Query(`
		SELECT local_id, server_id, name, document, contact, email, phone, synced, created_at, updated_at
		FROM clients WHERE synced = 0 ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *SQLiteStorage) MarkClientSynced(localID, serverID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE clients SET server_id = ?, synced = 1, updated_at = ? WHERE local_id = ?
		`, serverID, time.Now().UTC().Format(time.RFC3339Nano), localID)
		if err != nil {
			return fmt.Errorf("mark client synced: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: client %d", ErrNotFound, localID)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*Client, error) {
	var c Client
	var serverID sql.NullInt64
	var createdAt, updatedAt string

	if err := row.Scan(&c.LocalID, &serverID, &c.Name, &c.Document, &c.Contact,
		&c.Email, &c.Phone, &c.Synced, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if serverID.Valid {
		c.ServerID = &serverID.Int64
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &c, nil
}

// --- inspections ---

func (s *SQLiteStorage) PutInspection(ins *Inspection, task *Task) (*Inspection, error) {
	now := time.Now()
	if ins.CreatedAt.IsZero() {
		ins.CreatedAt = now
	}
	ins.UpdatedAt = now
	if ins.Protocol == "" {
		ins.Protocol = ins.Form.Protocol
	}

	form, err := json.Marshal(ins.Form)
	if err != nil {
		return nil, fmt.Errorf("marshal inspection form: %w", err)
	}

	err = s.withTx(func(tx *sql.Tx) error {
		if ins.LocalID == 0 {
			res, err := tx.Exec(`
				INSERT INTO inspections (server_id, client_local_id, protocol, form, created_at, updated_at, synced_at)
				VALUES (?, ?, ?, ?, ?, ?, NULL)
			`, ins.ServerID, ins.ClientLocalID, ins.Protocol, string(form),
				ins.CreatedAt.UTC().Format(time.RFC3339Nano), ins.UpdatedAt.UTC().Format(time.RFC3339Nano))
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: protocol %s", ErrDuplicate, ins.Protocol)
				}
				return fmt.Errorf("insert inspection: %w", err)
			}

			ins.LocalID, err = res.LastInsertId()
			if err != nil {
				return err
			}
		} else {
			// synced_at is deliberately not part of the update set: the
			// payload may be rewritten many times, the sync watermark only
			// moves through MarkInspectionSynced.
			res, err := tx.Exec(`
				UPDATE inspections
				SET client_local_id = ?, protocol = ?, form = ?, updated_at = ?
				WHERE local_id = ?
			`, ins.ClientLocalID, ins.Protocol, string(form),
				ins.UpdatedAt.UTC().Format(time.RFC3339Nano), ins.LocalID)
			if err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: protocol %s", ErrDuplicate, ins.Protocol)
				}
				return fmt.Errorf("update inspection: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: inspection %d", ErrNotFound, ins.LocalID)
			}
		}

		if task != nil {
			if task.RelatedLocalID == 0 {
				task.RelatedLocalID = ins.LocalID
			}
			return enqueueTx(tx, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ins, nil
}

func (s *SQLiteStorage) GetInspection(localID int64) (*Inspection, error) {
	row := s.db.QueryRow(`
		SELECT local_id, server_id, client_local_id, protocol, form, created_at, updated_at, synced_at
		FROM inspections WHERE local_id = ?
	`, localID)

	ins, err := scanInspection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
	}
	return ins, err
}

func (s *SQLiteStorage) ListInspections() ([]*Inspection, error) {
	return s.queryInspections(`
		SELECT local_id, server_id, client_local_id, protocol, form, created_at, updated_at, synced_at
		FROM inspections ORDER BY created_at DESC
	`)
}

// PendingInspections returns unsynced inspections oldest-first so sync
// passes are fair across records.
func (s *SQLiteStorage) PendingInspections() ([]*Inspection, error) {
	return s.queryInspections(`
		SELECT local_id, server_id, client_local_id, protocol, form, created_at, updated_at, synced_at
		FROM inspections WHERE synced_at IS NULL ORDER BY created_at ASC
	`)
}

func (s *SQLiteStorage) queryInspections(query string, args ...any) ([]*Inspection, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query inspections: %w", err)
	}
	defer rows.Close()

	var inspections []*Inspection
	for rows.Next() {
		ins, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		inspections = append(inspections, ins)
	}
	return inspections, rows.Err()
}

func (s *SQLiteStorage) SetInspectionServerID(localID, serverID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE inspections SET server_id = ? WHERE local_id = ?`, serverID, localID)
		if err != nil {
			return fmt.Errorf("set inspection server id: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
		}
		return nil
	})
}

func (s *SQLiteStorage) MarkInspectionSynced(localID int64, at time.Time) error {
	stamp := at.UTC().Format(time.RFC3339Nano)
	return s.withTx(func(tx *sql.Tx) error {
		// Monotonic: once set, synced_at only moves forward.
		res, err := tx.Exec(`
			UPDATE inspections
			SET synced_at = CASE WHEN synced_at IS NULL OR synced_at < ? THEN ? ELSE synced_at END
			WHERE local_id = ?
		`, stamp, stamp, localID)
		if err != nil {
			return fmt.Errorf("mark inspection synced: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
		}
		return nil
	})
}

func (s *SQLiteStorage) DeleteInspection(localID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		// Queued upload-photo tasks reference photo local ids, so they are
		// removed before the cascade takes the photo rows with it.
		if _, err := tx.Exec(`
			DELETE FROM sync_queue
			WHERE kind = ? AND related_local_id IN
				(SELECT local_id FROM photos WHERE inspection_local_id = ?)
		`, string(KindUploadPhoto), localID); err != nil {
			return fmt.Errorf("delete photo tasks: %w", err)
		}

		if _, err := tx.Exec(`
			DELETE FROM sync_queue
			WHERE kind IN (?, ?) AND related_local_id = ?
		`, string(KindCreateInspection), string(KindUpdateInspection), localID); err != nil {
			return fmt.Errorf("delete inspection tasks: %w", err)
		}

		res, err := tx.Exec(`DELETE FROM inspections WHERE local_id = ?`, localID)
		if err != nil {
			return fmt.Errorf("delete inspection: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: inspection %d", ErrNotFound, localID)
		}
		return nil
	})
}

func scanInspection(row rowScanner) (*Inspection, error) {
	var ins Inspection
	var serverID, clientLocalID sql.NullInt64
	var form string
	var createdAt, updatedAt string
	var syncedAt sql.NullString

	if err := row.Scan(&ins.LocalID, &serverID, &clientLocalID, &ins.Protocol,
		&form, &createdAt, &updatedAt, &syncedAt); err != nil {
		return nil, err
	}

	if serverID.Valid {
		ins.ServerID = &serverID.Int64
	}
	if clientLocalID.Valid {
		ins.ClientLocalID = &clientLocalID.Int64
	}
	if err := json.Unmarshal([]byte(form), &ins.Form); err != nil {
		return nil, fmt.Errorf("decode inspection form: %w", err)
	}
	ins.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	ins.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if syncedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, syncedAt.String)
		if err == nil {
			ins.SyncedAt = &t
		}
	}

	return &ins, nil
}

// --- photos ---

func (s *SQLiteStorage) SavePhoto(p *Photo, task *Task) (*Photo, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	err := s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO photos (inspection_local_id, nc_key, data, synced, server_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.InspectionLocalID, p.NonConformityKey, p.Data, p.Synced, p.ServerURL,
			p.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert photo: %w", err)
		}

		p.LocalID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		if task != nil {
			if task.RelatedLocalID == 0 {
				task.RelatedLocalID = p.LocalID
			}
			return enqueueTx(tx, task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *SQLiteStorage) GetPhoto(localID int64) (*Photo, error) {
	row := s.db.QueryRow(`
		SELECT local_id, inspection_local_id, nc_key, data, synced, server_url, created_at
		FROM photos WHERE local_id = ?
	`, localID)

	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: photo %d", ErrNotFound, localID)
	}
	return p, err
}

func (s *SQLiteStorage) PhotosForInspection(inspectionLocalID int64) ([]*Photo, error) {
	rows, err := s.db.Query(`
		SELECT local_id, inspection_local_id, nc_key, data, synced, server_url, created_at
		FROM photos WHERE inspection_local_id = ? ORDER BY created_at ASC
	`, inspectionLocalID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *SQLiteStorage) MarkPhotoSynced(localID int64, serverURL string) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE photos SET synced = 1, server_url = ? WHERE local_id = ?
		`, serverURL, localID)
		if err != nil {
			return fmt.Errorf("mark photo synced: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: photo %d", ErrNotFound, localID)
		}
		return nil
	})
}

func (s *SQLiteStorage) DeletePhoto(localID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM sync_queue WHERE kind = ? AND related_local_id = ?
		`, string(KindUploadPhoto), localID); err != nil {
			return fmt.Errorf("delete photo tasks: %w", err)
		}

		res, err := tx.Exec(`DELETE FROM photos WHERE local_id = ?`, localID)
		if err != nil {
			return fmt.Errorf("delete photo: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: photo %d", ErrNotFound, localID)
		}
		return nil
	})
}

func scanPhoto(row rowScanner) (*Photo, error) {
	var p Photo
	var createdAt string

	if err := row.Scan(&p.LocalID, &p.InspectionLocalID, &p.NonConformityKey,
		&p.Data, &p.Synced, &p.ServerURL, &createdAt); err != nil {
		return nil, err
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &p, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
