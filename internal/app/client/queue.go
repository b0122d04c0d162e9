package client

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Очередь хранится в той же базе, что и записи, поэтому постановка задачи
// и запись данных коммитятся одной транзакцией.

func (s *SQLiteStorage) Enqueue(task *Task) (*Task, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		return enqueueTx(tx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// PendingTasks returns runnable tasks in FIFO order. Tasks that exhausted
// their retry budget or were parked as conflicts are excluded.
func (s *SQLiteStorage) PendingTasks(maxRetries int) ([]*Task, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, payload, related_local_id, retries, conflict, progress, last_attempt_at, last_error, created_at
		FROM sync_queue
		WHERE retries < ? AND conflict = 0
		ORDER BY created_at ASC, id ASC
	`, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("query pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStorage) HasPendingTask(kind TaskKind, relatedLocalID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sync_queue WHERE kind = ? AND related_local_id = ?
	`, string(kind), relatedLocalID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count tasks: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStorage) PendingCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sync_queue WHERE conflict = 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending tasks: %w", err)
	}
	return count, nil
}

// ConflictTasks returns tasks parked after the server rejected them as
// invalid or conflicting. They stay out of the retry path until resolved.
func (s *SQLiteStorage) ConflictTasks() ([]*Task, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, payload, related_local_id, retries, conflict, progress, last_attempt_at, last_error, created_at
		FROM sync_queue
		WHERE conflict = 1
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query conflict tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStorage) CompleteTask(taskID int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM sync_queue WHERE id = ?`, taskID)
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil
	})
}

func (s *SQLiteStorage) RecordFailure(taskID int64, taskErr error) error {
	message := ""
	if taskErr != nil {
		message = taskErr.Error()
	}
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE sync_queue
			SET retries = retries + 1, last_attempt_at = ?, last_error = ?
			WHERE id = ?
		`, time.Now().UTC().Format(time.RFC3339Nano), message, taskID)
		if err != nil {
			return fmt.Errorf("record task failure: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil
	})
}

func (s *SQLiteStorage) MarkConflict(taskID int64, taskErr error) error {
	message := ""
	if taskErr != nil {
		message = taskErr.Error()
	}
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE sync_queue
			SET conflict = 1, last_attempt_at = ?, last_error = ?
			WHERE id = ?
		`, time.Now().UTC().Format(time.RFC3339Nano), message, taskID)
		if err != nil {
			return fmt.Errorf("mark task conflict: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil
	})
}

// SaveProgress persists which sub-steps of a multi-step task already
// succeeded so a retry does not repeat them.
func (s *SQLiteStorage) SaveProgress(taskID int64, progress Progress) error {
	if progress == nil {
		progress = Progress{}
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE sync_queue SET progress = ? WHERE id = ?`, string(data), taskID)
		if err != nil {
			return fmt.Errorf("save task progress: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: task %d", ErrNotFound, taskID)
		}
		return nil
	})
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	var kind, payload, progress string
	var lastAttempt sql.NullString
	var createdAt string

	if err := row.Scan(&t.ID, &kind, &payload, &t.RelatedLocalID, &t.Retries,
		&t.Conflict, &progress, &lastAttempt, &t.LastError, &createdAt); err != nil {
		return nil, err
	}

	t.Kind = TaskKind(kind)
	t.Payload = json.RawMessage(payload)
	if err := json.Unmarshal([]byte(progress), &t.Progress); err != nil {
		return nil, fmt.Errorf("decode task progress: %w", err)
	}
	if lastAttempt.Valid {
		at, err := time.Parse(time.RFC3339Nano, lastAttempt.String)
		if err == nil {
			t.LastAttemptAt = &at
		}
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return &t, nil
}
