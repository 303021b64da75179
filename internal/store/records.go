package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Load returns the raw document stored under key. ok is false when the
// record has never been written.
func (s *Store) Load(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load record %q: %w", key, err)
	}
	return value, true, nil
}

// Save replaces the whole document stored under key.
func (s *Store) Save(key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("save record %q: %w", key, err)
	}
	return nil
}

// Remove deletes the record stored under key. Removing a missing record is not an error.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove record %q: %w", key, err)
	}
	return nil
}

// ListRecords returns metadata for every stored record, ordered by key.
func (s *Store) ListRecords() ([]Record, error) {
	rows, err := s.db.Query(`SELECT key, length(value), updated_at FROM records ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var updatedAt string
		if err := rows.Scan(&r.Key, &r.Size, &updatedAt); err != nil {
			return nil, err
		}
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}
