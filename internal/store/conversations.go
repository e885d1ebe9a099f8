package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/conversation"
)

// UpsertConversation writes the full record as jsonb alongside the indexed
// columns the scan queries filter on. Table: conversations (id text primary
// key, record jsonb, scam_detected bool, scam_type text, turn_count int,
// start_time timestamptz, updated_at timestamptz).
func (s *Store) UpsertConversation(ctx context.Context, rec *conversation.Record) error {
	record, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", rec.ID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO conversations (id, record, scam_detected, scam_type, turn_count, start_time, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			record = $2,
			scam_detected = $3,
			scam_type = $4,
			turn_count = $5,
			updated_at = $7`,
		rec.ID, record, rec.ScamDetected, rec.ScamType, rec.TurnCount, rec.StartTime, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation %s: %w", rec.ID, err)
	}
	return nil
}

// LoadConversations returns every persisted record, oldest first. Runs once
// at boot to seed the in-memory registry.
func (s *Store) LoadConversations(ctx context.Context) ([]*conversation.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, record FROM conversations ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var records []*conversation.Record
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		var rec conversation.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", id, err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

// ScamConversations returns confirmed-scam records touched since the given
// time, oldest first. The campaign scan reads from here so it sees records
// from before the current process started.
func (s *Store) ScamConversations(ctx context.Context, since time.Time) ([]*conversation.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, record FROM conversations
		WHERE scam_detected AND updated_at >= $1
		ORDER BY start_time`, since)
	if err != nil {
		return nil, fmt.Errorf("query scam conversations: %w", err)
	}
	defer rows.Close()

	var records []*conversation.Record
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		var rec conversation.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode conversation %s: %w", id, err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
