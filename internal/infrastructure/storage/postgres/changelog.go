package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"kardex/internal/domain/documents/purchase"
)

// ChangeLog records before/after snapshots of document header edits.
//
// Snapshots beyond the threshold are stored zstd-compressed; small ones stay
// as plain JSON so they remain queryable in SQL.
type ChangeLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// CompressionAlgo specifies the compression algorithm used for a snapshot.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// ChangeLogEntry is one recorded header edit.
type ChangeLogEntry struct {
	ID              uuid.UUID       `db:"id"`
	DocumentID      int64           `db:"document_id"`
	ActingUser      string          `db:"acting_user"`
	Changes         json.RawMessage `db:"changes"`
	Compressed      []byte          `db:"changes_compressed"`
	CompressionAlgo CompressionAlgo `db:"compression_algo"`
	CreatedAt       time.Time       `db:"created_at"`
}

// Compile-time check against the domain contract.
var _ purchase.ChangeRecorder = (*ChangeLog)(nil)

// NewChangeLog creates a change log writer.
func NewChangeLog(txManager *TxManager) (*ChangeLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ChangeLog{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// RecordHeaderChange implements purchase.ChangeRecorder. Only fields that
// actually differ end up in the snapshot.
func (c *ChangeLog) RecordHeaderChange(ctx context.Context, documentID int64, actingUser string, before, after *purchase.Document) error {
	changes := Diff(headerState(before), headerState(after))
	if len(changes) == 0 {
		return nil
	}

	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal header changes: %w", err)
	}

	entry := ChangeLogEntry{
		ID:              uuid.New(),
		DocumentID:      documentID,
		ActingUser:      actingUser,
		Changes:         changesJSON,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}
	if len(entry.Changes) > c.compressThreshold {
		entry.Compressed = c.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}

	querier := c.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, `
		INSERT INTO doc_change_log (
			id, document_id, acting_user,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.DocumentID, entry.ActingUser,
		entry.Changes, entry.Compressed, entry.CompressionAlgo, entry.CreatedAt)

	return err
}

// GetDocumentChanges retrieves recorded edits for a document, newest first.
func (c *ChangeLog) GetDocumentChanges(ctx context.Context, documentID int64, limit int) ([]ChangeLogEntry, error) {
	rows, err := c.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, document_id, acting_user,
		       changes, changes_compressed, compression_algo, created_at
		FROM doc_change_log
		WHERE document_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query change log: %w", err)
	}
	defer rows.Close()

	var entries []ChangeLogEntry
	for rows.Next() {
		var e ChangeLogEntry
		err := rows.Scan(
			&e.ID, &e.DocumentID, &e.ActingUser,
			&e.Changes, &e.Compressed, &e.CompressionAlgo, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan change log entry: %w", err)
		}

		if e.CompressionAlgo == CompressionZstd && len(e.Compressed) > 0 {
			decompressed, err := c.decoder.DecodeAll(e.Compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress changes: %w", err)
			}
			e.Changes = decompressed
			e.Compressed = nil
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// headerState projects the editable header fields of a document.
func headerState(doc *purchase.Document) map[string]any {
	if doc == nil {
		return nil
	}
	return map[string]any{
		"date":         doc.Date.UTC().Format(time.RFC3339),
		"supplier_ref": doc.SupplierRef,
		"note":         doc.Note,
		"status":       string(doc.Status),
	}
}

// Diff calculates the difference between old and new entity states.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !equal(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}

// equal compares two values for equality.
func equal(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
