package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kardex/internal/core/apperror"
	"kardex/internal/core/sequence"
)

// Compile-time check that SequenceStore implements the domain contract.
var _ sequence.Allocator = (*SequenceStore)(nil)

// SequenceStore issues counter values from dedicated counter rows.
//
// Both methods lock the counter row with SELECT ... FOR UPDATE inside the
// caller's transaction. Concurrent allocations for the same counter serialize
// on that lock until the enclosing commit, which guarantees uniqueness; a
// rolled-back caller releases the value as a gap.
type SequenceStore struct {
	txManager *TxManager
}

// NewSequenceStore creates a sequence store.
func NewSequenceStore(txManager *TxManager) *SequenceStore {
	return &SequenceStore{txManager: txManager}
}

// NextValue implements sequence.Allocator.
func (s *SequenceStore) NextValue(ctx context.Context, counterName string) (int64, error) {
	tx := s.txManager.GetTx(ctx)
	if tx == nil {
		return 0, apperror.NewInternal(fmt.Errorf("sequence allocation requires a transaction"))
	}

	var current int64
	err := tx.QueryRow(ctx,
		`SELECT value FROM seq_counters WHERE name = $1 FOR UPDATE`,
		counterName,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperror.NewConfiguration("counter is not provisioned").
			WithDetail("counter", counterName)
	}
	if err != nil {
		return 0, apperror.NewStorage(fmt.Errorf("lock counter %q: %w", counterName, err))
	}

	next := current + 1
	if _, err := tx.Exec(ctx,
		`UPDATE seq_counters SET value = $1 WHERE name = $2`,
		next, counterName,
	); err != nil {
		return 0, apperror.NewStorage(fmt.Errorf("advance counter %q: %w", counterName, err))
	}

	return next, nil
}

// NextDocumentNumber implements sequence.Allocator. The prefix and pad width
// live on the document-type counter row.
func (s *SequenceStore) NextDocumentNumber(ctx context.Context, docType string) (string, error) {
	tx := s.txManager.GetTx(ctx)
	if tx == nil {
		return "", apperror.NewInternal(fmt.Errorf("sequence allocation requires a transaction"))
	}

	var (
		current  int64
		prefix   string
		padWidth int
	)
	err := tx.QueryRow(ctx,
		`SELECT value, prefix, pad_width FROM seq_document_types WHERE doc_type = $1 FOR UPDATE`,
		docType,
	).Scan(&current, &prefix, &padWidth)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperror.NewConfiguration("document type is not provisioned").
			WithDetail("docType", docType)
	}
	if err != nil {
		return "", apperror.NewStorage(fmt.Errorf("lock document type %q: %w", docType, err))
	}

	next := current + 1
	if _, err := tx.Exec(ctx,
		`UPDATE seq_document_types SET value = $1 WHERE doc_type = $2`,
		next, docType,
	); err != nil {
		return "", apperror.NewStorage(fmt.Errorf("advance document type %q: %w", docType, err))
	}

	return sequence.FormatDocumentNumber(prefix, padWidth, next), nil
}
