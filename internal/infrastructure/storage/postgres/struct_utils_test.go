package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kardex/internal/core/types"
	"kardex/internal/domain/documents/purchase"
)

type auditColumns struct {
	CreatedAt time.Time `db:"created_at"`
	CreatedBy string    `db:"created_by"`
}

type mockRecord struct {
	auditColumns
	Ref      string      `db:"ref"`
	Cost     types.Money `db:"cost"`
	Internal string      `db:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockRecord]()

	expected := []string{"created_at", "created_by", "ref", "cost"}
	for _, c := range expected {
		assert.Contains(t, cols, c)
	}
	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expected))
}

func TestExtractDBColumns_Document(t *testing.T) {
	cols := ExtractDBColumns[purchase.Document]()

	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "number")
	assert.Contains(t, cols, "doc_type")
	assert.Contains(t, cols, "total_value")
	// Lines are loaded separately and carry no column.
	assert.NotContains(t, cols, "lines")
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	rec := mockRecord{
		auditColumns: auditColumns{CreatedAt: now, CreatedBy: "buyer-1"},
		Ref:          "ART-1",
		Cost:         types.MustMoney("110"),
		Internal:     "hidden",
	}

	m := StructToMap(rec)

	assert.Equal(t, "ART-1", m["ref"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, "buyer-1", m["created_by"])
	cost, ok := m["cost"].(types.Money)
	assert.True(t, ok)
	assert.True(t, cost.Equal(types.MustMoney("110")))
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 4)
}
