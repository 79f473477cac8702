package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/domain/documents/purchase"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{
		"supplier_ref": "SUP-001",
		"note":         "",
		"status":       "active",
	}
	newState := map[string]any{
		"supplier_ref": "SUP-002",
		"note":         "",
		"status":       "active",
	}

	changes := Diff(oldState, newState)

	require.Len(t, changes, 1)
	entry, ok := changes["supplier_ref"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SUP-001", entry["old"])
	assert.Equal(t, "SUP-002", entry["new"])
}

func TestDiff_NoChanges(t *testing.T) {
	state := map[string]any{"note": "same", "status": "active"}

	assert.Empty(t, Diff(state, state))
}

func TestDiff_AddedAndRemovedKeys(t *testing.T) {
	changes := Diff(
		map[string]any{"note": "old only"},
		map[string]any{"status": "active"},
	)

	require.Len(t, changes, 2)

	removed := changes["note"].(map[string]any)
	assert.Equal(t, "old only", removed["old"])
	assert.Nil(t, removed["new"])

	added := changes["status"].(map[string]any)
	assert.Nil(t, added["old"])
	assert.Equal(t, "active", added["new"])
}

func TestHeaderState(t *testing.T) {
	date := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	doc := &purchase.Document{
		SupplierRef: "SUP-042",
		Date:        date,
		Note:        "quarterly restock",
		Status:      purchase.StatusActive,
	}

	state := headerState(doc)

	assert.Equal(t, "2025-03-14T10:30:00Z", state["date"])
	assert.Equal(t, "SUP-042", state["supplier_ref"])
	assert.Equal(t, "quarterly restock", state["note"])
	assert.Equal(t, "active", state["status"])

	assert.Nil(t, headerState(nil))
}
