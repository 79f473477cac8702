package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kardex/internal/core/apperror"
	"kardex/internal/core/types"
	"kardex/internal/domain/registers/costhistory"
)

func validInput(lines ...InputLine) RegisterInput {
	return RegisterInput{
		SupplierRef: "SUP-001",
		Date:        time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		ActingUser:  "buyer-1",
		Lines:       lines,
	}
}

func TestRegister_FirstPurchase(t *testing.T) {
	svc, env, _ := newTestService()
	env.addArticle("ART-1", types.NoMoney(), types.Zero())

	res, err := svc.Register(context.Background(), validInput(InputLine{
		ArticleRef: "ART-1",
		Quantity:   types.MustMoney("200"),
		UnitCost:   types.MustMoney("25000"),
	}))
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.DocumentID)
	assert.Equal(t, "COM000001", res.DocumentNumber)
	assert.True(t, res.TotalValue.Equal(types.MustMoney("5000000")))
	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].CostBefore.IsZero())
	assert.True(t, res.Lines[0].CostAfter.Equal(types.MustMoney("25000")))

	art := env.arts["ART-1"]
	require.True(t, art.Cost.Valid)
	assert.True(t, art.Cost.Decimal.Equal(types.MustMoney("25000")))

	doc := env.docs[1]
	require.NotNil(t, doc)
	assert.Equal(t, StatusActive, doc.Status)
	assert.Equal(t, DocTypePurchase, doc.DocType)
	assert.Equal(t, "buyer-1", doc.CreatedBy)

	require.Len(t, env.history, 1)
	h := env.history[0]
	assert.Equal(t, costhistory.KindPurchase, h.Kind)
	assert.Equal(t, "COM000001", h.DocumentNumber)
	assert.True(t, h.QuantityBefore.IsZero())
	assert.True(t, h.CostAfter.Equal(types.MustMoney("25000")))
	assert.Equal(t, "buyer-1", h.ActingUser)

	assert.Equal(t, []string{"COM000001"}, env.synced)
}

func TestRegister_BlendsExistingPosition(t *testing.T) {
	svc, env, _ := newTestService()
	env.addArticle("ART-1", types.SomeMoney(types.MustMoney("100")), types.MustMoney("10"))

	res, err := svc.Register(context.Background(), validInput(InputLine{
		ArticleRef: "ART-1",
		Quantity:   types.MustMoney("5"),
		UnitCost:   types.MustMoney("130"),
	}))
	require.NoError(t, err)

	require.Len(t, res.Lines, 1)
	assert.True(t, res.Lines[0].CostAfter.Equal(types.MustMoney("110")),
		"got %s", res.Lines[0].CostAfter)

	h := env.history[0]
	assert.True(t, h.QuantityBefore.Equal(types.MustMoney("10")))
	assert.True(t, h.ValueBefore.Equal(types.MustMoney("1000")))
	assert.True(t, h.QuantityAfter.Equal(types.MustMoney("15")))
	assert.True(t, h.ValueAfter.Equal(types.MustMoney("1650")))
	assert.True(t, h.ValueDelta.Equal(types.MustMoney("650")))
}

func TestRegister_ValidationBeforeAllocation(t *testing.T) {
	svc, env, alloc := newTestService()
	env.addArticle("ART-1", types.NoMoney(), types.Zero())

	in := validInput(InputLine{ArticleRef: "ART-1", Quantity: types.MustMoney("1"), UnitCost: types.MustMoney("10")})
	in.SupplierRef = ""

	_, err := svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Zero(t, alloc.calls, "validation failures must not consume sequence values")
	assert.Empty(t, env.docs)
}

func TestRegister_UnknownArticleRollsBack(t *testing.T) {
	svc, env, _ := newTestService()
	env.addArticle("ART-1", types.SomeMoney(types.MustMoney("50")), types.MustMoney("4"))

	_, err := svc.Register(context.Background(), validInput(
		InputLine{ArticleRef: "ART-1", Quantity: types.MustMoney("2"), UnitCost: types.MustMoney("60")},
		InputLine{ArticleRef: "ART-MISSING", Quantity: types.MustMoney("1"), UnitCost: types.MustMoney("10")},
	))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	// Nothing from the aborted posting may remain, including the first
	// line's cost update.
	assert.Empty(t, env.docs)
	assert.Empty(t, env.history)
	assert.Empty(t, env.synced)
	assert.True(t, env.arts["ART-1"].Cost.Decimal.Equal(types.MustMoney("50")))
}

func TestRegister_MultiLineAudit(t *testing.T) {
	svc, env, _ := newTestService()
	env.addArticle("ART-1", types.NoMoney(), types.Zero())
	env.addArticle("ART-2", types.SomeMoney(types.MustMoney("20")), types.MustMoney("3"))

	res, err := svc.Register(context.Background(), validInput(
		InputLine{ArticleRef: "ART-1", Quantity: types.MustMoney("2"), UnitCost: types.MustMoney("10")},
		InputLine{ArticleRef: "ART-2", Quantity: types.MustMoney("3"), UnitCost: types.MustMoney("40")},
	))
	require.NoError(t, err)

	// 2*10 + 3*40
	assert.True(t, res.TotalValue.Equal(types.MustMoney("140")))
	require.Len(t, env.history, 2)
	assert.Equal(t, 1, env.history[0].LineNo)
	assert.Equal(t, 2, env.history[1].LineNo)

	lines, err := env.GetLines(context.Background(), res.DocumentID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, DirectionInbound, lines[0].Direction)

	// (3*20 + 3*40) / 6 = 30
	assert.True(t, env.arts["ART-2"].Cost.Decimal.Equal(types.MustMoney("30")))

	// One sync event per document, not per line.
	assert.Len(t, env.synced, 1)
}

func TestRegister_SequentialNumbers(t *testing.T) {
	svc, env, _ := newTestService()
	env.addArticle("ART-1", types.NoMoney(), types.Zero())

	line := InputLine{ArticleRef: "ART-1", Quantity: types.MustMoney("1"), UnitCost: types.MustMoney("10")}
	first, err := svc.Register(context.Background(), validInput(line))
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), validInput(line))
	require.NoError(t, err)

	assert.Equal(t, "COM000001", first.DocumentNumber)
	assert.Equal(t, "COM000002", second.DocumentNumber)
	assert.Equal(t, first.DocumentID+1, second.DocumentID)
}

func TestGetHistory(t *testing.T) {
	svc, env, _ := newTestService()
	env.addArticle("ART-1", types.NoMoney(), types.Zero())

	res, err := svc.Register(context.Background(), validInput(
		InputLine{ArticleRef: "ART-1", Quantity: types.MustMoney("4"), UnitCost: types.MustMoney("25")},
	))
	require.NoError(t, err)

	hist, err := svc.GetHistory(context.Background(), res.DocumentNumber)
	require.NoError(t, err)
	assert.Equal(t, res.DocumentID, hist.Header.ID)
	require.Len(t, hist.Lines, 1)
	assert.Equal(t, "ART-1", hist.Lines[0].ArticleRef)

	_, err = svc.GetHistory(context.Background(), "COM999999")
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_DefaultLimit(t *testing.T) {
	svc, _, _ := newTestService()

	res, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Limit)
}

func TestGetCostHistory(t *testing.T) {
	svc, env, _ := newTestService()
	env.addArticle("ART-1", types.NoMoney(), types.Zero())

	_, err := svc.Register(context.Background(), validInput(
		InputLine{ArticleRef: "ART-1", Quantity: types.MustMoney("1"), UnitCost: types.MustMoney("10")},
	))
	require.NoError(t, err)

	entries, err := svc.GetCostHistory(context.Background(), "ART-1", costhistory.ListFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, costhistory.KindPurchase, entries[0].Kind)
}
