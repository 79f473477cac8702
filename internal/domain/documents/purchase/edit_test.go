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

// seedPostedPurchase plants an already-posted document: ART-1 had 10 units
// at cost 100, then this purchase added 5 at 130, leaving the article at
// 15 units and weighted-average cost 110.
func seedPostedPurchase(env *memEnv) *Document {
	doc := &Document{
		ID:          7,
		Number:      "COM000007",
		DocType:     DocTypePurchase,
		SupplierRef: "SUP-001",
		Date:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:      StatusActive,
		TotalValue:  types.MustMoney("650"),
		CreatedBy:   "buyer-1",
		UpdatedBy:   "buyer-1",
	}
	env.docs[doc.ID] = doc
	env.byNumber[doc.Number] = doc.ID
	env.lines[doc.ID] = []Line{{
		DocumentID: doc.ID,
		LineNo:     1,
		ArticleRef: "ART-1",
		Quantity:   types.MustMoney("5"),
		UnitCost:   types.MustMoney("130"),
		Value:      types.MustMoney("650"),
		Direction:  DirectionInbound,
	}}
	env.addArticle("ART-1", types.SomeMoney(types.MustMoney("110")), types.MustMoney("15"))
	return doc
}

func TestEdit_NothingToUpdate(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Edit(context.Background(), EditInput{DocumentNumber: "COM000007"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestEdit_InvalidStatus(t *testing.T) {
	svc, _, _ := newTestService()

	bad := Status("archived")
	_, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		Header:         &HeaderChanges{Status: &bad},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestEdit_HeaderOnly(t *testing.T) {
	svc, env, _ := newTestService()
	seedPostedPurchase(env)

	note := "corrected delivery note"
	status := StatusInactive
	res, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		Header:         &HeaderChanges{Note: &note, Status: &status},
		ActingUser:     "auditor-1",
	})
	require.NoError(t, err)

	assert.True(t, res.HeaderUpdated)
	assert.Empty(t, res.UpdatedLines)

	doc := env.docs[7]
	assert.Equal(t, note, doc.Note)
	assert.Equal(t, StatusInactive, doc.Status)
	assert.Equal(t, "auditor-1", doc.UpdatedBy)
	assert.Equal(t, []int64{7}, env.headerChanges)

	// Identity and money stay untouched on a header-only edit.
	assert.Equal(t, "COM000007", doc.Number)
	assert.True(t, doc.TotalValue.Equal(types.MustMoney("650")))
	assert.Empty(t, env.synced)
	assert.Empty(t, env.history)
}

func TestEdit_LineCorrectionRoundTrip(t *testing.T) {
	svc, env, _ := newTestService()
	seedPostedPurchase(env)

	// Correct the purchase price from 130 down to 100.
	res, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		Lines:          []LineCorrection{{LineNo: 1, Quantity: types.MustMoney("5"), UnitCost: types.MustMoney("100")}},
		ActingUser:     "auditor-1",
	})
	require.NoError(t, err)

	require.Len(t, res.UpdatedLines, 1)
	assert.True(t, res.UpdatedLines[0].Value.Equal(types.MustMoney("500")))
	assert.True(t, res.TotalValue.Equal(types.MustMoney("500")))
	assert.True(t, env.arts["ART-1"].Cost.Decimal.Equal(types.MustMoney("100")),
		"got %s", env.arts["ART-1"].Cost.Decimal)

	require.Len(t, env.history, 1)
	h := env.history[0]
	assert.Equal(t, costhistory.KindManualAdjustment, h.Kind)
	assert.True(t, h.CostBefore.Equal(types.MustMoney("110")))
	assert.True(t, h.CostAfter.Equal(types.MustMoney("100")))
	assert.True(t, h.ValueDelta.Equal(types.MustMoney("-150")))
	assert.True(t, h.QuantityDelta.IsZero())
	assert.Equal(t, []string{"COM000007"}, env.synced)

	// Correcting back restores the original cost exactly, regardless of the
	// state the article passed through in between.
	_, err = svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		Lines:          []LineCorrection{{LineNo: 1, Quantity: types.MustMoney("5"), UnitCost: types.MustMoney("130")}},
		ActingUser:     "auditor-1",
	})
	require.NoError(t, err)
	assert.True(t, env.arts["ART-1"].Cost.Decimal.Equal(types.MustMoney("110")))
	assert.True(t, env.docs[7].TotalValue.Equal(types.MustMoney("650")))
}

func TestEdit_QuantityCorrection(t *testing.T) {
	svc, env, _ := newTestService()
	seedPostedPurchase(env)

	// 3 instead of 5 at the same price: without the original movement the
	// position is 10 units worth 1000; reapplying 3@130 gives 1390/13.
	res, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		Lines:          []LineCorrection{{LineNo: 1, Quantity: types.MustMoney("3"), UnitCost: types.MustMoney("130")}},
	})
	require.NoError(t, err)

	assert.True(t, res.TotalValue.Equal(types.MustMoney("390")))
	assert.True(t, env.arts["ART-1"].Cost.Decimal.Equal(types.MustMoney("106.92")),
		"got %s", env.arts["ART-1"].Cost.Decimal)
	assert.True(t, env.history[0].QuantityDelta.Equal(types.MustMoney("-2")))
}

func TestEdit_UnknownLineRollsBackHeader(t *testing.T) {
	svc, env, _ := newTestService()
	seedPostedPurchase(env)

	note := "should not survive"
	_, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		Header:         &HeaderChanges{Note: &note},
		Lines:          []LineCorrection{{LineNo: 99, Quantity: types.MustMoney("1"), UnitCost: types.MustMoney("1")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	assert.Empty(t, env.docs[7].Note)
	assert.Empty(t, env.headerChanges)
	assert.Empty(t, env.history)
}

func TestEdit_NewLineConflict(t *testing.T) {
	svc, env, _ := newTestService()
	seedPostedPurchase(env)

	_, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		NewLines:       []InputLine{{ArticleRef: "ART-1", Quantity: types.MustMoney("2"), UnitCost: types.MustMoney("90")}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	assert.Len(t, env.lines[7], 1)
	assert.True(t, env.arts["ART-1"].Cost.Decimal.Equal(types.MustMoney("110")))
}

func TestEdit_NewLineAppended(t *testing.T) {
	svc, env, _ := newTestService()
	seedPostedPurchase(env)
	env.addArticle("ART-2", types.NoMoney(), types.Zero())

	res, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		NewLines:       []InputLine{{ArticleRef: "ART-2", Quantity: types.MustMoney("4"), UnitCost: types.MustMoney("25")}},
		ActingUser:     "auditor-1",
	})
	require.NoError(t, err)

	require.Len(t, res.InsertedLines, 1)
	assert.Equal(t, 2, res.InsertedLines[0].LineNo)
	assert.Equal(t, "ART-2", res.InsertedLines[0].ArticleRef)
	assert.True(t, res.TotalValue.Equal(types.MustMoney("750")))
	assert.True(t, env.arts["ART-2"].Cost.Decimal.Equal(types.MustMoney("25")))

	require.Len(t, env.history, 1)
	assert.Equal(t, costhistory.KindPurchase, env.history[0].Kind)
	assert.Equal(t, []string{"COM000007"}, env.synced)
}

func TestEdit_NotAPurchase(t *testing.T) {
	svc, env, _ := newTestService()
	doc := seedPostedPurchase(env)
	doc.DocType = "ISSUE"

	note := "x"
	_, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM000007",
		Header:         &HeaderChanges{Note: &note},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
}

func TestEdit_UnknownDocument(t *testing.T) {
	svc, _, _ := newTestService()

	note := "x"
	_, err := svc.Edit(context.Background(), EditInput{
		DocumentNumber: "COM424242",
		Header:         &HeaderChanges{Note: &note},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
