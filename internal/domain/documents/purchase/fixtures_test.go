package purchase

import (
	"context"
	"sort"

	"kardex/internal/core/apperror"
	"kardex/internal/core/sequence"
	"kardex/internal/core/types"
	"kardex/internal/domain/articles"
	"kardex/internal/domain/registers/costhistory"
)

// memEnv backs all persistence contracts with in-process maps. Its
// transaction manager snapshots the whole state and restores it when the
// transactional function fails, which makes rollback assertions possible
// without a database.
type memEnv struct {
	docs     map[int64]*Document
	byNumber map[string]int64
	lines    map[int64][]Line
	arts     map[string]*articles.Article
	stock    map[string]types.Money
	history  []costhistory.Entry
	synced   []string

	headerChanges []int64
	nextHistoryID int64
}

func newMemEnv() *memEnv {
	return &memEnv{
		docs:     make(map[int64]*Document),
		byNumber: make(map[string]int64),
		lines:    make(map[int64][]Line),
		arts:     make(map[string]*articles.Article),
		stock:    make(map[string]types.Money),
	}
}

func (e *memEnv) addArticle(ref string, cost types.NullMoney, quantity types.Money) {
	e.arts[ref] = &articles.Article{Ref: ref, Cost: cost}
	e.stock[ref] = quantity
}

func (e *memEnv) snapshot() *memEnv {
	c := newMemEnv()
	for id, d := range e.docs {
		dd := *d
		c.docs[id] = &dd
	}
	for n, id := range e.byNumber {
		c.byNumber[n] = id
	}
	for id, ls := range e.lines {
		c.lines[id] = append([]Line(nil), ls...)
	}
	for ref, a := range e.arts {
		aa := *a
		c.arts[ref] = &aa
	}
	for ref, q := range e.stock {
		c.stock[ref] = q
	}
	c.history = append([]costhistory.Entry(nil), e.history...)
	c.synced = append([]string(nil), e.synced...)
	c.headerChanges = append([]int64(nil), e.headerChanges...)
	c.nextHistoryID = e.nextHistoryID
	return c
}

func (e *memEnv) restore(s *memEnv) {
	*e = *s
}

// RunInTransaction implements tx.Manager with all-or-nothing semantics.
func (e *memEnv) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := e.snapshot()
	if err := fn(ctx); err != nil {
		e.restore(saved)
		return err
	}
	return nil
}

// --- purchase.Repository ---

func (e *memEnv) Create(ctx context.Context, doc *Document) error {
	d := *doc
	e.docs[doc.ID] = &d
	e.byNumber[doc.Number] = doc.ID
	return nil
}

func (e *memEnv) GetByNumber(ctx context.Context, number string) (*Document, error) {
	id, ok := e.byNumber[number]
	if !ok {
		return nil, apperror.NewNotFound("document", number)
	}
	return e.GetByID(ctx, id)
}

func (e *memEnv) GetByID(ctx context.Context, id int64) (*Document, error) {
	d, ok := e.docs[id]
	if !ok {
		return nil, apperror.NewNotFound("document", id)
	}
	dd := *d
	return &dd, nil
}

func (e *memEnv) UpdateHeader(ctx context.Context, doc *Document) error {
	if _, ok := e.docs[doc.ID]; !ok {
		return apperror.NewNotFound("document", doc.ID)
	}
	d := *doc
	e.docs[doc.ID] = &d
	return nil
}

func (e *memEnv) GetLines(ctx context.Context, documentID int64) ([]Line, error) {
	out := append([]Line(nil), e.lines[documentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, nil
}

func (e *memEnv) GetLine(ctx context.Context, documentID int64, lineNo int) (*Line, error) {
	for _, l := range e.lines[documentID] {
		if l.LineNo == lineNo {
			ll := l
			return &ll, nil
		}
	}
	return nil, apperror.NewNotFound("document line", lineNo)
}

func (e *memEnv) InsertLine(ctx context.Context, line *Line) error {
	e.lines[line.DocumentID] = append(e.lines[line.DocumentID], *line)
	return nil
}

func (e *memEnv) UpdateLine(ctx context.Context, line *Line) error {
	ls := e.lines[line.DocumentID]
	for i := range ls {
		if ls[i].LineNo == line.LineNo {
			ls[i] = *line
			return nil
		}
	}
	return apperror.NewNotFound("document line", line.LineNo)
}

func (e *memEnv) UpdateTotal(ctx context.Context, documentID int64, total types.Money) error {
	d, ok := e.docs[documentID]
	if !ok {
		return apperror.NewNotFound("document", documentID)
	}
	d.TotalValue = total
	return nil
}

func (e *memEnv) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	items := make([]*Document, 0, len(e.docs))
	for _, d := range e.docs {
		dd := *d
		items = append(items, &dd)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return ListResult{Items: items, TotalCount: int64(len(items)), Limit: filter.Limit, Offset: filter.Offset}, nil
}

// --- articles.Repository / StockLedger / Catalog ---

func (e *memEnv) GetForUpdate(ctx context.Context, ref string) (*articles.Article, error) {
	a, ok := e.arts[ref]
	if !ok {
		return nil, apperror.NewNotFound("article", ref)
	}
	aa := *a
	return &aa, nil
}

func (e *memEnv) UpdateCost(ctx context.Context, ref string, cost types.Money, actingUser string) error {
	a, ok := e.arts[ref]
	if !ok {
		return apperror.NewNotFound("article", ref)
	}
	a.Cost = types.SomeMoney(cost)
	a.UpdatedBy = actingUser
	return nil
}

func (e *memEnv) TouchLastPurchase(ctx context.Context, ref string) error {
	if _, ok := e.arts[ref]; !ok {
		return apperror.NewNotFound("article", ref)
	}
	return nil
}

func (e *memEnv) GetQuantity(ctx context.Context, ref string) (types.Money, error) {
	return e.stock[ref], nil
}

func (e *memEnv) ArticleExists(ctx context.Context, ref string) (bool, error) {
	_, ok := e.arts[ref]
	return ok, nil
}

func (e *memEnv) GetSubcategory(ctx context.Context, ref string) (int64, error) {
	a, ok := e.arts[ref]
	if !ok || a.SubcategoryID == nil {
		return 0, apperror.NewNotFound("article", ref)
	}
	return *a.SubcategoryID, nil
}

// --- costhistory.Repository ---

func (e *memEnv) Append(ctx context.Context, entry *Entry) error {
	e.nextHistoryID++
	entry.ID = e.nextHistoryID
	e.history = append(e.history, *entry)
	return nil
}

func (e *memEnv) ListByArticle(ctx context.Context, articleRef string, filter costhistory.ListFilter) ([]costhistory.Entry, error) {
	var out []costhistory.Entry
	for _, h := range e.history {
		if h.ArticleRef == articleRef {
			out = append(out, h)
		}
	}
	return out, nil
}

func (e *memEnv) ListByDocument(ctx context.Context, documentID int64) ([]costhistory.Entry, error) {
	var out []costhistory.Entry
	for _, h := range e.history {
		if h.DocumentID == documentID {
			out = append(out, h)
		}
	}
	return out, nil
}

// --- SyncQueue / ChangeRecorder ---

func (e *memEnv) EnqueueSync(ctx context.Context, documentID int64, documentNumber string) error {
	e.synced = append(e.synced, documentNumber)
	return nil
}

func (e *memEnv) RecordHeaderChange(ctx context.Context, documentID int64, actingUser string, before, after *Document) error {
	e.headerChanges = append(e.headerChanges, documentID)
	return nil
}

// Entry aliases keep the fake's method set readable.
type Entry = costhistory.Entry

// countingAllocator counts sequence calls on top of the in-memory allocator.
type countingAllocator struct {
	*sequence.MockAllocator
	calls int
}

func (c *countingAllocator) NextValue(ctx context.Context, counterName string) (int64, error) {
	c.calls++
	return c.MockAllocator.NextValue(ctx, counterName)
}

func newTestService() (*Service, *memEnv, *countingAllocator) {
	env := newMemEnv()
	alloc := &countingAllocator{MockAllocator: sequence.NewMockAllocator()}
	svc := NewService(env, env, env, env, env, alloc, env, env, env)
	return svc, env, alloc
}
