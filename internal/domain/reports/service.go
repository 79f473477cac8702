package reports

import (
	"context"
	"sort"

	"kardex/internal/core/apperror"
	"kardex/internal/core/types"
	"kardex/pkg/logger"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

var (
	thresholdA = types.MustMoney("80")
	thresholdB = types.MustMoney("95")
	hundred    = types.MustMoney("100")
)

// Service computes the valuation report.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetValuation returns the classified valuation view.
//
// The pipeline order is fixed: fetch the whole costed set, classify, then
// filter, then paginate. An article keeps the same band no matter which
// filtered slice it is viewed through, and the global totals describe the
// whole catalog rather than the current page.
func (s *Service) GetValuation(ctx context.Context, filters Filters, page Page) (*Result, error) {
	if filters.Band != nil && !filters.Band.Valid() {
		return nil, apperror.NewValidation("unknown band").
			WithDetail("band", string(*filters.Band))
	}
	page = normalizePage(page)

	rows, err := s.repo.FetchValuationRows(ctx)
	if err != nil {
		return nil, err
	}

	items := classify(rows)
	totals := globalTotals(items)

	filtered := applyFilters(items, filters)
	pageItems := slicePage(filtered, page)

	logger.Debug(ctx, "valuation computed",
		"total_articles", len(items),
		"filtered", len(filtered),
		"page_size", len(pageItems))

	return &Result{
		Items:         pageItems,
		FilteredCount: len(filtered),
		Totals:        totals,
		Page:          page,
	}, nil
}

// ListUncostedArticles returns articles whose cost was never established.
// NULL cost is a distinct state, not zero; these rows never enter the
// classification above.
func (s *Service) ListUncostedArticles(ctx context.Context, filter UncostedFilter, page Page) ([]UncostedArticle, int64, error) {
	page = normalizePage(page)
	return s.repo.FetchUncosted(ctx, filter, page)
}

// classify sorts rows by value descending (ties by article ref ascending)
// and assigns bands by cumulative share of the total value. An item whose
// running share starts below a threshold belongs to the lower band, so the
// item straddling a boundary is included there and band A may hold slightly
// more than 80% of total value.
func classify(rows []Row) []Item {
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, Item{
			ArticleRef:     r.ArticleRef,
			SubcategoryID:  r.SubcategoryID,
			Quantity:       r.Quantity,
			Cost:           r.Cost,
			Value:          types.Round2(r.Quantity.Mul(r.Cost)),
			LastPurchaseAt: r.LastPurchaseAt,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		cmp := items[i].Value.Cmp(items[j].Value)
		if cmp != 0 {
			return cmp > 0
		}
		return items[i].ArticleRef < items[j].ArticleRef
	})

	total := types.Zero()
	for _, it := range items {
		total = total.Add(it.Value)
	}

	cumulative := types.Zero()
	for i := range items {
		pctBefore := types.Zero()
		if total.IsPositive() {
			pctBefore = cumulative.Div(total).Mul(hundred)
		}
		cumulative = cumulative.Add(items[i].Value)
		items[i].CumulativeVal = cumulative
		if total.IsPositive() {
			items[i].CumulativePct = types.Round2(cumulative.Div(total).Mul(hundred))
		} else {
			items[i].CumulativePct = types.Zero()
		}

		switch {
		case pctBefore.LessThan(thresholdA):
			items[i].Band = BandA
		case pctBefore.LessThan(thresholdB):
			items[i].Band = BandB
		default:
			items[i].Band = BandC
		}
	}

	return items
}

func globalTotals(items []Item) Totals {
	totals := Totals{
		Count:      len(items),
		TotalValue: types.Zero(),
		Bands: map[Band]BandTotal{
			BandA: {Value: types.Zero()},
			BandB: {Value: types.Zero()},
			BandC: {Value: types.Zero()},
		},
	}
	for _, it := range items {
		totals.TotalValue = totals.TotalValue.Add(it.Value)
		bt := totals.Bands[it.Band]
		bt.Count++
		bt.Value = bt.Value.Add(it.Value)
		totals.Bands[it.Band] = bt
	}
	return totals
}

func applyFilters(items []Item, f Filters) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.SubcategoryID != nil {
			if it.SubcategoryID == nil || *it.SubcategoryID != *f.SubcategoryID {
				continue
			}
		}
		if f.Band != nil && it.Band != *f.Band {
			continue
		}
		if f.StockOnly && !it.Quantity.IsPositive() {
			continue
		}
		if f.DateFrom != nil {
			if it.LastPurchaseAt == nil || it.LastPurchaseAt.Before(*f.DateFrom) {
				continue
			}
		}
		if f.DateTo != nil {
			if it.LastPurchaseAt == nil || it.LastPurchaseAt.After(*f.DateTo) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func slicePage(items []Item, page Page) []Item {
	if page.Offset >= len(items) {
		return []Item{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

func normalizePage(page Page) Page {
	if page.Limit <= 0 {
		page.Limit = defaultPageLimit
	}
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return page
}
