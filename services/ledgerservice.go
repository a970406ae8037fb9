package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"kalavedi/model"
	"kalavedi/repository"
)

var (
	ErrInvalidTransaction = errors.New("description, a positive amount, a type and a date are required")
	ErrInvalidFilter      = errors.New("invalid ledger filter")
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Ledger views.
const (
	ViewOverview = "overview"
	ViewMonthly  = "monthly"
	ViewYearly   = "yearly"
)

type TransactionInput struct {
	Description string
	Amount      float64
	Type        model.TransactionType
	// Date is YYYY-MM-DD or RFC3339.
	Date string
}

// LedgerFilter selects the transactions a report covers. Month is 1-12 and
// only used by the monthly view.
type LedgerFilter struct {
	View  string
	Year  int
	Month int
}

type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
	Count   int     `json:"transactionCount"`
}

type MonthlyReport struct {
	Month            string  `json:"month"`
	Year             int     `json:"year"`
	Income           float64 `json:"income"`
	Expense          float64 `json:"expense"`
	Balance          float64 `json:"balance"`
	TransactionCount int     `json:"transactionCount"`

	monthIndex int
}

type YearlyReport struct {
	Year    int             `json:"year"`
	Income  float64         `json:"income"`
	Expense float64         `json:"expense"`
	Balance float64         `json:"balance"`
	Months  []MonthlyReport `json:"months"`
}

// LedgerReport is everything the ledger page shows for one filter.
type LedgerReport struct {
	View           string              `json:"view"`
	Totals         Totals              `json:"totals"`
	Period         Totals              `json:"period"`
	Transactions   []model.Transaction `json:"transactions"`
	Monthly        []MonthlyReport     `json:"monthly"`
	Yearly         []YearlyReport      `json:"yearly"`
	AvailableYears []int               `json:"availableYears"`
}

type LedgerService struct {
	repo   repository.TransactionRepository
	logger *zap.Logger
}

func NewLedgerService(repo repository.TransactionRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{repo: repo, logger: logger}
}

func parseLedgerDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (in TransactionInput) toTransaction() (*model.Transaction, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" || in.Amount <= 0 || in.Date == "" {
		return nil, ErrInvalidTransaction
	}
	if in.Type != model.Income && in.Type != model.Expense {
		return nil, ErrInvalidTransaction
	}
	date, err := parseLedgerDate(in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	date = date.UTC()
	return &model.Transaction{
		Description: desc,
		Amount:      in.Amount,
		Type:        in.Type,
		Date:        date.Format("2006-01-02T15:04:05.000Z"),
		Timestamp:   date.UnixMilli(),
	}, nil
}

func (s *LedgerService) Create(ctx context.Context, in TransactionInput) (*model.Transaction, error) {
	t, err := in.toTransaction()
	if err != nil {
		return nil, err
	}
	t.CreatedAt = time.Now()
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	t.ID = id
	s.logger.Info("transaction added", zap.String("id", id), zap.String("type", string(t.Type)), zap.Float64("amount", t.Amount))
	return t, nil
}

func (s *LedgerService) Update(ctx context.Context, id string, in TransactionInput) (*model.Transaction, error) {
	t, err := in.toTransaction()
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.ID = id
	t.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update transaction %s: %w", id, err)
	}
	return t, nil
}

func (s *LedgerService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Report recomputes totals and summaries from the stored transactions.
func (s *LedgerService) Report(ctx context.Context, f LedgerFilter) (*LedgerReport, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	filtered := FilterTransactions(all, f)
	view := f.View
	if view == "" {
		view = ViewOverview
	}
	return &LedgerReport{
		View:           view,
		Totals:         ComputeTotals(all),
		Period:         ComputeTotals(filtered),
		Transactions:   filtered,
		Monthly:        MonthlyReports(all),
		Yearly:         YearlyReports(all),
		AvailableYears: AvailableYears(all),
	}, nil
}

func (f LedgerFilter) check() error {
	switch f.View {
	case "", ViewOverview:
	case ViewMonthly:
		if f.Month < 1 || f.Month > 12 || f.Year <= 0 {
			return fmt.Errorf("%w: monthly view needs year and month 1-12", ErrInvalidFilter)
		}
	case ViewYearly:
		if f.Year <= 0 {
			return fmt.Errorf("%w: yearly view needs a year", ErrInvalidFilter)
		}
	default:
		return fmt.Errorf("%w: unknown view %q", ErrInvalidFilter, f.View)
	}
	return nil
}

// FilterTransactions keeps the transactions in the filter's period, newest
// first.
func FilterTransactions(txs []model.Transaction, f LedgerFilter) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		when := t.Time()
		switch f.View {
		case ViewMonthly:
			if when.Year() != f.Year || int(when.Month()) != f.Month {
				continue
			}
		case ViewYearly:
			if when.Year() != f.Year {
				continue
			}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

func ComputeTotals(txs []model.Transaction) Totals {
	var tot Totals
	for _, t := range txs {
		switch t.Type {
		case model.Income:
			tot.Income += t.Amount
		case model.Expense:
			tot.Expense += t.Amount
		}
	}
	tot.Balance = tot.Income - tot.Expense
	tot.Count = len(txs)
	return tot
}

// MonthlyReports groups by calendar month, newest year first and January
// first within a year.
func MonthlyReports(txs []model.Transaction) []MonthlyReport {
	type key struct{ year, month int }
	groups := map[key]*MonthlyReport{}
	for _, t := range txs {
		when := t.Time()
		k := key{when.Year(), int(when.Month()) - 1}
		r, ok := groups[k]
		if !ok {
			r = &MonthlyReport{Month: monthNames[k.month], Year: k.year, monthIndex: k.month}
			groups[k] = r
		}
		switch t.Type {
		case model.Income:
			r.Income += t.Amount
		case model.Expense:
			r.Expense += t.Amount
		}
		r.Balance = r.Income - r.Expense
		r.TransactionCount++
	}

	out := make([]MonthlyReport, 0, len(groups))
	for _, r := range groups {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].monthIndex < out[j].monthIndex
	})
	return out
}

// YearlyReports groups by calendar year, newest first, each with its months.
func YearlyReports(txs []model.Transaction) []YearlyReport {
	byYear := map[int]*YearlyReport{}
	for _, m := range MonthlyReports(txs) {
		r, ok := byYear[m.Year]
		if !ok {
			r = &YearlyReport{Year: m.Year, Months: []MonthlyReport{}}
			byYear[m.Year] = r
		}
		r.Income += m.Income
		r.Expense += m.Expense
		r.Balance = r.Income - r.Expense
		r.Months = append(r.Months, m)
	}

	out := make([]YearlyReport, 0, len(byYear))
	for _, r := range byYear {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// AvailableYears lists the years that have transactions, newest first.
func AvailableYears(txs []model.Transaction) []int {
	seen := map[int]bool{}
	years := []int{}
	for _, t := range txs {
		y := t.Time().Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}
