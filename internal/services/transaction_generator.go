package services

import (
	"fmt"
	"sort"
	"strings"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// MaxGeneratedTransactions caps a single Generate call
const MaxGeneratedTransactions = 10000

// entryTemplate describes one kind of household entry
type entryTemplate struct {
	Type     models.TransactionType
	Category string
	Min      float64
	Max      float64
	Weight   int
	Describe func(f *gofakeit.Faker) string
}

// TransactionGenerator implements TransactionGeneratorInterface with gofakeit
type TransactionGenerator struct {
	faker       *gofakeit.Faker
	templates   []entryTemplate
	totalWeight int
}

// NewTransactionGenerator creates a generator whose output, apart from the
// random transaction ids, is fully determined by seed
func NewTransactionGenerator(seed uint64) *TransactionGenerator {
	templates := initializeTemplates()

	total := 0
	for _, t := range templates {
		total += t.Weight
	}

	return &TransactionGenerator{
		faker:       gofakeit.New(seed),
		templates:   templates,
		totalWeight: total,
	}
}

func initializeTemplates() []entryTemplate {
	shop := func(f *gofakeit.Faker) string { return f.Company() }

	return []entryTemplate{
		// Income
		{models.TransactionTypeIncome, "salary", 2500, 6000, 4, func(f *gofakeit.Faker) string {
			return "Salary from " + f.Company()
		}},
		{models.TransactionTypeIncome, "freelance", 100, 1500, 2, func(f *gofakeit.Faker) string {
			return "Invoice " + f.Numerify("FV/###/####")
		}},
		{models.TransactionTypeIncome, "refund", 5, 200, 1, func(f *gofakeit.Faker) string {
			return "Refund from " + f.Company()
		}},

		// Expenses
		{models.TransactionTypeExpense, "rent", 900, 2200, 3, func(f *gofakeit.Faker) string {
			return "Rent " + f.Street()
		}},
		{models.TransactionTypeExpense, "groceries", 10, 250, 12, shop},
		{models.TransactionTypeExpense, "dining", 8, 120, 6, shop},
		{models.TransactionTypeExpense, "transport", 3, 90, 6, func(f *gofakeit.Faker) string {
			return f.RandomString([]string{"Bus ticket", "Fuel", "Taxi", "Train ticket", "Parking"})
		}},
		{models.TransactionTypeExpense, "utilities", 40, 300, 3, func(f *gofakeit.Faker) string {
			return f.RandomString([]string{"Electricity", "Water", "Internet", "Gas", "Phone"}) + " bill"
		}},
		{models.TransactionTypeExpense, "entertainment", 10, 150, 4, func(f *gofakeit.Faker) string {
			return f.RandomString([]string{"Cinema", "Concert", "Streaming", "Books", "Games"})
		}},
		{models.TransactionTypeExpense, "health", 15, 400, 2, func(f *gofakeit.Faker) string {
			return f.RandomString([]string{"Pharmacy", "Dentist", "Doctor visit", "Gym membership"})
		}},
	}
}

// Generate creates count transactions dated within [start, end], ordered by
// date with ties kept in generation order
func (g *TransactionGenerator) Generate(count int, start, end models.Date) ([]models.Transaction, error) {
	if count <= 0 || count > MaxGeneratedTransactions {
		return nil, apierrors.NewValidationError(apierrors.ValidationOutOfRange, "count",
			fmt.Sprintf("count must be between 1 and %d", MaxGeneratedTransactions))
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, apierrors.NewValidationError(apierrors.ValidationInvalidDate, "start",
			fmt.Sprintf("invalid date range %s..%s", start, end))
	}

	transactions := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		tmpl := g.pickTemplate()

		amount := decimal.NewFromFloat(g.faker.Float64Range(tmpl.Min, tmpl.Max))
		tx, err := models.NewTransaction(models.TransactionInput{
			Type:        tmpl.Type,
			Amount:      amount,
			Category:    tmpl.Category,
			Description: truncate(tmpl.Describe(g.faker), models.MaxDescriptionLength),
			Date:        g.pickDate(start, end),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate transaction %d: %w", i, err)
		}
		transactions = append(transactions, tx)
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.Before(transactions[j].Date)
	})

	return transactions, nil
}

func (g *TransactionGenerator) pickTemplate() entryTemplate {
	n := g.faker.IntRange(1, g.totalWeight)
	for _, t := range g.templates {
		n -= t.Weight
		if n <= 0 {
			return t
		}
	}
	return g.templates[len(g.templates)-1]
}

func (g *TransactionGenerator) pickDate(start, end models.Date) models.Date {
	days := int(end.Time().Sub(start.Time()).Hours() / 24)
	if days == 0 {
		return start
	}
	return start.AddDays(g.faker.IntRange(0, days))
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// TrailingRange returns the range of the given number of days ending today
func TrailingRange(today models.Date, days int) (models.Date, models.Date) {
	return today.AddDays(-days), today
}
