package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"budget-tracker/internal/models"
	"budget-tracker/internal/services"
)

const (
	emptyListMessage    = "No transactions recorded."
	noMatchMessage      = "No transactions match the given filters."
	emptySummaryMessage = "No data to summarize."
	idColumnWidth       = 32
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.Debug)
}

func writeTransactions(w io.Writer, transactions []models.Transaction) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\t Date\t Type\t Amount\t Category\t Description")
	for _, t := range transactions {
		fmt.Fprintf(tw, "%s\t %s\t %s\t %s\t %s\t %s\n",
			shorten(t.ID, idColumnWidth),
			t.Date,
			t.Type,
			t.Amount.StringFixed(models.AmountPlaces),
			t.Category,
			t.Description,
		)
	}
	return tw.Flush()
}

func writeSummary(w io.Writer, summary map[string]models.CategorySummary) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Category\t Income\t Expense\t Net")
	for _, category := range services.SortedCategories(summary) {
		s := summary[category]
		fmt.Fprintf(tw, "%s\t %s\t %s\t %s\n",
			category,
			s.Income.StringFixed(models.AmountPlaces),
			s.Expense.StringFixed(models.AmountPlaces),
			s.Net.StringFixed(models.AmountPlaces),
		)
	}
	return tw.Flush()
}

func shorten(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
