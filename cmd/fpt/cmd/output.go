package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	apiclient "github.com/donaldgifford/flyer-price-tracker/internal/api/client"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

var timeNow = time.Now

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printSearchResult(w io.Writer, r *domain.SearchResult) error {
	best := r.BestDeal()
	if best == nil {
		_, err := fmt.Fprintf(w, "No products found for %q.\n", r.SearchTerm)
		return err
	}

	if _, err := fmt.Fprintf(w, "Best deal: %s at %s for $%s (%s)\n%d products sorted by %s\n\n",
		best.Name, best.Store, domain.FormatMoney(best.Price), best.UnitPriceLabel(),
		r.Count, r.SortBy); err != nil {
		return err
	}
	return printProductsTable(w, r.Results)
}

func printProductsTable(w io.Writer, products []domain.Product) error {
	tw := newTabWriter(w)
	tw.writef("STORE\tPRODUCT\tPRICE\tQUANTITY\tUNIT PRICE\tVALID TO\n")
	for i := range products {
		p := &products[i]
		tw.writef("%s\t%s\t$%s\t%s\t%s\t%s\n",
			p.Store,
			truncate(p.Name, 40),
			domain.FormatMoney(p.Price),
			quantityLabel(p),
			p.UnitPriceLabel(),
			domain.FormatDate(p.ValidTo),
		)
	}
	return tw.finish()
}

func printStoresTable(w io.Writer, resp *apiclient.StoresResponse) error {
	tw := newTabWriter(w)
	tw.writef("STORE\tPRODUCTS\n")
	for _, s := range resp.Stores {
		tw.writef("%s\t%d\n", s.StoreCategory, s.Products)
	}
	refreshed := domain.NotAvailable
	if resp.RefreshedAt != nil {
		refreshed = resp.RefreshedAt.Format("2006-01-02 15:04:05")
	}
	tw.writef("\nGeneration %d, refreshed %s\n", resp.Generation, refreshed)
	return tw.finish()
}

func printRunsTable(w io.Writer, runs []domain.RefreshRun) error {
	tw := newTabWriter(w)
	tw.writef("TRIGGER\tSTATUS\tSTARTED\tCOMPLETED\tPRODUCTS\tDROPPED\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format("2006-01-02 15:04:05")
		}
		tw.writef("%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Trigger,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			completed,
			r.Products,
			r.Dropped,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func quantityLabel(p *domain.Product) string {
	q := domain.FormatNullQuantity(p.Quantity)
	if q == domain.NotAvailable || p.Unit == domain.UnitNone {
		return q
	}
	return q + " " + string(p.Unit)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
