package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/flyer-price-tracker/internal/engine"
	"github.com/donaldgifford/flyer-price-tracker/internal/export"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

var (
	scrapeOutput string
	scrapeTerm   string
	scrapeSort   string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one catalog refresh and export the products to CSV",
	Long: "Collects every tracked store's current flyer, normalizes the items and writes " +
		"them to a timestamped CSV file. With --term the best deals for that term are printed.",
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "CSV output path (default <export.dir>/flipp_products_<timestamp>.csv)")
	scrapeCmd.Flags().StringVar(&scrapeTerm, "term", "", "search term to rank after the refresh")
	scrapeCmd.Flags().StringVar(&scrapeSort, "sort-by", string(domain.SortByPrice), "ranking criterion: price, unit_price or quantity")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	a, err := buildApp(ctx, cfg, log, false)
	if err != nil {
		return err
	}
	defer a.Close()

	run, err := a.engine.Refresh(ctx, engine.TriggerCLI)
	if err != nil {
		return fmt.Errorf("refreshing catalog: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Collected %d items from %d flyers: %d products, %d dropped\n",
		run.Items, run.Flyers, run.Products, run.Dropped)

	path := scrapeOutput
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, export.FileName(time.Now()))
	}
	written, err := export.WriteFile(path, a.catalog.All())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported to %s\n", written)

	if scrapeTerm == "" {
		return nil
	}

	result, err := a.searcher.Search(ctx, domain.SearchQuery{
		Term:   scrapeTerm,
		SortBy: domain.SortBy(scrapeSort),
		Limit:  10,
	})
	if err != nil {
		return err
	}

	best := result.BestDeal()
	if best == nil {
		fmt.Fprintf(out, "No products found for %q\n", scrapeTerm)
		return nil
	}
	fmt.Fprintf(out, "Best deal for %q: %s at %s for $%s (%s)\n",
		scrapeTerm, best.Name, best.Store, domain.FormatMoney(best.Price), best.UnitPriceLabel())
	return nil
}
