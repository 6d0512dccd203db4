package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/flyer-price-tracker/internal/api/client"
	"github.com/donaldgifford/flyer-price-tracker/internal/export"
)

func productsCmd() *cobra.Command {
	var (
		store  string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Example: `  # First page of the catalog
  fpt products

  # Everything from No Frills, 100 at a time
  fpt products --store "no frills" --limit 100 --offset 100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
			defer cancel()

			resp, err := newClient().ListProducts(ctx, &apiclient.ListProductsParams{
				Store:  store,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Products) == 0 {
				fmt.Fprintln(out, "No products found.")
				return nil
			}

			fmt.Fprintf(out, "Showing %d of %d products\n\n", len(resp.Products), resp.Total)
			return printProductsTable(out, resp.Products)
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "filter by store category or merchant name")
	cmd.Flags().IntVar(&limit, "limit", 50, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")

	return cmd
}

func storesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "Show how many products each store contributes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
			defer cancel()

			resp, err := newClient().ListStores(ctx)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), resp)
			}
			return printStoresTable(cmd.OutOrStdout(), resp)
		},
	}
}

func exportCmd() *cobra.Command {
	var (
		store string
		path  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the catalog as CSV",
		Long: "Fetch every catalog product from the server and write them to a CSV file.\n" +
			"Missing values are written as N/A.",
		Example: `  # Timestamped file in the current directory
  fpt export

  # One store to a chosen path
  fpt export --store metro -o metro.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
			defer cancel()

			products, err := newClient().AllProducts(ctx, store)
			if err != nil {
				return err
			}

			if path == "" {
				path = export.FileName(timeNow())
			}
			written, err := export.WriteFile(path, products)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", len(products), written)
			return nil
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "only export this store")
	cmd.Flags().StringVarP(&path, "output-file", "o", "", "CSV path (default flipp_products_<timestamp>.csv)")

	return cmd
}
