package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/flyer-price-tracker/internal/api/client"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

func searchCmd() *cobra.Command {
	var (
		sortBy string
		stores []string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find the best deals for a product",
		Long: "Search the current flyer catalog and rank matching products.\n" +
			"The first row is the best deal for the chosen criterion.",
		Example: `  # Cheapest milk by shelf price
  fpt search milk

  # Best milk by price per 100 mL at two stores
  fpt search milk --sort-by unit_price --store walmart --store metro

  # Largest packs of coffee
  fpt search coffee --sort-by quantity --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
			defer cancel()

			result, err := newClient().Search(ctx, &apiclient.SearchRequest{
				SearchTerm: args[0],
				SortBy:     sortBy,
				Stores:     stores,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			return printSearchResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort-by", string(domain.SortByPrice), "ranking criterion: price, unit_price or quantity")
	cmd.Flags().StringSliceVar(&stores, "store", nil, "restrict to a store (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results (0 for all)")

	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories in the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
			defer cancel()

			categories, err := newClient().ListCategories(ctx)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), categories)
			}
			for _, c := range categories {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}
