package handlers_test

import (
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/flyer-price-tracker/pkg/catalog"
	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func testCatalog() *catalog.Catalog {
	cat := catalog.New()
	cat.Replace([]domain.Product{
		{
			Store: "Metro", StoreCategory: "metro", Name: "Milk 2% 4L", Category: "Dairy",
			Price: dec("5.49"), Quantity: nullDec("4"), Unit: domain.UnitL, UnitPrice: nullDec("0.14"),
		},
		{
			Store: "Walmart Supercentre", StoreCategory: "walmart", Name: "Milk 1%", Description: "4 L bag", Category: "Dairy",
			Price: dec("4.99"), Quantity: nullDec("4"), Unit: domain.UnitL, UnitPrice: nullDec("0.12"),
		},
		{
			Store: "Metro", StoreCategory: "metro", Name: "Chocolate Milk", Category: "Dairy",
			Price: dec("2.99"),
		},
		{
			Store: "Metro", StoreCategory: "metro", Name: "Bread", Category: "Bakery",
			Price: dec("2.49"), Quantity: nullDec("675"), Unit: domain.UnitG, UnitPrice: nullDec("0.37"),
		},
	})
	return cat
}
