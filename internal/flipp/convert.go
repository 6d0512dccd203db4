package flipp

import (
	"strconv"
	"strings"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Origin describes where a batch of items came from. Flyer validity dates
// fill in for items that carry none.
type Origin struct {
	Store         string
	StoreCategory string
	ValidFrom     string
	ValidTo       string
}

// OriginFromFlyer builds the origin for items fetched from a flyer.
func OriginFromFlyer(f *Flyer, storeCategory string) Origin {
	return Origin{
		Store:         f.MerchantName,
		StoreCategory: storeCategory,
		ValidFrom:     f.ValidFrom,
		ValidTo:       f.ValidTo,
	}
}

// ToRawItems converts Flipp items into raw items ready for normalization.
// webURL is the public site root used to build product links.
func ToRawItems(items []Item, origin Origin, webURL string) []domain.RawItem {
	raw := make([]domain.RawItem, 0, len(items))
	for i := range items {
		raw = append(raw, toRawItem(&items[i], origin, webURL))
	}
	return raw
}

func toRawItem(item *Item, origin Origin, webURL string) domain.RawItem {
	r := domain.RawItem{
		Store:         origin.Store,
		StoreCategory: origin.StoreCategory,
		Name:          item.Name,
		PriceText:     item.PriceText(),
		QuantityText:  item.Description,
		PrePriceText:  item.PrePriceText,
		PostPriceText: item.PostPriceText,
		SaleStory:     item.SaleStory,
		ValidFrom:     firstNonEmpty(item.ValidFrom, origin.ValidFrom),
		ValidTo:       firstNonEmpty(item.ValidTo, origin.ValidTo),
		Brand:         item.Brand,
		Category:      item.Category,
		URL:           ProductURL(webURL, item.FlyerID, item.ID),
	}
	if r.Store == "" {
		r.Store = item.MerchantName
	}
	return r
}

// ProductURL links to an item on the public flyer site. It falls back to the
// flyer page when the item ID is unknown and is empty when both are.
func ProductURL(webURL string, flyerID, itemID int64) string {
	if flyerID == 0 || webURL == "" {
		return ""
	}
	u := strings.TrimRight(webURL, "/") + "/flyer/" + strconv.FormatInt(flyerID, 10)
	if itemID != 0 {
		u += "/item/" + strconv.FormatInt(itemID, 10)
	}
	return u
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
