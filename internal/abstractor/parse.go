// internal/abstractor/parse.go

// Package abstractor is the boundary between the storefront and its data
// sources. It performs the I/O and turns whatever comes back into
// well-formed internal values, dropping records that cannot be trusted.
package abstractor

import (
	"context"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"gamershop/internal/cart"
	"gamershop/internal/catalog"
)

// Drop reasons reported to the diagnostics channel.
const (
	reasonMalformedBlob    = "malformed_blob"
	reasonMalformedRecord  = "malformed_record"
	reasonInvalidQuantity  = "invalid_quantity"
	reasonItemsNotArray    = "items_not_array"
	reasonDuplicateItem    = "duplicate_item"
	reasonNonStringFilter  = "non_string_filter"
	reasonMalformedPayload = "malformed_payload"
)

// DropReporter receives records discarded during validation.
type DropReporter interface {
	Dropped(ctx context.Context, source, reason, record string)
}

type nopReporter struct{}

func (nopReporter) Dropped(context.Context, string, string, string) {}

// parseGame validates one catalog record. Every field must carry its
// expected JSON type.
func parseGame(r gjson.Result) (catalog.Game, bool) {
	if !r.IsObject() {
		return catalog.Game{}, false
	}
	id, name, genre := r.Get("id"), r.Get("name"), r.Get("genre")
	image, desc := r.Get("image"), r.Get("description")
	price, isNew := r.Get("price"), r.Get("isNew")

	for _, s := range []gjson.Result{id, name, genre, image, desc} {
		if s.Type != gjson.String {
			return catalog.Game{}, false
		}
	}
	if price.Type != gjson.Number || !isBool(isNew) {
		return catalog.Game{}, false
	}

	return catalog.Game{
		ID:          id.Str,
		Name:        strings.TrimSpace(name.Str),
		Genre:       strings.TrimSpace(genre.Str),
		Image:       image.Str,
		Description: strings.TrimSpace(desc.Str),
		Price:       math.Max(0, price.Num),
		IsNew:       isNew.Bool(),
	}, true
}

// parseCartItem validates one persisted cart entry. It reports the drop
// reason when the entry is rejected.
func parseCartItem(r gjson.Result) (cart.Item, string) {
	game, ok := parseGame(r)
	if !ok {
		return cart.Item{}, reasonMalformedRecord
	}
	qty := r.Get("quantity")
	if qty.Type != gjson.Number {
		return cart.Item{}, reasonInvalidQuantity
	}
	n, ok := cart.QuantityFromFloat(qty.Num)
	if !ok {
		return cart.Item{}, reasonInvalidQuantity
	}
	return cart.Item{Game: game, Quantity: n}, ""
}

// parseCart rebuilds a cart from a persisted blob. Invalid entries are
// dropped, entries repeating an id are merged into the first one and the
// totals are always recomputed from the survivors.
func parseCart(ctx context.Context, blob []byte, report DropReporter) cart.Cart {
	if !gjson.ValidBytes(blob) {
		report.Dropped(ctx, sourceCart, reasonMalformedBlob, string(blob))
		return cart.Empty()
	}

	items := gjson.GetBytes(blob, "items")
	if !items.IsArray() {
		if items.Exists() {
			report.Dropped(ctx, sourceCart, reasonItemsNotArray, items.Raw)
		}
		return cart.Empty()
	}

	kept := make([]cart.Item, 0)
	seen := make(map[string]int)
	items.ForEach(func(_, entry gjson.Result) bool {
		item, reason := parseCartItem(entry)
		if reason != "" {
			report.Dropped(ctx, sourceCart, reason, entry.Raw)
			return true
		}
		if i, ok := seen[item.ID]; ok {
			report.Dropped(ctx, sourceCart, reasonDuplicateItem, entry.Raw)
			kept[i].Quantity = min(kept[i].Quantity+item.Quantity, cart.MaxQuantity)
			return true
		}
		seen[item.ID] = len(kept)
		kept = append(kept, item)
		return true
	})

	return cart.New(kept)
}

// parsePage validates a catalog response. A body that is not a JSON object
// with a games array yields the empty page.
func parsePage(ctx context.Context, body []byte, report DropReporter) catalog.Page {
	if !gjson.ValidBytes(body) {
		report.Dropped(ctx, sourceGames, reasonMalformedPayload, string(body))
		return catalog.EmptyPage()
	}
	root := gjson.ParseBytes(body)
	games := root.Get("games")
	if !games.IsArray() {
		report.Dropped(ctx, sourceGames, reasonMalformedPayload, string(body))
		return catalog.EmptyPage()
	}

	page := catalog.EmptyPage()
	games.ForEach(func(_, r gjson.Result) bool {
		if g, ok := parseGame(r); ok {
			page.Games = append(page.Games, g)
		} else {
			report.Dropped(ctx, sourceGames, reasonMalformedRecord, r.Raw)
		}
		return true
	})

	if filters := root.Get("availableFilters"); filters.IsArray() {
		filters.ForEach(func(_, f gjson.Result) bool {
			if f.Type == gjson.String {
				page.AvailableFilters = append(page.AvailableFilters, f.Str)
			} else {
				report.Dropped(ctx, sourceGames, reasonNonStringFilter, f.Raw)
			}
			return true
		})
	}

	page.TotalPages = intOr(root.Get("totalPages"), 1)
	page.CurrentPage = intOr(root.Get("currentPage"), 1)
	return page
}

func isBool(r gjson.Result) bool {
	return r.Type == gjson.True || r.Type == gjson.False
}

// intOr reads a non-negative page number, falling back when r is not a
// number. Out-of-range values are clamped before conversion.
func intOr(r gjson.Result, fallback int) int {
	if r.Type != gjson.Number || math.IsNaN(r.Num) {
		return fallback
	}
	return int(math.Min(math.Max(0, math.Floor(r.Num)), math.MaxInt32))
}
