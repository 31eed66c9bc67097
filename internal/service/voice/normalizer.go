package voice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	priceRe    = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)
	quantityRe = regexp.MustCompile(`\d+`)
)

// ExtractPrice pulls the first currency amount out of a free-text value.
// A comma is treated as the decimal separator. No match yields 0.00.
func ExtractPrice(s string) decimal.Decimal {
	match := priceRe.FindString(s)
	if match == "" {
		return decimal.Zero
	}

	value, err := decimal.NewFromString(strings.Replace(match, ",", ".", 1))
	if err != nil {
		return decimal.Zero
	}
	return value
}

// ExtractQuantity pulls the first run of digits out of a free-text value.
// No match yields 0.
func ExtractQuantity(s string) int {
	match := quantityRe.FindString(s)
	if match == "" {
		return 0
	}

	qty, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return qty
}

// InventoryEntry is the typed result of normalizing a parsed inventory utterance.
type InventoryEntry struct {
	Price      decimal.Decimal
	Quantity   int
	Multiplier int
	Total      decimal.Decimal
	UnitType   Field
	Summary    string
}

// NormalizeInventory derives the numeric fields of an inventory entry from the
// parsed mapping. An unspecified quantity means "one item": the multiplier
// falls back to 1 so "arroz preço 10" totals 10.00 rather than zero.
func NormalizeInventory(fields map[Field]string) InventoryEntry {
	entry := InventoryEntry{
		Price:    ExtractPrice(fields[FieldPrice]),
		Quantity: ExtractQuantity(fields[FieldQuantity]),
		UnitType: FieldUnit,
	}
	if _, ok := fields[FieldBox]; ok {
		entry.UnitType = FieldBox
	}

	entry.Multiplier = entry.Quantity
	if entry.Multiplier == 0 {
		entry.Multiplier = 1
	}
	entry.Total = entry.Price.Mul(decimal.NewFromInt(int64(entry.Multiplier)))
	entry.Summary = summarize(entry, fields[FieldMerchandise])

	return entry
}

// summarize renders the human-readable quantity-cell sentence. A zero quantity
// yields the literal "0".
func summarize(entry InventoryEntry, product string) string {
	if entry.Quantity == 0 {
		return "0"
	}

	price := entry.Price.StringFixed(2)
	total := entry.Total.StringFixed(2)

	if entry.UnitType == FieldBox {
		return fmt.Sprintf("%d caixas de %s, cada caixa custa %s, e o valor final somado das %d caixas é %s",
			entry.Quantity, product, price, entry.Quantity, total)
	}
	return fmt.Sprintf("%d %s, Cada unidade custa %s, valor final somado das %d %s é %s",
		entry.Quantity, product, price, entry.Quantity, product, total)
}

// SaleEntry is the typed result of normalizing a parsed sale utterance.
type SaleEntry struct {
	Quantity  int
	UnitValue decimal.Decimal
	Total     decimal.Decimal
}

// NormalizeSale derives the numeric fields of a sale entry. A dictated total
// wins verbatim when present; otherwise the total is quantity × unit value.
func NormalizeSale(fields map[Field]string) SaleEntry {
	entry := SaleEntry{
		Quantity:  ExtractQuantity(fields[FieldQuantity]),
		UnitValue: ExtractPrice(fields[FieldUnitValue]),
	}

	if raw, ok := fields[FieldTotal]; ok && raw != "" {
		entry.Total = ExtractPrice(raw)
	} else {
		entry.Total = entry.UnitValue.Mul(decimal.NewFromInt(int64(entry.Quantity)))
	}

	return entry
}
