package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind identifies one of the two tracked record sets. It selects both the
// remote collection and the local snapshot file.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindSales     Kind = "sales"
)

// ParseKind maps an external identifier (URL segment, config value) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindInventory, KindSales:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown record-set kind %q", s)
	}
}

// Collection returns the remote collection name for the kind.
func (k Kind) Collection() string {
	if k == KindSales {
		return "vendas"
	}
	return "produtos"
}

// SnapshotFile returns the local snapshot file name for the kind.
func (k Kind) SnapshotFile() string {
	if k == KindSales {
		return "sales.json"
	}
	return "products.json"
}

// Record is implemented by both record shapes. WithUser returns a copy stamped
// with the owning principal's identifier; the remote side scopes rows by it.
type Record[T any] interface {
	RecordID() string
	WithUser(id string) T
}

// StockLimits is the optional min/max annotation attached to the
// quantity-on-hand field of an inventory record.
type StockLimits struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// InventoryRecord is one row of the inventory table. All cells are kept as the
// free text the user dictated or typed; the JSON tags match the snapshot file
// and remote column names. ID is assigned by the remote store on first
// successful sync and must be preserved on every subsequent write.
type InventoryRecord struct {
	ID          string       `json:"id,omitempty"`
	UserID      string       `json:"user_id,omitempty"`
	Date        string       `json:"data"`
	Merchandise string       `json:"mercadorias"`
	Category    string       `json:"categoria"`
	Description string       `json:"descricao"`
	Code        string       `json:"codigo"`
	Price       string       `json:"preco"`
	Stock       string       `json:"estoque"`
	Quantity    string       `json:"quantidade"`
	StockLimits *StockLimits `json:"estoque_meta,omitempty"`

	// ExactTotal carries the exact line total behind the price cell for rows
	// entered by voice. It is authoritative for the balance aggregate and is
	// never serialized; snapshots store display strings only.
	ExactTotal *decimal.Decimal `json:"-"`
}

func (r InventoryRecord) RecordID() string { return r.ID }

func (r InventoryRecord) WithUser(id string) InventoryRecord {
	r.UserID = id
	return r
}

// SaleRecord is one row of the sales table.
type SaleRecord struct {
	ID        string `json:"id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Date      string `json:"data"`
	Product   string `json:"produto"`
	Quantity  string `json:"quantidade"`
	UnitValue string `json:"valor_unit"`
	Total     string `json:"total"`
}

func (r SaleRecord) RecordID() string { return r.ID }

func (r SaleRecord) WithUser(id string) SaleRecord {
	r.UserID = id
	return r
}
