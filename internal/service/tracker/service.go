package tracker

import (
	"context"
	"errors"
	"strings"
	stdsync "sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/domain/models"
	"github.com/bulgareesoft/bulgaree/internal/service/session"
	syncsvc "github.com/bulgareesoft/bulgaree/internal/service/sync"
	"github.com/bulgareesoft/bulgaree/internal/service/voice"
)

// ErrInvalidRow indicates a row number outside the current table. It is one of
// the few failures surfaced to the user directly.
var ErrInvalidRow = errors.New("invalid row number")

// Service owns the in-memory record sets the shell renders. All access goes
// through its mutex; background workers only ever see snapshot copies. Every
// mutation is written through to the local store before a remote push is
// scheduled.
type Service struct {
	inventory *syncsvc.Reconciler[models.InventoryRecord]
	sales     *syncsvc.Reconciler[models.SaleRecord]
	sess      *session.Session
	logger    *zap.Logger

	mu           stdsync.Mutex
	inventorySet []models.InventoryRecord
	salesSet     []models.SaleRecord
	inventorySrc syncsvc.Source
	salesSrc     syncsvc.Source
}

// NewService constructs the tracker around the two reconcilers and the session
// gating their remote side.
func NewService(inventory *syncsvc.Reconciler[models.InventoryRecord], sales *syncsvc.Reconciler[models.SaleRecord], sess *session.Session, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		inventory: inventory,
		sales:     sales,
		sess:      sess,
		logger:    logger,
	}
}

// LoadAll resolves both record sets through their reconcilers and installs
// them as the working state.
func (s *Service) LoadAll(ctx context.Context) {
	invSet, invSrc := s.inventory.Load(ctx, s.sess)
	saleSet, saleSrc := s.sales.Load(ctx, s.sess)

	s.mu.Lock()
	s.inventorySet = invSet
	s.inventorySrc = invSrc
	s.salesSet = saleSet
	s.salesSrc = saleSrc
	s.mu.Unlock()

	s.logger.Info("record sets loaded",
		zap.String("inventory_source", string(invSrc)), zap.Int("inventory_records", len(invSet)),
		zap.String("sales_source", string(saleSrc)), zap.Int("sales_records", len(saleSet)))
}

// InventoryRows returns a copy of the inventory set and the source it was
// adopted from.
func (s *Service) InventoryRows() ([]models.InventoryRecord, syncsvc.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]models.InventoryRecord, len(s.inventorySet))
	copy(rows, s.inventorySet)
	return rows, s.inventorySrc
}

// SalesRows returns a copy of the sales set and its source.
func (s *Service) SalesRows() ([]models.SaleRecord, syncsvc.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]models.SaleRecord, len(s.salesSet))
	copy(rows, s.salesSet)
	return rows, s.salesSrc
}

// ReplaceInventory installs an edited inventory set and persists it. Remote-
// assigned ids must arrive unchanged in the replacement; the upsert keys on
// them. The returned error is the local persistence outcome, a non-fatal
// notice: in-memory state is kept either way.
func (s *Service) ReplaceInventory(ctx context.Context, rows []models.InventoryRecord) error {
	s.mu.Lock()
	s.inventorySet = rows
	snapshot := make([]models.InventoryRecord, len(rows))
	copy(snapshot, rows)
	s.mu.Unlock()

	return s.inventory.Save(ctx, s.sess, snapshot)
}

// ReplaceSales installs an edited sales set and persists it.
func (s *Service) ReplaceSales(ctx context.Context, rows []models.SaleRecord) error {
	s.mu.Lock()
	s.salesSet = rows
	snapshot := make([]models.SaleRecord, len(rows))
	copy(snapshot, rows)
	s.mu.Unlock()

	return s.sales.Save(ctx, s.sess, snapshot)
}

// AddInventoryRow appends a blank inventory row and persists the set.
func (s *Service) AddInventoryRow(ctx context.Context) (models.InventoryRecord, error) {
	row := models.InventoryRecord{Price: "0.00", Quantity: "0"}

	s.mu.Lock()
	s.inventorySet = append(s.inventorySet, row)
	snapshot := make([]models.InventoryRecord, len(s.inventorySet))
	copy(snapshot, s.inventorySet)
	s.mu.Unlock()

	return row, s.inventory.Save(ctx, s.sess, snapshot)
}

// AddSaleRow appends a blank sale row and persists the set.
func (s *Service) AddSaleRow(ctx context.Context) (models.SaleRecord, error) {
	row := models.SaleRecord{}

	s.mu.Lock()
	s.salesSet = append(s.salesSet, row)
	snapshot := make([]models.SaleRecord, len(s.salesSet))
	copy(snapshot, s.salesSet)
	s.mu.Unlock()

	return row, s.sales.Save(ctx, s.sess, snapshot)
}

// RemoveRow deletes the 1-based row of the given kind and persists the set.
// An out-of-range number returns ErrInvalidRow without touching anything.
func (s *Service) RemoveRow(ctx context.Context, kind models.Kind, row int) error {
	s.mu.Lock()

	switch kind {
	case models.KindSales:
		if row < 1 || row > len(s.salesSet) {
			s.mu.Unlock()
			return ErrInvalidRow
		}
		s.salesSet = append(s.salesSet[:row-1], s.salesSet[row:]...)
		snapshot := make([]models.SaleRecord, len(s.salesSet))
		copy(snapshot, s.salesSet)
		s.mu.Unlock()
		return s.sales.Save(ctx, s.sess, snapshot)

	default:
		if row < 1 || row > len(s.inventorySet) {
			s.mu.Unlock()
			return ErrInvalidRow
		}
		s.inventorySet = append(s.inventorySet[:row-1], s.inventorySet[row:]...)
		snapshot := make([]models.InventoryRecord, len(s.inventorySet))
		copy(snapshot, s.inventorySet)
		s.mu.Unlock()
		return s.inventory.Save(ctx, s.sess, snapshot)
	}
}

// DictateInventory turns a transcript into an inventory row, appends it and
// persists the set. A transcript with no recognized keyword still adds a row
// with zeroed numerics; the user corrects it manually.
func (s *Service) DictateInventory(ctx context.Context, transcript string) (models.InventoryRecord, string, error) {
	fields := voice.Parse(transcript)
	entry := voice.NormalizeInventory(fields)

	total := entry.Total
	row := models.InventoryRecord{
		Date:        fields[voice.FieldDate],
		Merchandise: fields[voice.FieldMerchandise],
		Category:    fields[voice.FieldCategory],
		Description: fields[voice.FieldDescription],
		Code:        fields[voice.FieldCode],
		Price:       entry.Price.StringFixed(2),
		Stock:       "0",
		Quantity:    entry.Summary,
		ExactTotal:  &total,
	}

	s.mu.Lock()
	s.inventorySet = append(s.inventorySet, row)
	snapshot := make([]models.InventoryRecord, len(s.inventorySet))
	copy(snapshot, s.inventorySet)
	s.mu.Unlock()

	return row, entry.Summary, s.inventory.Save(ctx, s.sess, snapshot)
}

// DictateSale turns a transcript into a sale row, appends it and persists the set.
func (s *Service) DictateSale(ctx context.Context, transcript string) (models.SaleRecord, error) {
	fields := voice.Parse(transcript)
	entry := voice.NormalizeSale(fields)

	product := fields[voice.FieldProduct]

	row := models.SaleRecord{
		Date:      fields[voice.FieldDate],
		Product:   product,
		Quantity:  decimal.NewFromInt(int64(entry.Quantity)).String(),
		UnitValue: entry.UnitValue.StringFixed(2),
		Total:     entry.Total.StringFixed(2),
	}

	s.mu.Lock()
	s.salesSet = append(s.salesSet, row)
	snapshot := make([]models.SaleRecord, len(s.salesSet))
	copy(snapshot, s.salesSet)
	s.mu.Unlock()

	return row, s.sales.Save(ctx, s.sess, snapshot)
}

// Balance sums the inventory price column. Voice-entered rows carry an exact
// line total which is authoritative; other rows fall back to their price text,
// comma accepted as decimal separator, unparseable cells skipped.
func (s *Service) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, row := range s.inventorySet {
		if row.ExactTotal != nil {
			total = total.Add(*row.ExactTotal)
			continue
		}
		if v, err := decimal.NewFromString(strings.ReplaceAll(row.Price, ",", ".")); err == nil {
			total = total.Add(v)
		}
	}
	return total
}

// SalesTotal sums the sales total column, skipping unparseable cells.
func (s *Service) SalesTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, row := range s.salesSet {
		if v, err := decimal.NewFromString(strings.ReplaceAll(row.Total, ",", ".")); err == nil {
			total = total.Add(v)
		}
	}
	return total
}
