package local_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/domain/models"
	"github.com/bulgareesoft/bulgaree/internal/repository/local"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := local.NewStore(dir, zap.NewNop())

	records := []models.InventoryRecord{
		{
			ID:          "rec-1",
			Date:        "12/05",
			Merchandise: "arroz",
			Category:    "grãos",
			Code:        "45",
			Price:       "3.25",
			Stock:       "10",
			Quantity:    "6 unidades",
			StockLimits: &models.StockLimits{Min: 2, Max: 50},
		},
		{Date: "13/05", Merchandise: "feijão", Price: "5.00", Stock: "0", Quantity: "0"},
	}

	require.NoError(t, store.Save(models.KindInventory, records))

	var got []models.InventoryRecord
	store.Load(models.KindInventory, &got)

	assert.Equal(t, records, got)
}

func TestStoreSnapshotFormat(t *testing.T) {
	dir := t.TempDir()
	store := local.NewStore(dir, zap.NewNop())

	sales := []models.SaleRecord{
		{Date: "hoje", Product: "arroz", Quantity: "2", UnitValue: "10.00", Total: "20.00"},
	}
	require.NoError(t, store.Save(models.KindSales, sales))

	raw, err := os.ReadFile(filepath.Join(dir, "sales.json"))
	require.NoError(t, err)

	body := string(raw)
	assert.True(t, strings.Contains(body, "    \"produto\": \"arroz\""), "snapshot should use four-space indent:\n%s", body)
	assert.Contains(t, body, "\"valor_unit\": \"10.00\"")
}

func TestStoreOmitsOptionalFields(t *testing.T) {
	dir := t.TempDir()
	store := local.NewStore(dir, zap.NewNop())

	require.NoError(t, store.Save(models.KindInventory, []models.InventoryRecord{
		{Date: "hoje", Merchandise: "arroz", Price: "10.00", Stock: "0", Quantity: "1"},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "products.json"))
	require.NoError(t, err)

	body := string(raw)
	assert.NotContains(t, body, "\"id\"")
	assert.NotContains(t, body, "\"user_id\"")
	assert.NotContains(t, body, "estoque_meta")
	assert.NotContains(t, body, "ExactTotal")
}

func TestStoreLoadMissingFileLeavesOutEmpty(t *testing.T) {
	store := local.NewStore(t.TempDir(), zap.NewNop())

	var got []models.SaleRecord
	store.Load(models.KindSales, &got)

	assert.Empty(t, got)
}

func TestStoreLoadCorruptFileLeavesOutEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte("{not json"), 0o644))

	store := local.NewStore(dir, zap.NewNop())

	var got []models.InventoryRecord
	store.Load(models.KindInventory, &got)

	assert.Empty(t, got)
}
