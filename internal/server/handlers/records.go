package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/domain/models"
	"github.com/bulgareesoft/bulgaree/internal/service/tracker"
)

// RecordsHandler exposes the in-memory tables to the desktop shell: listing,
// editing, row management and voice entry. Synchronization failures never
// surface here; only local persistence problems appear, as a non-fatal notice.
type RecordsHandler struct {
	svc    *tracker.Service
	logger *zap.Logger
}

// NewRecordsHandler constructs the HTTP adapter for the tracker service.
func NewRecordsHandler(svc *tracker.Service, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{svc: svc, logger: logger}
}

const persistenceNotice = "local save failed; changes are kept in memory"

func kindParam(c *gin.Context) (models.Kind, bool) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

// List returns the working record set for a kind, the snapshot source it was
// adopted from and the aggregate total.
func (h *RecordsHandler) List(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	if kind == models.KindSales {
		rows, source := h.svc.SalesRows()
		c.JSON(http.StatusOK, gin.H{
			"records": rows,
			"source":  source,
			"total":   h.svc.SalesTotal().StringFixed(2),
		})
		return
	}

	rows, source := h.svc.InventoryRows()
	c.JSON(http.StatusOK, gin.H{
		"records": rows,
		"source":  source,
		"balance": h.svc.Balance().StringFixed(2),
	})
}

// Replace installs an edited record set. Ids assigned by the remote store must
// be sent back unchanged.
func (h *RecordsHandler) Replace(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	var err error
	if kind == models.KindSales {
		var rows []models.SaleRecord
		if bindErr := c.ShouldBindJSON(&rows); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record payload"})
			return
		}
		err = h.svc.ReplaceSales(c.Request.Context(), rows)
	} else {
		var rows []models.InventoryRecord
		if bindErr := c.ShouldBindJSON(&rows); bindErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record payload"})
			return
		}
		err = h.svc.ReplaceInventory(c.Request.Context(), rows)
	}

	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "notice": persistenceNotice})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Add appends a blank row.
func (h *RecordsHandler) Add(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	var (
		record any
		err    error
	)
	if kind == models.KindSales {
		record, err = h.svc.AddSaleRow(c.Request.Context())
	} else {
		record, err = h.svc.AddInventoryRow(c.Request.Context())
	}

	resp := gin.H{"record": record}
	if err != nil {
		resp["notice"] = persistenceNotice
	}
	c.JSON(http.StatusCreated, resp)
}

// Remove deletes a 1-based row. An out-of-range number is one of the few
// user-visible failures.
func (h *RecordsHandler) Remove(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	row, err := strconv.Atoi(c.Param("row"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row must be a number"})
		return
	}

	if err := h.svc.RemoveRow(c.Request.Context(), kind, row); err != nil {
		if errors.Is(err, tracker.ErrInvalidRow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid row number"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "notice": persistenceNotice})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type dictateRequest struct {
	Transcript string `json:"transcript"`
}

// Dictate turns a voice transcript into a new row. An unrecognized transcript
// is not an error; it produces a mostly empty row the user corrects manually.
func (h *RecordsHandler) Dictate(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	var req dictateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if kind == models.KindSales {
		record, err := h.svc.DictateSale(c.Request.Context(), req.Transcript)
		resp := gin.H{"record": record}
		if err != nil {
			resp["notice"] = persistenceNotice
		}
		c.JSON(http.StatusCreated, resp)
		return
	}

	record, summary, err := h.svc.DictateInventory(c.Request.Context(), req.Transcript)
	resp := gin.H{"record": record, "summary": summary}
	if err != nil {
		resp["notice"] = persistenceNotice
	}
	c.JSON(http.StatusCreated, resp)
}
