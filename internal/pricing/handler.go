package pricing

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cardvault/internal/store"
	"cardvault/pkg/models"
)

// Handler exposes the estimation pipeline over HTTP.
type Handler struct {
	Estimator *Estimator
	Store     *store.Store
	Tables    *Tables
}

func NewHandler(estimator *Estimator, st *store.Store, tables *Tables) *Handler {
	return &Handler{Estimator: estimator, Store: st, Tables: tables}
}

type estimateRequest struct {
	Card  cardPayload `json:"card"`
	Grade string      `json:"grade"`
}

// cardPayload mirrors models.CardQuery so malformed bodies fail here
// with a 400 instead of deeper in the pipeline.
type cardPayload struct {
	Category     string `json:"category"`
	Player       string `json:"player"`
	Year         string `json:"year"`
	Manufacturer string `json:"manufacturer"`
	SetName      string `json:"set_name"`
	CardNumber   string `json:"card_number"`
	Parallel     string `json:"parallel"`
	SerialNumber string `json:"serial_number"`
	Rookie       bool   `json:"rookie"`
	Autograph    bool   `json:"autograph"`
	Memorabilia  string `json:"memorabilia"`
}

func (p cardPayload) query() models.CardQuery {
	return models.CardQuery{
		Category:     p.Category,
		Player:       p.Player,
		Year:         p.Year,
		Manufacturer: p.Manufacturer,
		SetName:      p.SetName,
		CardNumber:   p.CardNumber,
		Parallel:     p.Parallel,
		SerialNumber: p.SerialNumber,
		Rookie:       p.Rookie,
		Autograph:    p.Autograph,
		Memorabilia:  p.Memorabilia,
	}
}

func (h *Handler) Estimate(c *gin.Context) {
	req, ok := h.bindEstimateRequest(c)
	if !ok {
		return
	}
	estimate := h.Estimator.Estimate(req.Card.query(), req.Grade)
	c.JSON(http.StatusOK, gin.H{"estimate": estimate})
}

func (h *Handler) EstimateAll(c *gin.Context) {
	req, ok := h.bindEstimateRequest(c)
	if !ok {
		return
	}
	estimates := h.Estimator.EstimateAll(req.Card.query())
	c.JSON(http.StatusOK, gin.H{"estimates": estimates})
}

func (h *Handler) EstimateGrading(c *gin.Context) {
	req, ok := h.bindEstimateRequest(c)
	if !ok {
		return
	}
	report := h.Estimator.GradingReport(req.Card.query())
	c.JSON(http.StatusOK, report)
}

// Export dumps the whole store plus the active multiplier tables, for
// backups and for the export-csv tool.
func (h *Handler) Export(c *gin.Context) {
	doc := h.Store.ExportAll()
	c.JSON(http.StatusOK, gin.H{
		"_metadata":   doc.Metadata,
		"cards":       doc.Cards,
		"tables":      h.Tables,
		"exported_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) bindEstimateRequest(c *gin.Context) (estimateRequest, bool) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return req, false
	}
	if req.Card.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card category is required"})
		return req, false
	}
	return req, true
}
