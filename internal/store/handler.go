package store

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	pricesync "cardvault/internal/sync"
	"cardvault/pkg/models"
)

const defaultStaleDays = 90

// Handler exposes store CRUD over HTTP. Mutations are broadcast to the
// price event hub after they persist.
type Handler struct {
	Store *Store
	Hub   *pricesync.Hub
}

func NewHandler(st *Store, hub *pricesync.Hub) *Handler {
	return &Handler{Store: st, Hub: hub}
}

// List handles GET /cards with an optional ?q= search and ?limit=.
func (h *Handler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	results := h.Store.Search(c.Query("q"), limit)
	c.JSON(http.StatusOK, gin.H{"count": len(results), "cards": results})
}

func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")
	rec, ok := h.Store.Lookup(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "record": rec})
}

type upsertRequest struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Year       int      `json:"year"`
	Set        string   `json:"set"`
	CardNumber string   `json:"card_number"`
	Players    []string `json:"players"`
	Category   string   `json:"category"`
	Type       string   `json:"type"`
	Grade      string   `json:"grade"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Source     string   `json:"source"`
}

// Upsert handles POST /cards: create or update a record and set one
// grade's verified price band.
func (h *Handler) Upsert(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Grade == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grade is required"})
		return
	}

	key, rec, created, err := h.Store.AddOrUpdate(UpsertParams{
		Key:        req.Key,
		Name:       req.Name,
		Year:       req.Year,
		Set:        req.Set,
		CardNumber: req.CardNumber,
		Players:    req.Players,
		Category:   req.Category,
		CardType:   req.Type,
		Grade:      req.Grade,
		Min:        req.Min,
		Max:        req.Max,
		Source:     req.Source,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	eventType := pricesync.EventPriceUpdated
	status := http.StatusOK
	if created {
		eventType = pricesync.EventPriceAdded
		status = http.StatusCreated
	}
	h.publish(eventType, key, models.NormalizeGrade(req.Grade), req.Min, req.Max)

	c.JSON(status, gin.H{"key": key, "record": rec, "created": created})
}

type priceUpdateRequest struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UpdatePrice handles PUT /cards/:key/prices/:grade. Missing keys are a
// 404; this endpoint never creates.
func (h *Handler) UpdatePrice(c *gin.Context) {
	key := c.Param("key")
	grade := c.Param("grade")

	var req priceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.Store.UpdatePrice(key, grade, req.Min, req.Max)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.publish(pricesync.EventPriceUpdated, key, models.NormalizeGrade(grade), req.Min, req.Max)
	c.JSON(http.StatusOK, gin.H{"key": key, "record": rec})
}

func (h *Handler) Remove(c *gin.Context) {
	key := c.Param("key")
	if err := h.Store.Delete(key); errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.publish(pricesync.EventPriceDeleted, key, "", 0, 0)
	c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
}

// Stale handles GET /stale?days=N.
func (h *Handler) Stale(c *gin.Context) {
	days := defaultStaleDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
			return
		}
		days = parsed
	}

	entries := h.Store.Stale(days)
	c.JSON(http.StatusOK, gin.H{"threshold_days": days, "count": len(entries), "stale": entries})
}

func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Stats())
}

func (h *Handler) publish(eventType, key, grade string, min, max float64) {
	if h.Hub == nil {
		return
	}
	ev := pricesync.NewPriceEvent(eventType, key, grade, min, max)
	go h.Hub.Broadcast(ev)
}
