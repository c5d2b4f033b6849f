// Package store holds the verified price store: an in-memory keyed map over
// a single durable JSON document. Reads are concurrent; every mutation is
// serialized, applied copy-on-write, and written through to disk atomically
// before it becomes visible in memory.
package store

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"cardvault/pkg/database"
	"cardvault/pkg/models"
)

// ErrNotFound is returned by update/delete operations targeting a key that
// is not in the store.
var ErrNotFound = errors.New("card not found")

// defaultConfidence is assigned to newly created records. Algorithmic
// estimates are capped strictly below this so they never masquerade as
// verified data.
const defaultConfidence = 0.85

// staleSentinelDays ranks entries with a missing or unparsable stamp as
// maximally stale.
const staleSentinelDays = math.MaxInt32

const monthStampLayout = "2006-01"

type Store struct {
	mu    sync.RWMutex
	path  string
	meta  models.StoreMetadata
	cards map[string]models.VerifiedPriceRecord

	now func() time.Time
}

// Open loads the store from the durable document. A missing file starts an
// empty store; a corrupt or invalid file is an error the caller should
// treat as fatal.
func Open(cfg database.Config) (*Store, error) {
	doc, err := database.ReadDocument(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return nil, fmt.Errorf("validate store %s: %w", cfg.Path, err)
	}
	if doc.Metadata.Version == "" {
		doc.Metadata.Version = "1.0.0"
	}
	return &Store{
		path:  cfg.Path,
		meta:  doc.Metadata,
		cards: doc.Cards,
		now:   time.Now,
	}, nil
}

func MustOpen(cfg database.Config) *Store {
	s, err := Open(cfg)
	if err != nil {
		log.Fatalf("failed to open price store: %v", err)
	}
	return s
}

// validateDocument rejects structurally broken records at the load
// boundary so malformed data cannot be misread as ordinary misses later.
func validateDocument(doc models.StoreDocument) error {
	for key, rec := range doc.Cards {
		if rec.Confidence < 0 || rec.Confidence > 1 {
			return fmt.Errorf("record %s: confidence %v outside [0,1]", key, rec.Confidence)
		}
		for grade, pr := range rec.Prices {
			if pr.Min < 0 {
				return fmt.Errorf("record %s grade %s: negative min %v", key, grade, pr.Min)
			}
			if pr.Max < pr.Min {
				return fmt.Errorf("record %s grade %s: min %v > max %v", key, grade, pr.Min, pr.Max)
			}
		}
	}
	return nil
}

// Lookup is an exact canonical-key fetch.
func (s *Store) Lookup(key string) (models.VerifiedPriceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.cards[key]
	return rec, ok
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

func (s *Store) Path() string {
	return s.path
}

// UpsertParams carries the fields needed to create or update a record and
// set one grade's price. Key is derived from Year/Set/Players/CardNumber
// when left empty.
type UpsertParams struct {
	Key        string
	Name       string
	Year       int
	Set        string
	CardNumber string
	Players    []string
	Category   string
	CardType   string
	Grade      string
	Min        float64
	Max        float64
	Source     string
}

func (p UpsertParams) key() string {
	if p.Key != "" {
		return p.Key
	}
	year := ""
	if p.Year != 0 {
		year = strconv.Itoa(p.Year)
	}
	player := ""
	if len(p.Players) > 0 {
		player = p.Players[0]
	}
	return models.CanonicalKey(year, p.Set, player, p.CardNumber)
}

// AddOrUpdate creates the record if absent (with default confidence and
// empty notes) and writes the price range for the given grade, stamping it
// with the current month. Returns the canonical key, the stored record and
// whether the record was newly created.
func (s *Store) AddOrUpdate(p UpsertParams) (string, models.VerifiedPriceRecord, bool, error) {
	if err := validateBand(p.Grade, p.Min, p.Max); err != nil {
		return "", models.VerifiedPriceRecord{}, false, err
	}
	key := p.key()
	if key == "" {
		return "", models.VerifiedPriceRecord{}, false, errors.New("cannot derive a canonical key: no identifying fields")
	}
	grade := models.NormalizeGrade(p.Grade)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.cards[key]
	if exists {
		rec = cloneRecord(rec)
	} else {
		name := p.Name
		if name == "" {
			name = key
		}
		source := p.Source
		if source == "" {
			source = "manual"
		}
		rec = models.VerifiedPriceRecord{
			Name:       name,
			Year:       p.Year,
			Set:        p.Set,
			CardNumber: p.CardNumber,
			Players:    append([]string(nil), p.Players...),
			Category:   p.Category,
			Type:       p.CardType,
			IsRookie:   strings.Contains(strings.ToLower(p.CardType), "rookie"),
			Prices:     map[string]models.PriceRange{},
			Confidence: defaultConfidence,
			Source:     source,
			Notes:      "",
		}
	}
	rec.Prices[grade] = s.newRange(p.Min, p.Max)

	if err := s.commitLocked(key, &rec); err != nil {
		return "", models.VerifiedPriceRecord{}, false, err
	}
	return key, rec, !exists, nil
}

// UpdatePrice rewrites one grade's range on an existing record. Unlike
// AddOrUpdate it fails with ErrNotFound when the key is absent; the caller
// asked for an update, not a create.
func (s *Store) UpdatePrice(key, grade string, min, max float64) (models.VerifiedPriceRecord, error) {
	if err := validateBand(grade, min, max); err != nil {
		return models.VerifiedPriceRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.cards[key]
	if !ok {
		return models.VerifiedPriceRecord{}, ErrNotFound
	}
	rec = cloneRecord(rec)
	rec.Prices[models.NormalizeGrade(grade)] = s.newRange(min, max)

	if err := s.commitLocked(key, &rec); err != nil {
		return models.VerifiedPriceRecord{}, err
	}
	return rec, nil
}

// Delete removes a record entirely and persists.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[key]; !ok {
		return ErrNotFound
	}
	return s.commitLocked(key, nil)
}

// Stale reports every (record, grade) pair whose last verification is older
// than thresholdDays, most stale first. Missing or unparsable stamps rank
// as maximally stale.
func (s *Store) Stale(thresholdDays int) []models.StaleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	var out []models.StaleEntry
	for key, rec := range s.cards {
		for grade, pr := range rec.Prices {
			age := staleSentinelDays
			display := "unknown"
			if pr.LastVerified != "" {
				if t, err := time.Parse(monthStampLayout, pr.LastVerified); err == nil {
					age = int(now.Sub(t).Hours() / 24)
					display = pr.LastVerified
				}
			}
			if age > thresholdDays {
				out = append(out, models.StaleEntry{
					Key:          key,
					Name:         rec.Name,
					Grade:        grade,
					LastVerified: display,
					AgeDays:      age,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AgeDays != out[j].AgeDays {
			return out[i].AgeDays > out[j].AgeDays
		}
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Grade < out[j].Grade
	})
	return out
}

// Stats counts records, price entries, and records per category.
func (s *Store) Stats() models.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.StoreStats{
		TotalCards: len(s.cards),
		Categories: map[string]int{},
	}
	for _, rec := range s.cards {
		stats.TotalPriceEntries += len(rec.Prices)
		cat := rec.Category
		if cat == "" {
			cat = "Unknown"
		}
		stats.Categories[cat]++
	}
	return stats
}

// Search does a case-insensitive substring match over name, players and
// set, scored so name hits rank above player hits above set hits.
func (s *Store) Search(query string, limit int) []models.SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		score float64
		res   models.SearchResult
	}
	var hits []scored
	for key, rec := range s.cards {
		score := 0.0
		if strings.Contains(strings.ToLower(rec.Name), q) {
			score += 2
		}
		for _, player := range rec.Players {
			if strings.Contains(strings.ToLower(player), q) {
				score += 1
			}
		}
		if strings.Contains(strings.ToLower(rec.Set), q) {
			score += 0.5
		}
		if score > 0 {
			hits = append(hits, scored{score, models.SearchResult{Key: key, Record: rec}})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].res.Key < hits[j].res.Key
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]models.SearchResult, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.res)
	}
	return out
}

// ExportAll returns a snapshot of the full persisted document.
func (s *Store) ExportAll() models.StoreDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make(map[string]models.VerifiedPriceRecord, len(s.cards))
	for k, v := range s.cards {
		cards[k] = v
	}
	return models.StoreDocument{Metadata: s.meta, Cards: cards}
}

// commitLocked applies one record change (rec == nil deletes) to a copy of
// the map, persists the copy, and only then swaps it in. If the write
// fails the in-memory state is untouched, so memory and disk never
// silently diverge. Caller holds the write lock.
func (s *Store) commitLocked(key string, rec *models.VerifiedPriceRecord) error {
	next := make(map[string]models.VerifiedPriceRecord, len(s.cards)+1)
	for k, v := range s.cards {
		next[k] = v
	}
	if rec == nil {
		delete(next, key)
	} else {
		next[key] = *rec
	}

	meta := s.meta
	meta.LastUpdated = s.now().UTC().Format("2006-01-02")

	if err := database.WriteDocument(s.path, models.StoreDocument{Metadata: meta, Cards: next}); err != nil {
		return fmt.Errorf("persist store: %w", err)
	}
	s.meta = meta
	s.cards = next
	return nil
}

func (s *Store) newRange(min, max float64) models.PriceRange {
	return models.PriceRange{
		Min:          min,
		Max:          max,
		Avg:          (min + max) / 2,
		LastVerified: s.now().UTC().Format(monthStampLayout),
	}
}

func validateBand(grade string, min, max float64) error {
	if strings.TrimSpace(grade) == "" {
		return errors.New("grade is required")
	}
	if min < 0 {
		return fmt.Errorf("min price %v must be >= 0", min)
	}
	if max < min {
		return fmt.Errorf("max price %v must be >= min price %v", max, min)
	}
	return nil
}

// cloneRecord deep-copies the mutable parts of a record so mutations never
// touch a map another reader may be iterating.
func cloneRecord(rec models.VerifiedPriceRecord) models.VerifiedPriceRecord {
	prices := make(map[string]models.PriceRange, len(rec.Prices)+1)
	for g, pr := range rec.Prices {
		prices[g] = pr
	}
	rec.Prices = prices

	if rec.Population != nil {
		pop := make(map[string]int, len(rec.Population))
		for g, n := range rec.Population {
			pop[g] = n
		}
		rec.Population = pop
	}
	rec.Players = append([]string(nil), rec.Players...)
	return rec
}
