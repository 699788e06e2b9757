package session

import (
	"time"

	"edugen-client/internal/dto"

	"github.com/patrickmn/go-cache"
)

// HistoryRepository is the client-side cache of history and per-content
// output listings, so reopening a view does not refetch what the server
// just returned. Entries age out; any mutation of the underlying data
// invalidates the affected keys.
type HistoryRepository struct {
	cache *cache.Cache
}

const (
	historyKey    = "history"
	outputsPrefix = "outputs:"
)

func NewHistoryRepository() *HistoryRepository {
	// Short default expiration; generation results change these lists often.
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &HistoryRepository{cache: c}
}

func (r *HistoryRepository) SaveHistory(entries []dto.HistoryEntry) {
	r.cache.Set(historyKey, entries, cache.DefaultExpiration)
}

func (r *HistoryRepository) History() ([]dto.HistoryEntry, bool) {
	if x, found := r.cache.Get(historyKey); found {
		return x.([]dto.HistoryEntry), true
	}
	return nil, false
}

func (r *HistoryRepository) SaveOutputs(contentId string, outputs []dto.OutputEntry) {
	r.cache.Set(outputsPrefix+contentId, outputs, cache.DefaultExpiration)
}

func (r *HistoryRepository) Outputs(contentId string) ([]dto.OutputEntry, bool) {
	if x, found := r.cache.Get(outputsPrefix + contentId); found {
		return x.([]dto.OutputEntry), true
	}
	return nil, false
}

func (r *HistoryRepository) InvalidateHistory() {
	r.cache.Delete(historyKey)
}

func (r *HistoryRepository) InvalidateOutputs(contentId string) {
	r.cache.Delete(outputsPrefix + contentId)
}

func (r *HistoryRepository) Flush() {
	r.cache.Flush()
}
