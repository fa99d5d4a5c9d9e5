package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bryanwahyu/healthinsure-ai/internal/domain/documents"
)

// DocumentStore keeps the latest uploaded document per session in process
// memory. Documents never expire unless ttl is positive.
type DocumentStore struct {
	cache *cache.Cache
}

func NewDocumentStore(ttl time.Duration) *DocumentStore {
	if ttl <= 0 {
		// no janitor goroutine when nothing expires
		return &DocumentStore{cache: cache.New(cache.NoExpiration, 0)}
	}
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &DocumentStore{cache: cache.New(ttl, cleanup)}
}

func (s *DocumentStore) Put(sessionID string, doc documents.Document) {
	doc.SessionID = sessionID
	s.cache.Set(sessionID, doc, cache.DefaultExpiration)
}

func (s *DocumentStore) Get(sessionID string) (documents.Document, bool) {
	if x, found := s.cache.Get(sessionID); found {
		return x.(documents.Document), true
	}
	return documents.Document{}, false
}

func (s *DocumentStore) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}

// Count reports how many sessions hold a document. Expired entries count
// until the janitor sweeps them.
func (s *DocumentStore) Count() int {
	return s.cache.ItemCount()
}
