package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tcp_snm/deepshift/internal/database"
)

// QuestionCache keeps the ordered question set of recently used contests.
type QuestionCache struct {
	lru *expirable.LRU[uuid.UUID, []database.Question]
}

func NewQuestionCache(size int, ttl time.Duration) *QuestionCache {
	if size <= 0 {
		size = 256
	}
	return &QuestionCache{
		lru: expirable.NewLRU[uuid.UUID, []database.Question](size, nil, ttl),
	}
}

func (c *QuestionCache) Get(contestID uuid.UUID) ([]database.Question, bool) {
	return c.lru.Get(contestID)
}

func (c *QuestionCache) Add(contestID uuid.UUID, questions []database.Question) {
	c.lru.Add(contestID, questions)
}

func (c *QuestionCache) Invalidate(contestID uuid.UUID) {
	c.lru.Remove(contestID)
}
