package search

import (
	"log"

	"campora/api/internal/content"
)

// Service is the facade that tries Meilisearch first and falls back to
// Postgres FTS when it is absent or unhealthy.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil when Meilisearch is
// not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// Healthy reports whether any search backend can answer queries right now.
func (s *Service) Healthy() bool {
	if s.meili != nil && s.meili.Healthy() {
		return true
	}
	return s.pgfts != nil && s.pgfts.Healthy()
}

func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexSchool rebuilds one school's records after a save, fire-and-forget.
// The Postgres fallback reads live data, so a missed index update degrades
// ranking, never correctness.
func (s *Service) IndexSchool(schoolID string, vm content.ViewModel) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	records := BuildRecords(schoolID, vm)
	go func() {
		if err := s.meili.IndexSchool(schoolID, records); err != nil {
			log.Printf("search: index school %s: %v", schoolID, err)
		}
	}()
}

// DeleteSchool removes one school's records, fire-and-forget.
func (s *Service) DeleteSchool(schoolID string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteSchool(schoolID); err != nil {
			log.Printf("search: delete school %s: %v", schoolID, err)
		}
	}()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
