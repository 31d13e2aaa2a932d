package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxAnnouncements = "campora_announcements"
	idxAchievements  = "campora_achievements"
	idxStaff         = "campora_staff"
)

// Meili implements Searcher via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes. An
// unreachable server is tolerated; the health loop recovers when it comes
// back and the service falls back to Postgres FTS meanwhile.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}
	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		filterable []string
		searchable []string
	}{
		{
			uid:        idxAnnouncements,
			filterable: []string{"schoolId", "category"},
			searchable: []string{"title", "description"},
		},
		{
			uid:        idxAchievements,
			filterable: []string{"schoolId", "sectionKey", "level"},
			searchable: []string{"title", "description"},
		},
		{
			uid:        idxStaff,
			filterable: []string{"schoolId", "department"},
			searchable: []string{"name", "department", "position", "specializations"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: "key",
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		filterableInterface := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterableInterface[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterableInterface); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", idx.uid, err)
		}
		searchable := idx.searchable
		if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries all three indexes (or a filtered subset) and merges results.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	targetIndexes := []struct {
		uid  string
		rtyp ResultType
	}{
		{idxAnnouncements, ResultAnnouncement},
		{idxAchievements, ResultAchievement},
		{idxStaff, ResultStaff},
	}

	for _, ti := range targetIndexes {
		if q.FilterType != "" && q.FilterType != ti.rtyp {
			continue
		}
		sr := &meili.SearchRequest{
			IndexUID:              ti.uid,
			Query:                 q.Text,
			Limit:                 limit,
			Offset:                int64(q.Offset),
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
		}
		if q.SchoolID != "" {
			sr.Filter = []string{fmt.Sprintf("schoolId = %q", q.SchoolID)}
		}
		queries = append(queries, sr)
	}
	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{Queries: queries})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp))
		}
	}
	return results, total, nil
}

func indexToResultType(uid string) ResultType {
	switch uid {
	case idxAnnouncements:
		return ResultAnnouncement
	case idxAchievements:
		return ResultAchievement
	case idxStaff:
		return ResultStaff
	default:
		return ""
	}
}

func hitToResult(hit meili.Hit, rtyp ResultType) Result {
	r := Result{Type: rtyp}
	r.ID = decodeString(hit, "id")
	r.SchoolID = decodeString(hit, "schoolId")

	switch rtyp {
	case ResultAnnouncement:
		r.Title = firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "description"), decodeString(hit, "description"))
		r.Category = decodeString(hit, "category")
	case ResultAchievement:
		r.Title = firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "description"), decodeString(hit, "description"))
		r.Category = decodeString(hit, "sectionKey")
	case ResultStaff:
		r.Title = firstNonBlank(decodeFormattedString(hit, "name"), decodeString(hit, "name"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "position"), decodeString(hit, "position"))
		r.Category = decodeString(hit, "department")
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexSchool replaces every record for one school across all indexes.
// Records are keyed per school, so re-adding overwrites in place; entities
// deleted since the last save are removed by the filtered delete first.
func (m *Meili) IndexSchool(schoolID string, records SchoolRecords) error {
	filter := fmt.Sprintf("schoolId = %q", schoolID)
	for _, uid := range []string{idxAnnouncements, idxAchievements, idxStaff} {
		if _, err := m.client.Index(uid).DeleteDocumentsByFilter(filter, nil); err != nil {
			return fmt.Errorf("clear %s for %s: %w", uid, schoolID, err)
		}
	}
	if len(records.Announcements) > 0 {
		if _, err := m.client.Index(idxAnnouncements).AddDocuments(records.Announcements, nil); err != nil {
			return fmt.Errorf("index announcements: %w", err)
		}
	}
	if len(records.Achievements) > 0 {
		if _, err := m.client.Index(idxAchievements).AddDocuments(records.Achievements, nil); err != nil {
			return fmt.Errorf("index achievements: %w", err)
		}
	}
	if len(records.Staff) > 0 {
		if _, err := m.client.Index(idxStaff).AddDocuments(records.Staff, nil); err != nil {
			return fmt.Errorf("index staff: %w", err)
		}
	}
	return nil
}

// DeleteSchool removes every record for one school, used when a tenant is
// removed.
func (m *Meili) DeleteSchool(schoolID string) error {
	filter := fmt.Sprintf("schoolId = %q", schoolID)
	for _, uid := range []string{idxAnnouncements, idxAchievements, idxStaff} {
		if _, err := m.client.Index(uid).DeleteDocumentsByFilter(filter, nil); err != nil {
			return fmt.Errorf("delete school from %s: %w", uid, err)
		}
	}
	return nil
}
