package search

import (
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher directly over the schools JSONB documents using
// PostgreSQL full-text search. It is the fallback when Meilisearch is down,
// so it trades ranking quality for zero extra infrastructure. Only the
// current write schema (plain arrays per page) is matched; legacy shapes are
// picked up once their first save normalizes them.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

func pageArray(pageKey string) string {
	return fmt.Sprintf(`CASE WHEN jsonb_typeof(s.doc->'pages'->'%s') = 'array'
		THEN s.doc->'pages'->'%s' ELSE '[]'::jsonb END`, pageKey, pageKey)
}

func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	const tsQuery = "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	schoolWhere := ""
	if q.SchoolID != "" {
		schoolWhere = " AND s.id = $2"
		args = append(args, q.SchoolID)
	}

	var subQueries []string
	if q.FilterType == "" || q.FilterType == ResultAnnouncement {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'announcement'::text AS type, elem->>'id' AS id,
				coalesce(elem->>'title', '') AS title,
				ts_headline('english', coalesce(elem->>'description', ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				s.id AS school_id,
				coalesce(elem->>'category', '') AS category,
				ts_rank(to_tsvector('english', coalesce(elem->>'title', '') || ' ' || coalesce(elem->>'description', '')), %s) AS rank
			FROM schools s, LATERAL jsonb_array_elements(%s) elem
			WHERE to_tsvector('english', coalesce(elem->>'title', '') || ' ' || coalesce(elem->>'description', '')) @@ %s%s`,
			tsQuery, tsQuery, pageArray("announcementsPage"), tsQuery, schoolWhere))
	}
	if q.FilterType == "" || q.FilterType == ResultAchievement {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'achievement'::text AS type, elem->>'id' AS id,
				coalesce(elem->>'title', '') AS title,
				ts_headline('english', coalesce(elem->>'description', ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				s.id AS school_id,
				coalesce(elem->>'sectionKey', '') AS category,
				ts_rank(to_tsvector('english', coalesce(elem->>'title', '') || ' ' || coalesce(elem->>'description', '')), %s) AS rank
			FROM schools s, LATERAL jsonb_array_elements(%s) elem
			WHERE to_tsvector('english', coalesce(elem->>'title', '') || ' ' || coalesce(elem->>'description', '')) @@ %s%s`,
			tsQuery, tsQuery, pageArray("achievementsPage"), tsQuery, schoolWhere))
	}
	if q.FilterType == "" || q.FilterType == ResultStaff {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'staff'::text AS type, elem->>'id' AS id,
				coalesce(elem->>'name', '') AS title,
				ts_headline('english', coalesce(elem->>'position', '') || ' ' || coalesce(elem->>'specializations', ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				s.id AS school_id,
				coalesce(elem->>'department', '') AS category,
				ts_rank(to_tsvector('english', coalesce(elem->>'name', '') || ' ' || coalesce(elem->>'department', '') || ' ' || coalesce(elem->>'position', '') || ' ' || coalesce(elem->>'specializations', '')), %s) AS rank
			FROM schools s, LATERAL jsonb_array_elements(%s) elem
			WHERE to_tsvector('english', coalesce(elem->>'name', '') || ' ' || coalesce(elem->>'department', '') || ' ' || coalesce(elem->>'position', '') || ' ' || coalesce(elem->>'specializations', '')) @@ %s%s`,
			tsQuery, tsQuery, pageArray("staffPage"), tsQuery, schoolWhere))
	}
	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	query := fmt.Sprintf(`
		WITH hits AS (%s)
		SELECT type, id, title, snippet, school_id, category, COUNT(*) OVER() AS total
		FROM hits
		ORDER BY rank DESC
		LIMIT %d OFFSET %d
	`, strings.Join(subQueries, "\nUNION ALL\n"), limit, offset)

	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts search: %w", err)
	}
	defer rows.Close()

	var results []Result
	total := 0
	for rows.Next() {
		var r Result
		var rtyp string
		if err := rows.Scan(&rtyp, &r.ID, &r.Title, &r.Snippet, &r.SchoolID, &r.Category, &total); err != nil {
			return nil, 0, fmt.Errorf("scan pgfts hit: %w", err)
		}
		r.Type = ResultType(rtyp)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate pgfts hits: %w", err)
	}
	return results, total, nil
}
