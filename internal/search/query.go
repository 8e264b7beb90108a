package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// searchPageSize is the number of hits fetched per index request.
var searchPageSize = 500

// SearchTitles returns the ids of all titles matching text, best match first.
// Names weigh more than descriptions; short typos and name prefixes also match.
func (s *Index) SearchTitles(ctx context.Context, text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	q := buildTitleQuery(text)
	ids := make([]int64, 0)
	for from := 0; ; from += searchPageSize {
		req := bleve.NewSearchRequestOptions(q, searchPageSize, from, false)
		req.SortBy([]string{"-_score", "_id"})

		res, err := s.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("execute search: %w", err)
		}

		for _, hit := range res.Hits {
			id, err := strconv.ParseInt(hit.ID, 10, 64)
			if err != nil {
				s.logger.Warn("skipping search hit with invalid id", "id", hit.ID)
				continue
			}
			ids = append(ids, id)
		}
		if len(res.Hits) < searchPageSize || uint64(from+len(res.Hits)) >= res.Total {
			return ids, nil
		}
	}
}

func buildTitleQuery(text string) query.Query {
	nameMatch := bleve.NewMatchQuery(text)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	descMatch := bleve.NewMatchQuery(text)
	descMatch.SetField("description")

	fuzzyMatch := bleve.NewMatchQuery(text)
	fuzzyMatch.SetField("name")
	fuzzyMatch.SetFuzziness(1)
	fuzzyMatch.SetBoost(0.8)

	queries := []query.Query{nameMatch, descMatch, fuzzyMatch}

	// Prefix on the last word, for incomplete input.
	words := strings.Fields(strings.ToLower(text))
	if last := words[len(words)-1]; len([]rune(last)) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("name")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
