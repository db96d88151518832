package research

import (
	"encoding/json"

	"github.com/jonathan/content-agent/internal/provider"
	"github.com/jonathan/content-agent/internal/types"
)

// PlaceholderURL is emitted when the provider returns conversational free
// text instead of discrete links.
const PlaceholderURL = "https://perplexity.ai/search"

// payload is the subset of the provider response the normalizer inspects.
// Missing keys decode to zero values; the strategies below treat those as
// "shape not matched" rather than errors.
type payload struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	SearchResults []SearchResultEntry `json:"search_results"`
}

// SearchResultEntry is one structured hit in the provider's search_results
// array.
type SearchResultEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// strategy attempts one extraction shape. It returns the extracted records
// and whether the strategy matched; a non-matching strategy hands off to the
// next one in priority order.
type strategy func(p *payload) ([]types.ResearchRecord, bool)

// strategies are tried in fixed priority order: the structured result list
// wins over the free-text summary.
var strategies = []strategy{structuredResults, freeTextSummary}

// Normalize converts a raw provider payload into flat research records.
// A payload that is not JSON at all is a malformed-response failure; a JSON
// payload matching no strategy yields an empty slice and no error.
func Normalize(raw []byte) ([]types.ResearchRecord, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, provider.NewMalformed(providerName, "response is not valid JSON", err)
	}

	for _, s := range strategies {
		if records, ok := s(&p); ok {
			return records, nil
		}
	}
	return nil, nil
}

// structuredResults maps the search_results array, one record per entry.
// Snippet is the entry title, not the long-form content. Entries without a
// URL are skipped; if that leaves nothing, the strategy does not match.
func structuredResults(p *payload) ([]types.ResearchRecord, bool) {
	if len(p.SearchResults) == 0 {
		return nil, false
	}

	records := make([]types.ResearchRecord, 0, len(p.SearchResults))
	for _, entry := range p.SearchResults {
		if entry.URL == "" {
			continue
		}
		records = append(records, types.ResearchRecord{
			URL:     entry.URL,
			Snippet: entry.Title,
		})
	}
	if len(records) == 0 {
		return nil, false
	}
	return records, true
}

// freeTextSummary emits exactly one record carrying the provider's
// conversational reply under a placeholder URL.
func freeTextSummary(p *payload) ([]types.ResearchRecord, bool) {
	if len(p.Choices) == 0 {
		return nil, false
	}
	content := p.Choices[0].Message.Content
	if content == "" {
		return nil, false
	}
	return []types.ResearchRecord{{URL: PlaceholderURL, Snippet: content}}, true
}
