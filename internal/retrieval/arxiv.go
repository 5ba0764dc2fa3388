// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval supplies the researcher stage's optional literature
// search capability.
package retrieval

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// Searcher finds candidate sources for a topic. Implementations are
// best-effort: the researcher degrades to prompt-only research when a
// search fails.
type Searcher interface {
	Search(ctx context.Context, topic string, maxResults int) ([]string, error)
}

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSearcher queries the arXiv API and formats hits as citation lines.
type ArxivSearcher struct {
	Client    *http.Client
	UserAgent string

	// MaxResults applies when Search is called with a non-positive count.
	MaxResults int
}

// NewArxivSearcher builds a searcher from retrieval configuration.
func NewArxivSearcher(cfg types.RetrievalConfig) *ArxivSearcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ArxivSearcher{
		Client:     &http.Client{Timeout: timeout},
		UserAgent:  cfg.UserAgent,
		MaxResults: cfg.MaxResults,
	}
}

// Search queries arXiv for the topic and returns formatted source lines
// ("Title (Author et al., 2017) - arXiv:1706.03762").
func (s *ArxivSearcher) Search(ctx context.Context, topic string, maxResults int) ([]string, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = s.MaxResults
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	terms := strings.Fields(topic)
	q := "all:" + url.QueryEscape(strings.Join(terms, "+"))
	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var sources []string
	for _, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		if id == "" {
			continue
		}
		sources = append(sources, formatSource(entry, id))
	}
	return sources, nil
}

// formatSource renders one feed entry as a single citation line.
func formatSource(entry arxivEntry, id string) string {
	title := strings.Join(strings.Fields(entry.Title), " ")

	author := "unknown"
	if len(entry.Authors) > 0 {
		author = strings.TrimSpace(entry.Authors[0].Name)
		if len(entry.Authors) > 1 {
			author += " et al."
		}
	}

	year := ""
	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		year = fmt.Sprintf(", %d", t.Year())
	}

	return fmt.Sprintf("%s (%s%s) - arXiv:%s", title, author, year, id)
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	idx := strings.LastIndex(idURL, "/abs/")
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len("/abs/"):]
	if v := strings.LastIndex(id, "v"); v > 0 {
		if _, err := fmt.Sscanf(id[v+1:], "%d", new(int)); err == nil {
			id = id[:v]
		}
	}
	return id
}
