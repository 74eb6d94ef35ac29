package model

// SourceType discriminates the two provenance variants.
type SourceType string

const (
	SourceWeb      SourceType = "web"
	SourceDocument SourceType = "document"
)

// Source is a provenance record attached to an answer. Web sources carry
// title/url/snippet; document sources carry origin/chunk/preview/score.
type Source struct {
	Type SourceType `json:"type"`

	// Web fields
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`

	// Document fields. RelevanceScore is a distance: lower is better,
	// in [0, 1]. The polarity is fixed for the built-in index.
	Origin         string  `json:"origin,omitempty"`
	ChunkIndex     int     `json:"chunk_index,omitempty"`
	Preview        string  `json:"preview,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}

// WebSource constructs a web-origin source.
func WebSource(title, url, snippet string) Source {
	return Source{Type: SourceWeb, Title: title, URL: url, Snippet: snippet}
}

// DocumentSource constructs a document-origin source.
func DocumentSource(origin string, chunkIndex int, preview string, score float64) Source {
	return Source{
		Type:           SourceDocument,
		Origin:         origin,
		ChunkIndex:     chunkIndex,
		Preview:        preview,
		RelevanceScore: score,
	}
}
