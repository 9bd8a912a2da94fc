package commonModels

// Page is the text of one PDF page as returned by the loader. Number is 1-based.
// Total is the page count of the whole document, including pages the loader skipped.
type Page struct {
	Number int    `json:"number"`
	Total  int    `json:"total"`
	Text   string `json:"text"`
}

// Chunk is a span of page text ready for embedding.
type Chunk struct {
	Id           string         `json:"chunk_id"`
	Text         string         `json:"content"`
	SourceFile   string         `json:"source_file"`
	PageMetadata map[string]any `json:"page_metadata,omitempty"`
}

// Filter matches payload keys exactly, all conditions must hold.
type Filter map[string]string

const (
	MetaPage       = "page"
	MetaTotalPages = "total_pages"
	MetaSource     = "source"
)
