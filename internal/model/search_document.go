package model

// Document kinds stored in the search index.
const (
	KindCategory = "category"
	KindContent  = "content"
)

// SearchDocument is the Elasticsearch representation of a tree record.
type SearchDocument struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	ParentID    *string  `json:"parent_id"`
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Enabled     bool     `json:"enabled"`
}

// SearchHit is one full-text search result returned to clients.
type SearchHit struct {
	SearchDocument
	Score float64 `json:"score"`
}

// CategoryDocument converts c into its index form.
func CategoryDocument(c *Category) SearchDocument {
	return SearchDocument{
		ID:       c.ID,
		Kind:     KindCategory,
		ParentID: c.ParentID,
		Name:     c.Name,
		Keywords: c.Keywords,
		Image:    c.Image,
		Enabled:  c.Enabled,
	}
}

// ContentDocument converts c into its index form.
func ContentDocument(c *Content) SearchDocument {
	return SearchDocument{
		ID:          c.ID,
		Kind:        KindContent,
		ParentID:    c.CategoryID,
		Name:        c.Name,
		Keywords:    c.Keywords,
		Description: c.Description,
		Image:       c.Image,
		Enabled:     c.Enabled,
	}
}
