package model

// CategoryPatch lists the category fields an update may touch.
type CategoryPatch struct {
	Name     Optional[string]   `json:"name"`
	Image    Optional[string]   `json:"image"`
	Keywords Optional[[]string] `json:"keywords"`
	Enabled  Optional[bool]     `json:"enabled"`
}

// ContentPatch lists the content fields an update may touch.
type ContentPatch struct {
	Name        Optional[string]   `json:"name"`
	Image       Optional[string]   `json:"image"`
	Keywords    Optional[[]string] `json:"keywords"`
	Enabled     Optional[bool]     `json:"enabled"`
	Checklist   Optional[[]string] `json:"checklist"`
	Description Optional[string]   `json:"description"`
	Video       Optional[string]   `json:"video"`
}
