package domain

// CatalogItem is one orderable entry of the external menu. The catalog is
// read-only for this service; prices and flags always come from the menu
// service snapshot, never from stored drafts.
type CatalogItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Price        float64  `json:"price"`
	Category     string   `json:"category"`
	DietaryFlags []string `json:"dietary_flags,omitempty"`
	Popular      bool     `json:"popular,omitempty"`
}

// Catalog is an immutable snapshot of the menu at one point in time.
type Catalog struct {
	Items []CatalogItem `json:"items"`
}

// ByID returns the item with the given id, or nil.
func (c Catalog) ByID(id string) *CatalogItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}
