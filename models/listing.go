package models

// Listing is one entry of a listing page, in the page's own rank order.
type Listing struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	URL   string `json:"url"`
}
