package domain

// Page carries offset pagination and an optional sort key. Sort keys are
// checked against a per-entity whitelist in the repository layer.
type Page struct {
	Limit  int
	Offset int
	Sort   string
	Desc   bool
}
