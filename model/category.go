package model

// Category is a fixed topical partition of the passage corpus.
// The set of categories is fixed at deployment time and not runtime-extensible.
type Category string

const (
	// CategoryVMC covers the Vendor Management Charter.
	CategoryVMC Category = "vmc"
	// CategorySOP covers the Standard Operating Procedures.
	CategorySOP Category = "sop"
	// CategoryPengadaan covers the procurement process rules.
	CategoryPengadaan Category = "pengadaan"
	// CategoryVRA covers the Vendor Risk Assessment guideline.
	CategoryVRA Category = "vra"
	// CategoryLinks is the resources/links catch-all (forms, tools, portals).
	CategoryLinks Category = "links"
)

// CategoryFallback is returned by the router when classification yields
// no recognizable category.
const CategoryFallback = CategoryVMC

// CategoryDefault is used by the retriever when the requested category
// has no index loaded.
const CategoryDefault = CategorySOP

// AllCategories returns all categories in their fixed deployment order.
func AllCategories() []Category {
	return []Category{CategoryVMC, CategorySOP, CategoryPengadaan, CategoryVRA, CategoryLinks}
}

// RouteCheckOrder is the fixed priority order in which classifier output is
// matched against category names. First match wins, which keeps routing
// deterministic when a response mentions more than one category.
func RouteCheckOrder() []Category {
	return []Category{CategoryLinks, CategorySOP, CategoryPengadaan, CategoryVRA}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
