package domain

// Category classifies a cost line item.
type Category string

const (
	CategoryMaterials Category = "materials"
	CategoryLabor     Category = "labor"
	CategoryTools     Category = "tools"
	CategoryTransport Category = "transport"
	CategoryOther     Category = "other"
)

// Categories lists every valid cost category.
var Categories = []Category{
	CategoryMaterials,
	CategoryLabor,
	CategoryTools,
	CategoryTransport,
	CategoryOther,
}

func (c Category) Valid() bool {
	switch c {
	case CategoryMaterials, CategoryLabor, CategoryTools, CategoryTransport, CategoryOther:
		return true
	}
	return false
}
