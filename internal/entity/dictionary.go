package entity

// CategoryEnum is the product category enum (audio equipment taxonomy).
type CategoryEnum string

const (
	Headphones  CategoryEnum = "headphones"
	Speakers    CategoryEnum = "speakers"
	Amplifiers  CategoryEnum = "amplifiers"
	Turntables  CategoryEnum = "turntables"
	Microphones CategoryEnum = "microphones"
	Accessories CategoryEnum = "accessories"
)

// ValidCategories is a set of valid product categories
var ValidCategories = map[CategoryEnum]bool{
	Headphones:  true,
	Speakers:    true,
	Amplifiers:  true,
	Turntables:  true,
	Microphones: true,
	Accessories: true,
}

// Category represents the category table
type Category struct {
	ID   int          `db:"id"`
	Name CategoryEnum `db:"name"`
}

// Dict is the immutable dictionary data loaded at startup.
type Dict struct {
	Categories    []Category
	OrderStatuses []OrderStatus
}
