package model

// Category groups products for catalog filtering. Names are not unique; the
// storefront tolerates duplicates.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:255;not null"`
}

// TableName keeps the table name the storefront schema uses.
func (Category) TableName() string {
	return "categories"
}
