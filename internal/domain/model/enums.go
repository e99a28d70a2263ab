package model

// Category is the semantic class assigned to a clip by the categorizer.
type Category string

const (
	CategoryURL      Category = "url"
	CategoryEmail    Category = "email"
	CategoryPhone    Category = "phone"
	CategoryPassword Category = "password"
	CategoryCode     Category = "code"
	CategoryText     Category = "text"
)

// AllCategories lists the category vocabulary in display order.
var AllCategories = []Category{
	CategoryURL,
	CategoryEmail,
	CategoryPhone,
	CategoryPassword,
	CategoryCode,
	CategoryText,
}

// categoryStyle holds the presentation hints exposed for each category.
type categoryStyle struct {
	color string
	icon  string
}

var categoryStyles = map[Category]categoryStyle{
	CategoryURL:      {color: "#3B82F6", icon: "🔗"},
	CategoryEmail:    {color: "#10B981", icon: "📧"},
	CategoryPhone:    {color: "#F59E0B", icon: "📞"},
	CategoryPassword: {color: "#EF4444", icon: "🔒"},
	CategoryCode:     {color: "#8B5CF6", icon: "💻"},
	CategoryText:     {color: "#6B7280", icon: "📝"},
}

// Valid reports whether c is one of the six known categories.
func (c Category) Valid() bool {
	_, ok := categoryStyles[c]
	return ok
}

// Color returns the display color for the category. Unknown categories use
// the text color.
func (c Category) Color() string {
	if s, ok := categoryStyles[c]; ok {
		return s.color
	}
	return categoryStyles[CategoryText].color
}

// Icon returns the display icon for the category. Unknown categories use the
// text icon.
func (c Category) Icon() string {
	if s, ok := categoryStyles[c]; ok {
		return s.icon
	}
	return categoryStyles[CategoryText].icon
}
