package domain

// DefaultCategoryIcon is shown for categories without a dedicated icon.
const DefaultCategoryIcon = "🏪"

var categoryIcons = map[string]string{
	"Comidas y Restaurantes":  "🍽️",
	"Tecnología y Desarrollo": "💻",
	"Gimnasios":               "🏋️",
	"Papelería y Librerías":   "📚",
	"Mascotas":                "🐱",
	"Odontología":             "🦷",
	"Ópticas":                 "👓",
	"Pastelerías":             "🎂",
	"Pizzerías":               "🍕",
	"Ropa de Niños":           "👶",
	"Ropa de Mujeres":         "👗",
	"Ropa Deportiva":          "👟",
	"Salones de Belleza":      "💅",
	"SPA":                     "🧘",
	"Talleres de Mecánica":    "🚗",
	"Tiendas Deportivas":      "🏆",
	"Veterinarias":            "🦴",
	"Vidrierías":              "🪟",
}

// Category is a directory category with its display icon.
type Category struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// CategoryIcon returns the emoji for a category name.
func CategoryIcon(name string) string {
	if icon, ok := categoryIcons[name]; ok {
		return icon
	}
	return DefaultCategoryIcon
}

// NewCategories pairs each name with its icon, preserving order.
func NewCategories(names []string) []Category {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		out = append(out, Category{Name: n, Icon: CategoryIcon(n)})
	}
	return out
}
