package domain

// Category enumerates the ticket kinds users can open.
type Category string

const (
	CategoryPurchases   Category = "purchases"
	CategoryNotReceived Category = "not_received"
	CategoryReplace     Category = "replace"
	CategorySupport     Category = "support"
)

// Question is one field of the ticket intake form.
type Question struct {
	Label     string
	Summary   string
	Long      bool
	MaxLength int
}

// CategorySpec describes how a category is presented and which questions it asks.
type CategorySpec struct {
	Category  Category
	Label     string
	Emoji     string
	Questions []Question
}

var categorySpecs = []CategorySpec{
	{
		Category: CategoryPurchases,
		Label:    "Purchases",
		Emoji:    "🛒",
		Questions: []Question{
			{Label: "What do you want to buy?", Summary: "What buy", MaxLength: 200},
			{Label: "Amount for buy?", Summary: "Amount", MaxLength: 100},
			{Label: "Payment Method?", Summary: "Payment", MaxLength: 100},
		},
	},
	{
		Category: CategoryNotReceived,
		Label:    "Product not received",
		Emoji:    "📦",
		Questions: []Question{
			{Label: "Invoice ID", Summary: "Invoice ID", MaxLength: 120},
			{Label: "What payment method did you use?", Summary: "Payment", MaxLength: 120},
			{Label: "When did you pay? (date)", Summary: "Paid at", MaxLength: 120},
		},
	},
	{
		Category: CategoryReplace,
		Label:    "Replace",
		Emoji:    "🔁",
		Questions: []Question{
			{Label: "Is this a store purchase or a replacement?", Summary: "Type", MaxLength: 200},
			{Label: "Invoice ID or Order ID", Summary: "Invoice/Order", MaxLength: 120},
			{Label: "Describe the issue", Summary: "Issue", Long: true, MaxLength: 2000},
		},
	},
	{
		Category: CategorySupport,
		Label:    "Support",
		Emoji:    "💬",
		Questions: []Question{
			{Label: "How can we help you?", Summary: "Message", Long: true, MaxLength: 2000},
		},
	},
}

// Categories returns the category specs in panel order.
func Categories() []CategorySpec {
	out := make([]CategorySpec, len(categorySpecs))
	copy(out, categorySpecs)
	return out
}

// LookupCategory returns the spec for c.
func LookupCategory(c Category) (CategorySpec, bool) {
	for _, spec := range categorySpecs {
		if spec.Category == c {
			return spec, true
		}
	}
	return CategorySpec{}, false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := LookupCategory(c)
	return ok
}

// Label returns the display label, falling back to the raw value.
func (c Category) Label() string {
	if spec, ok := LookupCategory(c); ok {
		return spec.Label
	}
	return string(c)
}
