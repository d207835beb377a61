package catalog

// FilterCategory is the coarse display-technology bucket used for pool
// filtering and for per-category rating segments.
type FilterCategory string

const (
	CategoryAll        FilterCategory = "All"
	CategoryEM         FilterCategory = "EM"
	CategorySolidState FilterCategory = "SolidState"
	CategoryDMD        FilterCategory = "DMD"
	CategoryModern     FilterCategory = "Modern"
)

// derivedCategories maps display technology to its category.
var derivedCategories = map[Display]FilterCategory{
	DisplayReels:        CategoryEM,
	DisplayLights:       CategoryEM,
	DisplayAlphanumeric: CategorySolidState,
	DisplayDMD:          CategoryDMD,
	DisplayLCD:          CategoryModern,
}

// DerivedCategory maps a display technology to its filter category.
// Unknown or missing display data yields no category.
func DerivedCategory(d Display) (FilterCategory, bool) {
	c, ok := derivedCategories[d]
	return c, ok
}

// Overrides corrects misclassified machines. Keys are either a full machine
// id or a bare group id; the full id wins when both are present.
type Overrides map[string]FilterCategory

// EffectiveCategory resolves the category for a machine: override by full
// id, then override by group id, then the display-derived category. A
// variant shipped without display data takes the derived category of any
// sibling variant in the same group that has it.
func EffectiveCategory(m Machine, siblings []Machine, overrides Overrides) (FilterCategory, bool) {
	if c, ok := overrides[m.ID]; ok {
		return c, true
	}
	if c, ok := overrides[m.GroupID()]; ok {
		return c, true
	}
	if c, ok := DerivedCategory(m.Display); ok {
		return c, true
	}
	gid := m.GroupID()
	for _, s := range siblings {
		if s.ID == m.ID || s.GroupID() != gid {
			continue
		}
		if c, ok := DerivedCategory(s.Display); ok {
			return c, true
		}
	}
	return "", false
}

// CategorySet is the active filter selection.
type CategorySet map[FilterCategory]bool

// NewCategorySet builds a set from the given categories. An empty input or
// one containing All yields the unrestricted set.
func NewCategorySet(cats ...FilterCategory) CategorySet {
	set := make(CategorySet, len(cats))
	for _, c := range cats {
		set[c] = true
	}
	return set
}

// Unrestricted reports whether the set imposes no category filter.
func (s CategorySet) Unrestricted() bool {
	return len(s) == 0 || s[CategoryAll]
}

// ParseCategory validates a category name from external input.
func ParseCategory(s string) (FilterCategory, bool) {
	switch FilterCategory(s) {
	case CategoryAll, CategoryEM, CategorySolidState, CategoryDMD, CategoryModern:
		return FilterCategory(s), true
	}
	return "", false
}
