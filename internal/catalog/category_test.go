package catalog

import "testing"

func TestDerivedCategory(t *testing.T) {
	tests := []struct {
		display Display
		want    FilterCategory
		ok      bool
	}{
		{DisplayReels, CategoryEM, true},
		{DisplayLights, CategoryEM, true},
		{DisplayAlphanumeric, CategorySolidState, true},
		{DisplayDMD, CategoryDMD, true},
		{DisplayLCD, CategoryModern, true},
		{DisplayUnknown, "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DerivedCategory(tt.display)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("DerivedCategory(%q) = (%q, %v), want (%q, %v)", tt.display, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEffectiveCategoryOverrides(t *testing.T) {
	m := Machine{ID: "G1-a", Display: DisplayDMD}
	overrides := Overrides{"G1": CategoryEM}

	got, ok := EffectiveCategory(m, nil, overrides)
	if !ok || got != CategoryEM {
		t.Fatalf("group override should win over derived: got (%q, %v)", got, ok)
	}

	// full-id override takes precedence over group override
	overrides["G1-a"] = CategoryModern
	got, ok = EffectiveCategory(m, nil, overrides)
	if !ok || got != CategoryModern {
		t.Fatalf("full-id override should win: got (%q, %v)", got, ok)
	}
}

func TestEffectiveCategorySiblingFallback(t *testing.T) {
	siblings := []Machine{
		{ID: "G1-a", Display: DisplayUnknown},
		{ID: "G1-b", Display: DisplayDMD},
		{ID: "G2-a", Display: DisplayLCD},
	}
	m := siblings[0]

	got, ok := EffectiveCategory(m, siblings, nil)
	if !ok || got != CategoryDMD {
		t.Fatalf("expected the sibling's DMD category, got (%q, %v)", got, ok)
	}

	// no sibling in the same group has display data
	lone := Machine{ID: "G3-a", Display: DisplayUnknown}
	if _, ok := EffectiveCategory(lone, siblings, nil); ok {
		t.Fatal("expected no category for a group without display data")
	}
}

func TestCategorySet(t *testing.T) {
	if !NewCategorySet().Unrestricted() {
		t.Fatal("empty set should be unrestricted")
	}
	if !NewCategorySet(CategoryAll, CategoryEM).Unrestricted() {
		t.Fatal("set containing All should be unrestricted")
	}
	set := NewCategorySet(CategoryEM, CategoryDMD)
	if set.Unrestricted() {
		t.Fatal("EM+DMD should be restricted")
	}
	if !set[CategoryEM] || set[CategoryModern] {
		t.Fatal("membership mismatch")
	}
}

func TestParseCategory(t *testing.T) {
	if _, ok := ParseCategory("EM"); !ok {
		t.Fatal("EM should parse")
	}
	if _, ok := ParseCategory("em"); ok {
		t.Fatal("categories are case-sensitive names")
	}
	if _, ok := ParseCategory("Pinball"); ok {
		t.Fatal("unknown category should not parse")
	}
}
