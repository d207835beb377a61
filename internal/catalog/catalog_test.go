package catalog

import "testing"

func TestGroupID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"G43W4-MrRpw", "G43W4"},
		{"G43W4-MrRpw-A1", "G43W4"},
		{"G43W4", "G43W4"},
		{"", ""},
	}
	for _, tt := range tests {
		m := Machine{ID: tt.id}
		if got := m.GroupID(); got != tt.want {
			t.Fatalf("GroupID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Medieval Madness", "medievalmadness"},
		{"Medieval Madness (Remake)", "medievalmadnessremake"},
		{"AC/DC", "acdc"},
		{"  Fish Tales  ", "fishtales"},
		{"X's & O's", "xsos"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsConversionKit(t *testing.T) {
	tests := []struct {
		name     string
		machine  Machine
		want     bool
	}{
		{"plain machine", Machine{Name: "Fish Tales"}, false},
		{"kit in name", Machine{Name: "Pinbot Conversion Kit"}, true},
		{"kit in name lowercase", Machine{Name: "pinbot conversion kit"}, true},
		{"kit in features", Machine{Name: "Fish Tales", Features: []string{"Conversion kit"}}, true},
		{"kit mid-feature", Machine{Name: "Fish Tales", Features: []string{"sold as conversion kit only"}}, true},
		{"unrelated features", Machine{Name: "Fish Tales", Features: []string{"Premium edition"}}, false},
	}
	for _, tt := range tests {
		if got := tt.machine.IsConversionKit(); got != tt.want {
			t.Fatalf("%s: IsConversionKit() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestManufacturerBlocked(t *testing.T) {
	if !(Machine{Manufacturer: "Homebrew"}).ManufacturerBlocked() {
		t.Fatal("Homebrew should be blocked")
	}
	if !(Machine{Manufacturer: " unknown "}).ManufacturerBlocked() {
		t.Fatal("unknown should be blocked regardless of spacing")
	}
	if (Machine{Manufacturer: "Stern"}).ManufacturerBlocked() {
		t.Fatal("Stern should not be blocked")
	}
}

func TestUsableImage(t *testing.T) {
	m := Machine{Images: []ImageRef{{Small: "s.jpg"}, {Medium: "m.jpg"}}}
	ref, ok := m.UsableImage()
	if !ok || ref.Medium != "m.jpg" {
		t.Fatalf("expected the medium ref, got %+v ok=%v", ref, ok)
	}

	m = Machine{Images: []ImageRef{{Small: "s.jpg"}}}
	if _, ok := m.UsableImage(); ok {
		t.Fatal("small-only image should not be usable")
	}
}

func TestGroupEligible(t *testing.T) {
	pool := []Machine{
		{ID: "G1-a", Name: "Thing Conversion Kit"},
		{ID: "G1-b", Name: "Thing"},
		{ID: "G2-a", Name: "Other Conversion Kit"},
	}
	if !GroupEligible("G1", pool) {
		t.Fatal("G1 has a non-kit member, should be eligible")
	}
	if GroupEligible("G2", pool) {
		t.Fatal("G2 has only kit members, should not be eligible")
	}
	if GroupEligible("G3", pool) {
		t.Fatal("G3 has no members, should not be eligible")
	}
}
