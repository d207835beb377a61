// Package catalog holds the read-only reference model: machines, machine
// groups and the display-technology categories used for pool filtering and
// segmented ratings.
package catalog

import "strings"

// Display is the display technology of a machine as reported by the
// reference data.
type Display string

const (
	DisplayReels        Display = "reels"
	DisplayLights       Display = "lights"
	DisplayAlphanumeric Display = "alphanumeric"
	DisplayDMD          Display = "dmd"
	DisplayLCD          Display = "lcd"
	DisplayUnknown      Display = "unknown"
)

// ImageRef carries the size variants of one hosted image.
type ImageRef struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
	Small  string `json:"small"`
}

// Usable reports whether the ref can actually be shown at a useful size.
func (r ImageRef) Usable() bool {
	return r.Large != "" || r.Medium != ""
}

// Machine is one catalogued variant. Immutable after load.
type Machine struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Manufacturer string     `json:"manufacturer"`
	ReleaseDate  string     `json:"releaseDate"`
	Display      Display    `json:"display"`
	Features     []string   `json:"features"`
	Images       []ImageRef `json:"images"`
}

// MachineGroup is the canonical cluster of variants sharing a group id.
// Its name, when present, is preferred over any member's name.
type MachineGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupID is the id prefix up to (not including) the first '-'.
func (m Machine) GroupID() string {
	if i := strings.IndexByte(m.ID, '-'); i >= 0 {
		return m.ID[:i]
	}
	return m.ID
}

// UsableImage returns the first image ref with a large or medium variant.
func (m Machine) UsableImage() (ImageRef, bool) {
	for _, r := range m.Images {
		if r.Usable() {
			return r, true
		}
	}
	return ImageRef{}, false
}

const conversionKitMarker = "conversion kit"

// IsConversionKit detects conversion-kit variants, which are excluded from
// selection and imagery entirely. The marker is matched case-insensitively
// across the name and feature tags.
func (m Machine) IsConversionKit() bool {
	if strings.Contains(strings.ToLower(m.Name), conversionKitMarker) {
		return true
	}
	for _, f := range m.Features {
		if strings.Contains(strings.ToLower(f), conversionKitMarker) {
			return true
		}
	}
	return false
}

// HasFeature reports whether any feature tag contains tag,
// case-insensitively.
func (m Machine) HasFeature(tag string) bool {
	tag = strings.ToLower(tag)
	for _, f := range m.Features {
		if strings.Contains(strings.ToLower(f), tag) {
			return true
		}
	}
	return false
}

// blockedManufacturers are excluded from selection wholesale. These are
// placeholder rows in the reference data, not shippable machines.
var blockedManufacturers = map[string]bool{
	"homebrew": true,
	"unknown":  true,
}

// ManufacturerBlocked reports whether the machine's manufacturer is on the
// selection blocklist.
func (m Machine) ManufacturerBlocked() bool {
	return blockedManufacturers[strings.ToLower(strings.TrimSpace(m.Manufacturer))]
}

// NormalizeName lowercases and strips everything but letters and digits,
// so "Medieval Madness (Remake)" and "medieval madness remake" compare equal.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GroupEligible reports whether the group has at least one member that is
// not a conversion kit.
func GroupEligible(groupID string, pool []Machine) bool {
	for _, m := range pool {
		if m.GroupID() == groupID && !m.IsConversionKit() {
			return true
		}
	}
	return false
}
