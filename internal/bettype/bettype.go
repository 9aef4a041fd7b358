// Package bettype defines the closed set of bet types the shop sells and
// the normalization rules that map entry-form labels and raw numbers onto
// that set. Everything downstream (matching, rates, settlement) operates
// on canonical types only; alias labels never leave this package.
package bettype

import "strings"

// Type identifies a canonical bet type.
type Type string

const (
	// Top2 is a 2-digit bet against the upper 2-digit result field.
	Top2 Type = "top2"
	// Bottom2 is a 2-digit bet against the lower 2-digit result field.
	Bottom2 Type = "bottom2"
	// Straight3 is a 3-digit exact-order bet.
	Straight3 Type = "straight3"
	// Tod3 is a 3-digit order-independent (permutation) bet.
	Tod3 Type = "tod3"
	// Running is a 1-digit bet matched against any digit of the combined result.
	Running Type = "running"
)

// aliases maps every label the entry forms have historically produced to
// its canonical type. The Thai labels are the ones staff see on screen;
// the hyphenated ones came from older form variants that settle
// identically.
var aliases = map[string]Type{
	"top2":           Top2,
	"2 ตัวบน":        Top2,
	"bottom2":        Bottom2,
	"2 ตัวล่าง":      Bottom2,
	"straight3":      Straight3,
	"3 ตัวบน":        Straight3,
	"3 ตัวตรง":       Straight3,
	"3 กลับ":         Straight3,
	"3-straight-alt": Straight3,
	"3-reverse":      Straight3,
	"tod3":           Tod3,
	"3 โต๊ด":         Tod3,
	"set":            Tod3,
	"running":        Running,
	"running-top":    Running,
	"วิ่งบน":         Running,
	"running-bottom": Running,
	"วิ่งล่าง":       Running,
}

// widths holds the canonical digit length per type.
var widths = map[Type]int{
	Top2:      2,
	Bottom2:   2,
	Straight3: 3,
	Tod3:      3,
	Running:   1,
}

// Normalize maps an entry-form label to its canonical type.
// Returns false for labels that no form has ever produced.
func Normalize(label string) (Type, bool) {
	t, ok := aliases[strings.TrimSpace(label)]
	return t, ok
}

// Parse is like Normalize but for values already stored as canonical
// tags. It accepts aliases too, so rows written before alias collapsing
// still load.
func Parse(s string) (Type, bool) {
	return Normalize(s)
}

// Valid reports whether t is one of the canonical types.
func (t Type) Valid() bool {
	_, ok := widths[t]
	return ok
}

// Width returns the canonical digit length for t, or 0 for an
// unrecognized type.
func (t Type) Width() int {
	return widths[t]
}

// All returns the canonical types in display order.
func All() []Type {
	return []Type{Top2, Bottom2, Straight3, Tod3, Running}
}

// NormalizeNumber left-pads number to the canonical width for t and
// reports whether the result is a usable bet number: digits only, not
// empty, and not longer than the type's width. An unrecognized type
// never yields a usable number.
func NormalizeNumber(t Type, number string) (string, bool) {
	w := widths[t]
	if w == 0 {
		return "", false
	}
	n := strings.TrimSpace(number)
	if n == "" || len(n) > w {
		return "", false
	}
	for i := 0; i < len(n); i++ {
		if n[i] < '0' || n[i] > '9' {
			return "", false
		}
	}
	return PadNumber(n, w), true
}

// PadNumber left-pads n with zeros to width w. Values already at or
// beyond w are returned unchanged.
func PadNumber(n string, w int) string {
	for len(n) < w {
		n = "0" + n
	}
	return n
}
