package models

// Color is one entry of the closed note color palette.
type Color string

const (
	ColorYellow   Color = "yellow"
	ColorMint     Color = "mint"
	ColorRose     Color = "rose"
	ColorSky      Color = "sky"
	ColorLavender Color = "lavender"
	ColorSand     Color = "sand"
)

// DefaultColor is the palette's first entry, assigned to new notes.
const DefaultColor = ColorYellow

// Palette returns the full color palette in display order.
func Palette() []Color {
	return []Color{ColorYellow, ColorMint, ColorRose, ColorSky, ColorLavender, ColorSand}
}

// IsValidColor checks if a color is part of the palette.
func IsValidColor(c Color) bool {
	switch c {
	case ColorYellow, ColorMint, ColorRose, ColorSky, ColorLavender, ColorSand:
		return true
	}
	return false
}

// NormalizeColor converts user input to a canonical palette color.
// Matching is case-insensitive; unknown values pass through unchanged
// so the caller can reject them with IsValidColor.
func NormalizeColor(s string) Color {
	lower := toLower(s)
	for _, c := range Palette() {
		if lower == string(c) {
			return c
		}
	}
	return Color(s)
}

// toLower is an ASCII-only lowercase; palette names are ASCII.
func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// NoteRecord is a single note. Timestamps are Unix milliseconds; they
// are logical times, so comparisons (not formatting) are what matters.
type NoteRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Color     Color  `json:"color"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// OpKind is the kind of a pending operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// IsValidOpKind checks if an operation kind is known.
func IsValidOpKind(k OpKind) bool {
	switch k {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// PendingOperation is a local mutation not yet confirmed applied to the
// remote store. Seq is assigned at enqueue time and is the only replay
// ordering key; EnqueuedAt is advisory (device clocks drift).
type PendingOperation struct {
	Seq        int64       `json:"seq"`
	Kind       OpKind      `json:"kind"`
	NoteID     string      `json:"note_id"`
	Note       *NoteRecord `json:"note,omitempty"` // full record for create/update, nil for delete
	EnqueuedAt int64       `json:"enqueued_at"`
}
