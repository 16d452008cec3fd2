package model

// Category is a user-defined spending category. Identity is the ID;
// name, color and icon are user-editable. Other entities reference a
// category by ID only, never by embedding.
type Category struct {
	ID    string
	Name  string
	Color string // hex, e.g. "#4caf50"
	Icon  string // optional glyph
}
