package sqldb

import "strconv"

// PlaceholderStyle selects the parameter marker syntax a driver expects.
type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota // ? (sqlite, mysql)
	PlaceholderDollar                           // $1, $2, ... (postgres)
)

// builder accumulates statement arguments and hands back the matching
// placeholder for each.
type builder struct {
	style PlaceholderStyle
	args  []any
}

func newBuilder(style PlaceholderStyle) *builder {
	return &builder{style: style}
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	if b.style == PlaceholderDollar {
		return "$" + strconv.Itoa(len(b.args))
	}
	return "?"
}
