package engine

import (
	"fmt"
	"strconv"

	"airbnb-insights/models"
)

// Column names of the listing schema.
const (
	ColCountry         = "country"
	ColPropertyType    = "property_type"
	ColRoomType        = "room_type"
	ColHostName        = "host_name"
	ColName            = "name"
	ColPrice           = "price"
	ColAvailability365 = "availability_365"
)

// Kind is the semantic type of a column.
type Kind int

const (
	Categorical Kind = iota
	Text
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	default:
		return "unknown"
	}
}

type column struct {
	name string
	kind Kind
	str  func(*models.Listing) string
	num  func(*models.Listing) float64
}

// key renders the column value used for grouping. Numeric values use their
// shortest decimal form so equal values always land in the same group.
func (c column) key(l *models.Listing) string {
	if c.kind == Numeric {
		return strconv.FormatFloat(c.num(l), 'f', -1, 64)
	}
	return c.str(l)
}

var columnOrder = []string{
	ColCountry, ColPropertyType, ColRoomType, ColHostName, ColName, ColPrice, ColAvailability365,
}

var schema = map[string]column{
	ColCountry:         {name: ColCountry, kind: Categorical, str: func(l *models.Listing) string { return l.Country }},
	ColPropertyType:    {name: ColPropertyType, kind: Categorical, str: func(l *models.Listing) string { return l.PropertyType }},
	ColRoomType:        {name: ColRoomType, kind: Categorical, str: func(l *models.Listing) string { return l.RoomType }},
	ColHostName:        {name: ColHostName, kind: Text, str: func(l *models.Listing) string { return l.HostName }},
	ColName:            {name: ColName, kind: Text, str: func(l *models.Listing) string { return l.Name }},
	ColPrice:           {name: ColPrice, kind: Numeric, num: func(l *models.Listing) float64 { return l.Price }},
	ColAvailability365: {name: ColAvailability365, kind: Numeric, num: func(l *models.Listing) float64 { return float64(l.Availability365) }},
}

// Columns returns the schema's column names in canonical order.
func Columns() []string {
	out := make([]string, len(columnOrder))
	copy(out, columnOrder)
	return out
}

// KindOf reports the kind of a column and whether it exists.
func KindOf(name string) (Kind, bool) {
	c, ok := schema[name]
	return c.kind, ok
}

func lookup(name string) (column, error) {
	c, ok := schema[name]
	if !ok {
		return column{}, fmt.Errorf("%w: %q is not in the schema", ErrInvalidColumn, name)
	}
	return c, nil
}

// lookupString resolves a column that must hold string values.
func lookupString(name string) (column, error) {
	c, err := lookup(name)
	if err != nil {
		return column{}, err
	}
	if c.kind == Numeric {
		return column{}, fmt.Errorf("%w: %q is numeric, not categorical", ErrInvalidColumn, name)
	}
	return c, nil
}

// lookupNumeric resolves a column that must hold numeric values.
func lookupNumeric(name string) (column, error) {
	c, err := lookup(name)
	if err != nil {
		return column{}, err
	}
	if c.kind != Numeric {
		return column{}, fmt.Errorf("%w: %q is %s, not numeric", ErrInvalidColumn, name, c.kind)
	}
	return c, nil
}
