package listing

import (
	"sort"
	"strings"

	"gorm.io/gorm/clause"
)

// Ordering maps the sort keys accepted in the order_by parameter to
// (column, direction) pairs. Keys outside the map never reach the store.
type Ordering struct {
	keys       map[string][]clause.OrderByColumn
	defaults   []clause.OrderByColumn
	tieBreaker clause.OrderByColumn
}

// Asc orders by a column of table ascending
func Asc(table, column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Table: table, Name: column}}
}

// Desc orders by a column of table descending
func Desc(table, column string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Table: table, Name: column}, Desc: true}
}

// NewOrdering builds an ordering for table. defaults is the declared
// ordering used when no valid key is given.
func NewOrdering(table string, defaults []clause.OrderByColumn, keys map[string][]clause.OrderByColumn) Ordering {
	return Ordering{
		keys:       keys,
		defaults:   defaults,
		tieBreaker: Asc(table, "id"),
	}
}

// Keys returns the accepted sort keys in sorted order
func (o Ordering) Keys() []string {
	keys := make([]string, 0, len(o.keys))
	for key := range o.keys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Resolve parses a sort key or a comma separated list of keys. Unknown
// keys are dropped. It returns the keys that were applied, empty when the
// default ordering is used.
func (o Ordering) Resolve(raw string) ([]string, []clause.OrderByColumn) {
	var applied []string
	var columns []clause.OrderByColumn
	seen := map[string]bool{}

	for _, key := range strings.Split(raw, ",") {
		key = strings.ToLower(strings.TrimSpace(key))
		cols, ok := o.keys[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		applied = append(applied, key)
		columns = append(columns, cols...)
	}

	if len(columns) == 0 {
		columns = append(columns, o.defaults...)
	}
	return applied, append(columns, o.tieBreaker)
}

// Table aliases used by the orderings. DishTypeJoin is the alias GORM gives
// the joined dish type when dishes are queried with Joins("DishType").
const (
	CooksTable       = "cooks"
	DishesTable      = "dishes"
	DishTypesTable   = "dish_types"
	IngredientsTable = "ingredients"
	DishTypeJoin     = "DishType"
)

var (
	Cooks = NewOrdering(CooksTable,
		[]clause.OrderByColumn{Asc(CooksTable, "username")},
		map[string][]clause.OrderByColumn{
			"username_asc":    {Asc(CooksTable, "username")},
			"username_desc":   {Desc(CooksTable, "username")},
			"full_name_asc":   {Asc(CooksTable, "first_name"), Asc(CooksTable, "last_name")},
			"full_name_desc":  {Desc(CooksTable, "first_name"), Desc(CooksTable, "last_name")},
			"experience_asc":  {Asc(CooksTable, "years_of_experience")},
			"experience_desc": {Desc(CooksTable, "years_of_experience")},
		})

	Dishes = NewOrdering(DishesTable,
		[]clause.OrderByColumn{Asc(DishesTable, "name")},
		map[string][]clause.OrderByColumn{
			"name_asc":       {Asc(DishesTable, "name")},
			"name_desc":      {Desc(DishesTable, "name")},
			"price_asc":      {Asc(DishesTable, "price")},
			"price_desc":     {Desc(DishesTable, "price")},
			"dish_type_asc":  {Asc(DishTypeJoin, "name"), Asc(DishesTable, "name")},
			"dish_type_desc": {Desc(DishTypeJoin, "name"), Asc(DishesTable, "name")},
		})

	DishTypes = NewOrdering(DishTypesTable,
		[]clause.OrderByColumn{Asc(DishTypesTable, "name")},
		map[string][]clause.OrderByColumn{
			"name_asc":  {Asc(DishTypesTable, "name")},
			"name_desc": {Desc(DishTypesTable, "name")},
		})

	Ingredients = NewOrdering(IngredientsTable,
		[]clause.OrderByColumn{Asc(IngredientsTable, "name")},
		map[string][]clause.OrderByColumn{
			"name_asc":  {Asc(IngredientsTable, "name")},
			"name_desc": {Desc(IngredientsTable, "name")},
		})
)
