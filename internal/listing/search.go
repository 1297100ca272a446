package listing

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains matches rows where any of the columns contains term, ignoring case.
// LIKE wildcards in term match literally.
func Contains(term string, columns ...clause.Column) func(*gorm.DB) *gorm.DB {
	term = strings.TrimSpace(term)
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

		exprs := make([]clause.Expression, 0, len(columns))
		for _, column := range columns {
			exprs = append(exprs, clause.Expr{
				SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
				Vars: []interface{}{column, pattern},
			})
		}
		return db.Where(clause.Or(exprs...))
	}
}

// Column names a column of table for Contains
func Column(table, name string) clause.Column {
	return clause.Column{Table: table, Name: name}
}
