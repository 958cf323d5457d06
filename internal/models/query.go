package models

import "strings"

// LabelAll is the sentinel meaning "no label filter".
const LabelAll = "all"

// DefaultPageSize is applied when the caller does not supply a limit.
const DefaultPageSize = 20

// ListQuery describes one paginated listing request.
type ListQuery struct {
	Page   int
	Limit  int
	Label  string
	Search string
}

// Normalize clamps the query to valid values: page >= 1, limit > 0.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	return q
}

// escapeLike escapes the LIKE metacharacters in user-supplied text so it
// matches literally. Pairs with ESCAPE '\' on the condition.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterClause builds the WHERE clause and bind values for a listing query.
//
// The label filter matches the quoted tag inside the serialized blob, so
// "horror" matches the tag horror but never the tag "horror movie". The
// search filter is a case-insensitive substring match on the title. Both
// compose with AND, and both treat the user text as literal characters, not
// LIKE patterns.
func (q ListQuery) filterClause() (string, []interface{}) {
	var conds []string
	var args []interface{}

	if q.Label != "" && q.Label != LabelAll {
		conds = append(conds, `labels LIKE ? ESCAPE '\'`)
		args = append(args, `%"`+escapeLike(q.Label)+`"%`)
	}
	if q.Search != "" {
		conds = append(conds, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q.Search))+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// paginate derives the pagination envelope for a total match count. An empty
// result set reports zero total pages, consistent with hasNextPage=false.
func (q ListQuery) paginate(total int) Pagination {
	totalPages := (total + q.Limit - 1) / q.Limit
	return Pagination{
		Page:        q.Page,
		Limit:       q.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: q.Page < totalPages,
		HasPrevPage: q.Page > 1,
	}
}
