package todo

import (
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm/clause"

	domain "github.com/yungbote/todo-backend/internal/domain/todo"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSortBy   = "createdAt"

	// MaxPageNumber keeps the row offset of a full-size page within int.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

// PageQuery selects one page of todos. SortColumn must come from ParseSortField.
type PageQuery struct {
	PageNumber int
	PageSize   int
	SortColumn string
	Descending bool
	Search     string
}

func (q PageQuery) offset() int {
	return (q.PageNumber - 1) * q.PageSize
}

var sortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"description": "description",
	"completed":   "completed",
	"deadline":    "deadline",
	"priority":    "priority",
	"stage":       "stage",
	"createdby":   "created_by",
	"createdat":   "created_at",
}

// Enum columns are stored as text but sort by declaration order.
var enumRanks = map[string][]string{
	"priority": {string(domain.PriorityLow), string(domain.PriorityMedium), string(domain.PriorityHigh)},
	"stage":    {string(domain.StageTodo), string(domain.StageInProgress), string(domain.StageDone)},
}

func (q PageQuery) orderColumn() clause.OrderByColumn {
	ranks, ok := enumRanks[q.SortColumn]
	if !ok {
		return clause.OrderByColumn{Column: clause.Column{Name: q.SortColumn}, Desc: q.Descending}
	}
	var b strings.Builder
	b.WriteString("CASE " + q.SortColumn)
	for i, v := range ranks {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(ranks))
	return clause.OrderByColumn{Column: clause.Column{Name: b.String(), Raw: true}, Desc: q.Descending}
}

// ParseSortField maps a caller supplied field ("createdAt", "created_at",
// "CreatedAt") to its column. Unknown fields are rejected.
func ParseSortField(raw string) (string, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""))
	if key == "" {
		key = strings.ToLower(DefaultSortBy)
	}
	col, ok := sortColumns[key]
	if !ok {
		return "", fmt.Errorf("unsupported sort field %q", raw)
	}
	return col, nil
}

// likePattern builds a case-folded substring pattern with LIKE wildcards escaped.
func likePattern(search string) string {
	s := strings.ToLower(search)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return "%" + s + "%"
}
