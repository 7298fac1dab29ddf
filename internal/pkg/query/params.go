// Package query turns list-endpoint query strings into filtered, projected,
// sorted and paginated SQL.
//
// A request such as
//
//	GET /api/v1/bootcamps?averageCost[lte]=10000&careers[in]=Business&select=name,averageCost&sort=-averageCost&page=2&limit=10
//
// is parsed into Params by Parse and then compiled against a resource Schema
// by Schema.Build.
package query

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/helpers"
)

// Operator is a comparison applied by a filter
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// reserved query keys that never become filters
var reservedKeys = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

var operators = map[string]Operator{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// field or field[op]
var keyPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_.]*)(?:\[([A-Za-z]+)\])?$`)

// Filter is one field comparison taken from the query string
type Filter struct {
	Field  string
	Op     Operator
	Values []string
}

// SortKey orders results by one field
type SortKey struct {
	Field string
	Desc  bool
}

// Params is the parsed form of a list request
type Params struct {
	Filters []Filter
	Select  []string
	Sort    []SortKey
	Page    int
	Limit   int
}

// Offset returns the number of rows to skip for the current page
func (p *Params) Offset() uint64 {
	offset, _ := helpers.CalculateOffsetLimit(p.Page, p.Limit)
	return offset
}

// Parse splits values into reserved keys and filters. It only checks syntax;
// field names are resolved against a Schema in Build.
func Parse(values url.Values) (*Params, error) {
	p := &Params{}
	p.Page, p.Limit = helpers.ParsePaginationParams(values.Get("page"), values.Get("limit"))

	if sel := values.Get("select"); sel != "" {
		p.Select = splitList(sel)
	}

	if s := values.Get("sort"); s != "" {
		for _, name := range splitList(s) {
			key := SortKey{Field: name}
			if strings.HasPrefix(name, "-") {
				key = SortKey{Field: strings.TrimPrefix(name, "-"), Desc: true}
			}
			if key.Field == "" {
				continue
			}
			p.Sort = append(p.Sort, key)
		}
	}

	// map iteration order is random; keep the generated SQL stable
	keys := make([]string, 0, len(values))
	for key := range values {
		if !reservedKeys[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := keyPattern.FindStringSubmatch(key)
		if m == nil {
			return nil, fmt.Errorf("%w: malformed filter %q", apperrors.ErrValidationFailed, key)
		}

		op := OpEq
		if m[2] != "" {
			var ok bool
			op, ok = operators[strings.ToLower(m[2])]
			if !ok {
				return nil, fmt.Errorf("%w: unsupported operator %q on %q", apperrors.ErrValidationFailed, m[2], m[1])
			}
		}

		var vals []string
		for _, v := range values[key] {
			if op == OpIn {
				vals = append(vals, splitList(v)...)
				continue
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%w: filter %q has no value", apperrors.ErrValidationFailed, key)
		}

		p.Filters = append(p.Filters, Filter{Field: m[1], Op: op, Values: vals})
	}

	return p, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
