package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
)

// DefaultSort is applied when a request has no sort parameter: newest first.
const DefaultSort = "-createdAt"

// Kind tells Build how to convert filter values for a field
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInt
	KindBool
	KindTime
	KindStringArray
)

// Field is one attribute a client can filter, sort or select by its public name.
// Column is the SQL used in WHERE and ORDER BY; Expr is the SQL used in the
// projection. Either may be empty to disable that use.
type Field struct {
	Name   string
	Column string
	Expr   string
	Kind   Kind
}

// Col declares a plain table column usable everywhere
func Col(name, column string, kind Kind) Field {
	return Field{Name: name, Column: column, Expr: column, Kind: kind}
}

// Computed declares a selectable expression that cannot be filtered or sorted
func Computed(name, expr string) Field {
	return Field{Name: name, Expr: expr}
}

// FilterOnly declares a filterable/sortable column that is not returned by itself
func FilterOnly(name, column string, kind Kind) Field {
	return Field{Name: name, Column: column, Kind: kind}
}

// Schema describes how one collection is queried
type Schema struct {
	Table    string
	IDField  string
	fields   []Field
	byName   map[string]Field
	populate []Field
}

// NewSchema builds a schema for table. The first field is treated as the id and
// is always selected.
func NewSchema(table string, fields ...Field) *Schema {
	s := &Schema{Table: table, fields: fields, byName: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.byName[f.Name] = f
	}
	if len(fields) > 0 {
		s.IDField = fields[0].Name
	}
	return s
}

// WithPopulate adds related data that is embedded into every listed row
func (s *Schema) WithPopulate(fields ...Field) *Schema {
	s.populate = append(s.populate, fields...)
	return s
}

// Field looks up a field by its public name
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Build compiles p into a page query and a matching count query. Extra
// conditions in scopes are ANDed with the request's filters.
func (s *Schema) Build(sb squirrel.StatementBuilderType, p *Params, scopes ...squirrel.Sqlizer) (list squirrel.SelectBuilder, count squirrel.SelectBuilder, err error) {
	where := squirrel.And{}
	for _, f := range p.Filters {
		cond, err := s.condition(f)
		if err != nil {
			return list, count, err
		}
		where = append(where, cond)
	}
	where = append(where, scopes...)

	columns, err := s.projection(p.Select)
	if err != nil {
		return list, count, err
	}

	orderBy, err := s.ordering(p.Sort)
	if err != nil {
		return list, count, err
	}

	offset, limit := p.Offset(), uint64(p.Limit)

	list = sb.Select(columns...).From(s.Table).OrderBy(orderBy...).Offset(offset).Limit(limit)
	count = sb.Select("COUNT(*)").From(s.Table)
	if len(where) > 0 {
		list = list.Where(where)
		count = count.Where(where)
	}

	return list, count, nil
}

func (s *Schema) condition(f Filter) (squirrel.Sqlizer, error) {
	field, ok := s.byName[f.Field]
	if !ok || field.Column == "" {
		return nil, fmt.Errorf("%w: unknown filter field %q", apperrors.ErrValidationFailed, f.Field)
	}
	col := field.Column

	if field.Kind == KindStringArray {
		switch f.Op {
		case OpEq:
			if len(f.Values) == 1 {
				return squirrel.Expr("? = ANY("+col+")", f.Values[0]), nil
			}
			return squirrel.Expr(col+" && ?", f.Values), nil
		case OpIn:
			return squirrel.Expr(col+" && ?", f.Values), nil
		default:
			return nil, fmt.Errorf("%w: operator %q is not supported on %q", apperrors.ErrValidationFailed, f.Op, f.Field)
		}
	}

	vals, err := convertValues(field, f.Values)
	if err != nil {
		return nil, err
	}

	switch f.Op {
	case OpEq:
		if len(vals) == 1 {
			return squirrel.Eq{col: vals[0]}, nil
		}
		return squirrel.Eq{col: vals}, nil
	case OpIn:
		return squirrel.Eq{col: vals}, nil
	}

	if field.Kind == KindBool {
		return nil, fmt.Errorf("%w: operator %q is not supported on %q", apperrors.ErrValidationFailed, f.Op, f.Field)
	}

	// comparisons take a single operand
	switch f.Op {
	case OpGt:
		return squirrel.Gt{col: vals[0]}, nil
	case OpGte:
		return squirrel.GtOrEq{col: vals[0]}, nil
	case OpLt:
		return squirrel.Lt{col: vals[0]}, nil
	case OpLte:
		return squirrel.LtOrEq{col: vals[0]}, nil
	}

	return nil, fmt.Errorf("%w: unsupported operator %q", apperrors.ErrValidationFailed, f.Op)
}

func (s *Schema) projection(selected []string) ([]string, error) {
	var fields []Field
	if len(selected) == 0 {
		for _, f := range s.fields {
			if f.Expr != "" {
				fields = append(fields, f)
			}
		}
	} else {
		seen := map[string]bool{}
		if id, ok := s.byName[s.IDField]; ok {
			fields = append(fields, id)
			seen[id.Name] = true
		}
		for _, name := range selected {
			if seen[name] {
				continue
			}
			f, ok := s.byName[name]
			if !ok || f.Expr == "" {
				return nil, fmt.Errorf("%w: unknown select field %q", apperrors.ErrValidationFailed, name)
			}
			fields = append(fields, f)
			seen[name] = true
		}
	}
	fields = append(fields, s.populate...)

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = fmt.Sprintf(`%s AS "%s"`, f.Expr, f.Name)
	}
	return columns, nil
}

func (s *Schema) ordering(keys []SortKey) ([]string, error) {
	if len(keys) == 0 {
		keys = []SortKey{{Field: strings.TrimPrefix(DefaultSort, "-"), Desc: strings.HasPrefix(DefaultSort, "-")}}
	}

	orderBy := make([]string, 0, len(keys))
	for _, k := range keys {
		f, ok := s.byName[k.Field]
		if !ok || f.Column == "" || f.Kind == KindStringArray {
			return nil, fmt.Errorf("%w: cannot sort by %q", apperrors.ErrValidationFailed, k.Field)
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		orderBy = append(orderBy, f.Column+" "+dir)
	}

	// rows with equal sort values keep a stable order across pages
	if id, ok := s.byName[s.IDField]; ok && id.Column != "" && !sortsBy(keys, id.Name) {
		dir := "ASC"
		if keys[len(keys)-1].Desc {
			dir = "DESC"
		}
		orderBy = append(orderBy, id.Column+" "+dir)
	}
	return orderBy, nil
}

func sortsBy(keys []SortKey, name string) bool {
	for _, k := range keys {
		if k.Field == name {
			return true
		}
	}
	return false
}

func convertValues(field Field, raw []string) ([]interface{}, error) {
	out := make([]interface{}, len(raw))
	for i, v := range raw {
		converted, err := convertValue(field.Kind, v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid value %q for %q", apperrors.ErrValidationFailed, v, field.Name)
		}
		out[i] = converted
	}
	return out, nil
}

func convertValue(kind Kind, v string) (interface{}, error) {
	switch kind {
	case KindNumber:
		return strconv.ParseFloat(v, 64)
	case KindInt:
		return strconv.ParseInt(v, 10, 64)
	case KindBool:
		return strconv.ParseBool(v)
	case KindTime:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", v)
	default:
		return v, nil
	}
}
