package query

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/helpers"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func testSchema() *Schema {
	return NewSchema("bootcamps",
		Col("id", "id", KindInt),
		Col("name", "name", KindString),
		Col("averageCost", "average_cost", KindNumber),
		Col("careers", "careers", KindStringArray),
		Col("housing", "housing", KindBool),
		Col("createdAt", "created_at", KindTime),
		FilterOnly("location.state", "state", KindString),
	)
}

func mustParse(t *testing.T, raw string) *Params {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	p, err := Parse(values)
	require.NoError(t, err)
	return p
}

func TestParse(t *testing.T) {
	p := mustParse(t, "averageCost[lte]=10000&careers[in]=Business,UI/UX&select=name,averageCost&sort=-averageCost,name&page=2&limit=10")

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, []string{"name", "averageCost"}, p.Select)
	assert.Equal(t, []SortKey{{Field: "averageCost", Desc: true}, {Field: "name"}}, p.Sort)

	require.Len(t, p.Filters, 2)
	assert.Equal(t, Filter{Field: "averageCost", Op: OpLte, Values: []string{"10000"}}, p.Filters[0])
	assert.Equal(t, Filter{Field: "careers", Op: OpIn, Values: []string{"Business", "UI/UX"}}, p.Filters[1])
}

func TestParseDefaults(t *testing.T) {
	p := mustParse(t, "")

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Empty(t, p.Filters)
	assert.Empty(t, p.Select)
	assert.Empty(t, p.Sort)
	assert.Equal(t, uint64(0), p.Offset())
}

func TestParseRejectsUnknownOperator(t *testing.T) {
	_, err := Parse(url.Values{"averageCost[regex]": {"1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	_, err = Parse(url.Values{"$where": {"1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
}

func TestBuildDefaults(t *testing.T) {
	list, count, err := testSchema().Build(psql, mustParse(t, ""))
	require.NoError(t, err)

	sql, args, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, `id AS "id"`)
	assert.Contains(t, sql, `average_cost AS "averageCost"`)
	assert.NotContains(t, sql, `"location.state"`)
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, sql, "LIMIT 25")
	assert.Empty(t, args)

	countSQL, _, err := count.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM bootcamps", countSQL)
}

func TestBuildFilters(t *testing.T) {
	p := mustParse(t, "averageCost[gte]=5000&averageCost[lt]=12000&housing=true&careers=Business&location.state=MA")

	list, count, err := testSchema().Build(psql, p)
	require.NoError(t, err)

	sql, args, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "average_cost >= $")
	assert.Contains(t, sql, "average_cost < $")
	assert.Contains(t, sql, "housing = $")
	assert.Contains(t, sql, "= ANY(careers)")
	assert.Contains(t, sql, "state = $")
	assert.ElementsMatch(t, []interface{}{5000.0, 12000.0, true, "Business", "MA"}, args)

	countSQL, countArgs, err := count.ToSql()
	require.NoError(t, err)
	assert.Contains(t, countSQL, "SELECT COUNT(*) FROM bootcamps WHERE")
	assert.Equal(t, args, countArgs)
}

func TestBuildInOperator(t *testing.T) {
	p := mustParse(t, "name[in]=Devworks,Codemasters&careers[in]=Business,Other")

	list, _, err := testSchema().Build(psql, p)
	require.NoError(t, err)

	sql, args, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "careers && $")
	assert.Contains(t, sql, "name IN ($")
	assert.Contains(t, args, []string{"Business", "Other"})
	assert.Contains(t, args, "Devworks")
	assert.Contains(t, args, "Codemasters")
}

func TestBuildSelectAlwaysIncludesID(t *testing.T) {
	list, _, err := testSchema().Build(psql, mustParse(t, "select=name"))
	require.NoError(t, err)

	sql, _, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, `SELECT id AS "id", name AS "name" FROM bootcamps`)
}

func TestBuildPopulate(t *testing.T) {
	s := testSchema().WithPopulate(Computed("courses", "'[]'::json"))

	list, _, err := s.Build(psql, mustParse(t, "select=name"))
	require.NoError(t, err)

	sql, _, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, `'[]'::json AS "courses"`)
}

func TestBuildSortAndPage(t *testing.T) {
	list, _, err := testSchema().Build(psql, mustParse(t, "sort=name,-averageCost&page=3&limit=10"))
	require.NoError(t, err)

	sql, _, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY name ASC, average_cost DESC, id DESC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 20")
}

func TestBuildSortTieBreaker(t *testing.T) {
	tests := []struct {
		sort     string
		expected string
	}{
		{"name", "ORDER BY name ASC, id ASC LIMIT"},
		{"-housing", "ORDER BY housing DESC, id DESC LIMIT"},
		{"-id", "ORDER BY id DESC LIMIT"},
		{"id,-name", "ORDER BY id ASC, name DESC LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			list, _, err := testSchema().Build(psql, mustParse(t, "sort="+tt.sort))
			require.NoError(t, err)

			sql, _, err := list.ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, tt.expected)
		})
	}
}

func TestBuildHugePageStaysInBigintRange(t *testing.T) {
	list, _, err := testSchema().Build(psql, mustParse(t, "page=92233720368547760&limit=100"))
	require.NoError(t, err)

	sql, _, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 100")
	assert.Contains(t, sql, fmt.Sprintf("OFFSET %d", uint64(helpers.MaxPage-1)*100))
}

func TestBuildScopes(t *testing.T) {
	list, count, err := testSchema().Build(psql, mustParse(t, ""), squirrel.Eq{"user_id": int64(7)})
	require.NoError(t, err)

	sql, args, err := list.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "user_id = $1")
	assert.Equal(t, []interface{}{int64(7)}, args)

	countSQL, _, err := count.ToSql()
	require.NoError(t, err)
	assert.Contains(t, countSQL, "user_id = $1")
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown filter", "password=secret"},
		{"unknown select", "select=name,password"},
		{"unknown sort", "sort=password"},
		{"sort by array", "sort=careers"},
		{"range on array", "careers[gt]=Business"},
		{"range on bool", "housing[gt]=true"},
		{"bad number", "averageCost[lte]=cheap"},
		{"bad bool", "housing=maybe"},
		{"bad time", "createdAt[gt]=yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := testSchema().Build(psql, mustParse(t, tt.query))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
		})
	}
}
