package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/devcamper/internal/db"
	"github.com/yigit/devcamper/internal/pkg/logger"
	"github.com/yigit/devcamper/internal/pkg/query"
)

// findDocuments runs an advanced-results query and returns one page of rows as
// JSON-ready maps plus the number of rows matching the filters.
func findDocuments(ctx context.Context, q db.DBTX, sb squirrel.StatementBuilderType, schema *query.Schema, p *query.Params, scopes ...squirrel.Sqlizer) ([]map[string]interface{}, int64, error) {
	list, count, err := schema.Build(sb, p, scopes...)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("table", schema.Table).Msg("Error counting documents")
		return nil, 0, fmt.Errorf("error counting %s: %w", schema.Table, err)
	}

	sql, args, err := list.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", schema.Table).Msg("Error executing list query")
		return nil, 0, fmt.Errorf("error listing %s: %w", schema.Table, err)
	}

	docs, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, 0, fmt.Errorf("error reading %s rows: %w", schema.Table, err)
	}

	return docs, total, nil
}
