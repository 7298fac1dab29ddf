package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/db"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/dberrors"
	"github.com/yigit/devcamper/internal/pkg/logger"
	"github.com/yigit/devcamper/internal/pkg/query"
)

var courseColumns = []string{
	"id", "title", "description", "weeks", "tuition", "minimum_skill",
	"scholarship_available", "created_at", "bootcamp_id", "user_id",
}

// CourseRepository handles course database operations. Every write also
// refreshes the owning bootcamp's average cost in the same transaction.
type CourseRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(conn db.DBTX) *CourseRepository {
	return &CourseRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCourse(row pgx.Row, extra ...interface{}) (*models.Course, error) {
	c := &models.Course{}
	dest := []interface{}{
		&c.ID, &c.Title, &c.Description, &c.Weeks, &c.Tuition, &c.MinimumSkill,
		&c.ScholarshipAvailable, &c.CreatedAt, &c.BootcampID, &c.UserID,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return c, nil
}

// refreshAverageCost sets a bootcamp's average cost to the mean tuition of its
// courses rounded up to the nearest 10, or NULL when it has none.
func (r *CourseRepository) refreshAverageCost(ctx context.Context, tx pgx.Tx, bootcampID int64) error {
	sql, args, err := r.sb.Update("bootcamps").
		Set("average_cost", squirrel.Expr("(SELECT CEIL(AVG(tuition) / 10) * 10 FROM courses WHERE bootcamp_id = ?)", bootcampID)).
		Where(squirrel.Eq{"id": bootcampID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build average cost query: %w", err)
	}

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("bootcampID", bootcampID).Msg("Error refreshing average cost")
		return fmt.Errorf("error refreshing average cost: %w", err)
	}
	return nil
}

// Create inserts a course and fills in its generated fields
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("title", "description", "weeks", "tuition", "minimum_skill", "scholarship_available", "bootcamp_id", "user_id").
		Values(c.Title, c.Description, c.Weeks, c.Tuition, c.MinimumSkill, c.ScholarshipAvailable, c.BootcampID, c.UserID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
			if dberrors.IsForeignKeyError(err) {
				return apperrors.ErrResourceNotFound
			}
			if dberrors.IsCheckViolation(err) {
				return fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, err.Error())
			}
			logger.Error().Err(err).Int64("bootcampID", c.BootcampID).Msg("Error executing create course query")
			return fmt.Errorf("error creating course: %w", err)
		}
		return r.refreshAverageCost(ctx, tx, c.BootcampID)
	})
}

// GetByID retrieves a course with a summary of its bootcamp
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	cols := make([]string, 0, len(courseColumns)+3)
	for _, col := range courseColumns {
		cols = append(cols, "c."+col)
	}
	cols = append(cols, "b.id", "b.name", "b.description")

	sql, args, err := r.sb.Select(cols...).
		From("courses c").
		Join("bootcamps b ON b.id = c.bootcamp_id").
		Where(squirrel.Eq{"c.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	summary := &models.BootcampSummary{}
	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...), &summary.ID, &summary.Name, &summary.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	c.Bootcamp = summary

	return c, nil
}

// ListByBootcamp returns every course of a bootcamp, oldest first
func (r *CourseRepository) ListByBootcamp(ctx context.Context, bootcampID int64) ([]*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"bootcamp_id": bootcampID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("bootcampID", bootcampID).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

// Update applies the non-nil fields of patch and returns the updated course
func (r *CourseRepository) Update(ctx context.Context, id int64, patch *models.CoursePatch) (*models.Course, error) {
	values := map[string]interface{}{}
	if patch.Title != nil {
		values["title"] = *patch.Title
	}
	if patch.Description != nil {
		values["description"] = *patch.Description
	}
	if patch.Weeks != nil {
		values["weeks"] = *patch.Weeks
	}
	if patch.Tuition != nil {
		values["tuition"] = *patch.Tuition
	}
	if patch.MinimumSkill != nil {
		values["minimum_skill"] = *patch.MinimumSkill
	}
	if patch.ScholarshipAvailable != nil {
		values["scholarship_available"] = *patch.ScholarshipAvailable
	}

	if len(values) == 0 {
		return r.GetByID(ctx, id)
	}

	sql, args, err := r.sb.Update("courses").
		SetMap(values).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(courseColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update course query: %w", err)
	}

	var course *models.Course
	err = db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		c, err := scanCourse(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrResourceNotFound
			}
			if dberrors.IsCheckViolation(err) {
				return fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, err.Error())
			}
			logger.Error().Err(err).Int64("courseID", id).Msg("Error executing update course query")
			return fmt.Errorf("error updating course: %w", err)
		}
		course = c

		if patch.Tuition == nil {
			return nil
		}
		return r.refreshAverageCost(ctx, tx, c.BootcampID)
	})
	if err != nil {
		return nil, err
	}

	return course, nil
}

// Delete removes a course and refreshes its bootcamp's average cost
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING bootcamp_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var bootcampID int64
		if err := tx.QueryRow(ctx, sql, args...).Scan(&bootcampID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrResourceNotFound
			}
			logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
			return fmt.Errorf("error deleting course: %w", err)
		}
		return r.refreshAverageCost(ctx, tx, bootcampID)
	})
}

// Find lists courses for the advanced results middleware
func (r *CourseRepository) Find(ctx context.Context, p *query.Params) ([]map[string]interface{}, int64, error) {
	return findDocuments(ctx, r.db, r.sb, CourseSchema, p)
}
