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

var bootcampColumns = []string{
	"id", "name", "slug", "description", "website", "phone", "email",
	"location_lng", "location_lat", "formatted_address", "street", "city", "state", "zipcode", "country",
	"careers", "average_rating", "average_cost", "photo",
	"housing", "job_assistance", "job_guarantee", "accept_gi", "created_at", "user_id",
}

// BootcampRepository handles bootcamp database operations
type BootcampRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewBootcampRepository creates a new BootcampRepository
func NewBootcampRepository(conn db.DBTX) *BootcampRepository {
	return &BootcampRepository{
		db: conn,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanBootcamp(row pgx.Row) (*models.Bootcamp, error) {
	b := &models.Bootcamp{}
	var (
		lng, lat                                 *float64
		formatted, street, city, state, zip, cty string
	)
	err := row.Scan(
		&b.ID, &b.Name, &b.Slug, &b.Description, &b.Website, &b.Phone, &b.Email,
		&lng, &lat, &formatted, &street, &city, &state, &zip, &cty,
		&b.Careers, &b.AverageRating, &b.AverageCost, &b.Photo,
		&b.Housing, &b.JobAssistance, &b.JobGuarantee, &b.AcceptGi, &b.CreatedAt, &b.UserID,
	)
	if err != nil {
		return nil, err
	}

	if lng != nil && lat != nil {
		b.Location = models.NewPoint(*lng, *lat)
		b.Location.FormattedAddress = formatted
		b.Location.Street = street
		b.Location.City = city
		b.Location.State = state
		b.Location.Zipcode = zip
		b.Location.Country = cty
	}

	return b, nil
}

// locationValues flattens a location into its columns; a nil location clears them
func locationValues(loc *models.GeoLocation) map[string]interface{} {
	if loc == nil {
		return map[string]interface{}{
			"location_lng": nil, "location_lat": nil, "formatted_address": "",
			"street": "", "city": "", "state": "", "zipcode": "", "country": "",
		}
	}
	return map[string]interface{}{
		"location_lng":      loc.Longitude(),
		"location_lat":      loc.Latitude(),
		"formatted_address": loc.FormattedAddress,
		"street":            loc.Street,
		"city":              loc.City,
		"state":             loc.State,
		"zipcode":           loc.Zipcode,
		"country":           loc.Country,
	}
}

func bootcampWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateKeyError(err):
		return apperrors.ErrDuplicateKey
	case dberrors.IsForeignKeyError(err):
		return apperrors.ErrInvalidReference
	case dberrors.IsCheckViolation(err):
		return fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, err.Error())
	}
	return nil
}

// Create inserts a bootcamp and fills in its generated fields
func (r *BootcampRepository) Create(ctx context.Context, b *models.Bootcamp) error {
	if b.Photo == "" {
		b.Photo = models.DefaultPhoto
	}

	values := map[string]interface{}{
		"name":           b.Name,
		"slug":           b.Slug,
		"description":    b.Description,
		"website":        b.Website,
		"phone":          b.Phone,
		"email":          b.Email,
		"careers":        b.Careers,
		"average_rating": b.AverageRating,
		"photo":          b.Photo,
		"housing":        b.Housing,
		"job_assistance": b.JobAssistance,
		"job_guarantee":  b.JobGuarantee,
		"accept_gi":      b.AcceptGi,
		"user_id":        b.UserID,
	}
	for k, v := range locationValues(b.Location) {
		values[k] = v
	}

	sql, args, err := r.sb.Insert("bootcamps").
		SetMap(values).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create bootcamp SQL")
		return fmt.Errorf("failed to build create bootcamp query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		if mapped := bootcampWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("name", b.Name).Msg("Error executing create bootcamp query")
		return fmt.Errorf("error creating bootcamp: %w", err)
	}

	return nil
}

// GetByID retrieves a bootcamp by ID
func (r *BootcampRepository) GetByID(ctx context.Context, id int64) (*models.Bootcamp, error) {
	sql, args, err := r.sb.Select(bootcampColumns...).
		From("bootcamps").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get bootcamp query: %w", err)
	}

	b, err := scanBootcamp(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Int64("bootcampID", id).Msg("Error scanning bootcamp row")
		return nil, fmt.Errorf("error getting bootcamp by ID: %w", err)
	}

	return b, nil
}

// Update applies the non-nil fields of patch and returns the updated bootcamp
func (r *BootcampRepository) Update(ctx context.Context, id int64, patch *models.BootcampPatch) (*models.Bootcamp, error) {
	values := map[string]interface{}{}
	setIf := func(col string, v interface{}, ok bool) {
		if ok {
			values[col] = v
		}
	}
	setIf("name", patch.Name, patch.Name != nil)
	setIf("slug", patch.Slug, patch.Slug != nil)
	setIf("description", patch.Description, patch.Description != nil)
	setIf("website", patch.Website, patch.Website != nil)
	setIf("phone", patch.Phone, patch.Phone != nil)
	setIf("email", patch.Email, patch.Email != nil)
	setIf("careers", patch.Careers, patch.Careers != nil)
	setIf("average_rating", patch.AverageRating, patch.AverageRating != nil)
	setIf("housing", patch.Housing, patch.Housing != nil)
	setIf("job_assistance", patch.JobAssistance, patch.JobAssistance != nil)
	setIf("job_guarantee", patch.JobGuarantee, patch.JobGuarantee != nil)
	setIf("accept_gi", patch.AcceptGi, patch.AcceptGi != nil)
	if patch.Location != nil {
		for k, v := range locationValues(patch.Location) {
			values[k] = v
		}
	}

	if len(values) == 0 {
		return r.GetByID(ctx, id)
	}

	sql, args, err := r.sb.Update("bootcamps").
		SetMap(values).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(bootcampColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update bootcamp query: %w", err)
	}

	b, err := scanBootcamp(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		if mapped := bootcampWriteError(err); mapped != nil {
			return nil, mapped
		}
		logger.Error().Err(err).Int64("bootcampID", id).Msg("Error executing update bootcamp query")
		return nil, fmt.Errorf("error updating bootcamp: %w", err)
	}

	return b, nil
}

// UpdatePhoto stores the file name of a bootcamp's photo
func (r *BootcampRepository) UpdatePhoto(ctx context.Context, id int64, photo string) error {
	sql, args, err := r.sb.Update("bootcamps").
		Set("photo", photo).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update photo query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("bootcampID", id).Msg("Error executing update photo query")
		return fmt.Errorf("error updating bootcamp photo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}

// Delete removes a bootcamp; its courses go with it
func (r *BootcampRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("bootcamps").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete bootcamp query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("bootcampID", id).Msg("Error executing delete bootcamp query")
		return fmt.Errorf("error deleting bootcamp: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}

// CountByUser returns how many bootcamps a user owns
func (r *BootcampRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("bootcamps").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count bootcamps query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting bootcamps: %w", err)
	}
	return count, nil
}

// FindWithinRadius returns bootcamps whose location lies within radius
// (an angle in radians on the sphere) of the given point.
func (r *BootcampRepository) FindWithinRadius(ctx context.Context, lng, lat, radius float64) ([]*models.Bootcamp, error) {
	// spherical law of cosines; LEAST guards acos against rounding above 1
	distance := squirrel.Expr(`acos(LEAST(1.0,
		cos(radians(?)) * cos(radians(location_lat)) * cos(radians(location_lng) - radians(?)) +
		sin(radians(?)) * sin(radians(location_lat)))) <= ?`, lat, lng, lat, radius)

	sql, args, err := r.sb.Select(bootcampColumns...).
		From("bootcamps").
		Where(squirrel.NotEq{"location_lat": nil}).
		Where(distance).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build radius query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing radius query")
		return nil, fmt.Errorf("error querying bootcamps in radius: %w", err)
	}
	defer rows.Close()

	bootcamps := []*models.Bootcamp{}
	for rows.Next() {
		b, err := scanBootcamp(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning bootcamp row: %w", err)
		}
		bootcamps = append(bootcamps, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bootcamp rows: %w", err)
	}

	return bootcamps, nil
}

// Find lists bootcamps for the advanced results middleware
func (r *BootcampRepository) Find(ctx context.Context, p *query.Params) ([]map[string]interface{}, int64, error) {
	return findDocuments(ctx, r.db, r.sb, BootcampSchema, p)
}
