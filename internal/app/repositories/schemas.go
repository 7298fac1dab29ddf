package repositories

import "github.com/yigit/devcamper/internal/pkg/query"

// GeoJSON point built from the flattened location columns; NULL when never geocoded
const bootcampLocationExpr = `CASE WHEN location_lng IS NULL THEN NULL ELSE json_build_object(
	'type', 'Point',
	'coordinates', json_build_array(location_lng, location_lat),
	'formattedAddress', formatted_address,
	'street', street,
	'city', city,
	'state', state,
	'zipcode', zipcode,
	'country', country) END`

const bootcampCoursesExpr = `COALESCE((SELECT json_agg(json_build_object(
	'id', c.id,
	'title', c.title,
	'description', c.description,
	'weeks', c.weeks,
	'tuition', c.tuition,
	'minimumSkill', c.minimum_skill,
	'scholarshipAvailable', c.scholarship_available,
	'createdAt', c.created_at,
	'bootcampId', c.bootcamp_id,
	'user', c.user_id) ORDER BY c.created_at)
	FROM courses c WHERE c.bootcamp_id = bootcamps.id), '[]'::json)`

const courseBootcampExpr = `(SELECT json_build_object('id', b.id, 'name', b.name, 'description', b.description)
	FROM bootcamps b WHERE b.id = courses.bootcamp_id)`

// BootcampSchema lists what clients may filter, select and sort bootcamps by
var BootcampSchema = query.NewSchema("bootcamps",
	query.Col("id", "id", query.KindInt),
	query.Col("name", "name", query.KindString),
	query.Col("slug", "slug", query.KindString),
	query.Col("description", "description", query.KindString),
	query.Col("website", "website", query.KindString),
	query.Col("phone", "phone", query.KindString),
	query.Col("email", "email", query.KindString),
	query.Computed("location", bootcampLocationExpr),
	query.Col("careers", "careers", query.KindStringArray),
	query.Col("averageRating", "average_rating", query.KindNumber),
	query.Col("averageCost", "average_cost", query.KindNumber),
	query.Col("photo", "photo", query.KindString),
	query.Col("housing", "housing", query.KindBool),
	query.Col("jobAssistance", "job_assistance", query.KindBool),
	query.Col("jobGuarantee", "job_guarantee", query.KindBool),
	query.Col("acceptGi", "accept_gi", query.KindBool),
	query.Col("createdAt", "created_at", query.KindTime),
	query.Col("user", "user_id", query.KindInt),
	query.FilterOnly("location.city", "city", query.KindString),
	query.FilterOnly("location.state", "state", query.KindString),
	query.FilterOnly("location.zipcode", "zipcode", query.KindString),
).WithPopulate(query.Computed("courses", bootcampCoursesExpr))

// CourseSchema lists what clients may filter, select and sort courses by
var CourseSchema = query.NewSchema("courses",
	query.Col("id", "id", query.KindInt),
	query.Col("title", "title", query.KindString),
	query.Col("description", "description", query.KindString),
	query.Col("weeks", "weeks", query.KindString),
	query.Col("tuition", "tuition", query.KindNumber),
	query.Col("minimumSkill", "minimum_skill", query.KindString),
	query.Col("scholarshipAvailable", "scholarship_available", query.KindBool),
	query.Col("createdAt", "created_at", query.KindTime),
	query.Col("bootcampId", "bootcamp_id", query.KindInt),
	query.Col("user", "user_id", query.KindInt),
).WithPopulate(query.Computed("bootcamp", courseBootcampExpr))

// UserSchema never exposes the password hash
var UserSchema = query.NewSchema("users",
	query.Col("id", "id", query.KindInt),
	query.Col("name", "name", query.KindString),
	query.Col("email", "email", query.KindString),
	query.Col("role", "role", query.KindString),
	query.Col("createdAt", "created_at", query.KindTime),
)
