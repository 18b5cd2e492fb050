// Logic for interacting with the "vacancies" table.
//
// Every function runs against a Querier borrowed by the caller, usually a
// connection checked out of the pool for the duration of one API operation.
// All store errors are translated here: an absent vacancy is a nil result
// from Get and false from Delete, everything else is a *dberr.Error.
package vacancies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Shyp/joblog/models"
	"github.com/Shyp/joblog/models/dberr"
	"github.com/google/uuid"
)

// Querier is the subset of *sql.Conn, *sql.DB and *sql.Tx used here.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	listQuery = fmt.Sprintf(`-- vacancies.List
SELECT %s
FROM vacancies
ORDER BY date_created DESC NULLS LAST, pk DESC`, fields())

	getQuery = fmt.Sprintf(`-- vacancies.Get
SELECT %s
FROM vacancies
WHERE uid = $1`, fields())

	insertQuery = fmt.Sprintf(`-- vacancies.Create
INSERT INTO vacancies (%s, date_created)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
RETURNING %s`, insertFields(), fields())

	updateQuery = fmt.Sprintf(`-- vacancies.Update
UPDATE vacancies
SET status = COALESCE($2, status),
	date_modified = now()
WHERE uid = $1
RETURNING %s`, fields())

	deleteQuery = `-- vacancies.Delete
DELETE FROM vacancies WHERE uid = $1`

	countsByStatusQuery = `-- vacancies.CountsByStatus
SELECT COALESCE(status, ''), count(*) FROM vacancies GROUP BY status`
)

// newUID generates the public identifier of a new vacancy. Tests replace it.
var newUID = func() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// List returns every vacancy, most recently created first. The slice is empty,
// not nil, when the table has no rows.
func List(ctx context.Context, q Querier) ([]*models.Vacancy, error) {
	rows, err := q.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, dberr.GetError(err)
	}
	defer rows.Close()
	vacancies := make([]*models.Vacancy, 0)
	for rows.Next() {
		v := new(models.Vacancy)
		if err := rows.Scan(args(v)...); err != nil {
			return nil, dberr.GetError(err)
		}
		vacancies = append(vacancies, v)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.GetError(err)
	}
	return vacancies, nil
}

// Get the vacancy with the given uid. If no vacancy has that uid, Get returns
// nil and a nil error.
func Get(ctx context.Context, q Querier, uid string) (*models.Vacancy, error) {
	v := new(models.Vacancy)
	err := q.QueryRowContext(ctx, getQuery, uid).Scan(args(v)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.GetError(err)
	}
	return v, nil
}

// GetRetry attempts to get the vacancy `attempts` times before giving up.
// An absent vacancy is not retried.
func GetRetry(ctx context.Context, q Querier, uid string, attempts uint8) (v *models.Vacancy, err error) {
	for i := uint8(0); i < attempts; i++ {
		v, err = Get(ctx, q, uid)
		if err == nil || dberr.IsResourceExhaustion(err) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, dberr.GetError(ctx.Err())
		case <-time.After(50 * time.Millisecond):
		}
	}
	return
}

// Create inserts a new vacancy with a freshly generated uid and returns the
// row as stored. The status defaults to models.StatusCreated.
func Create(ctx context.Context, q Querier, input models.VacancyInput) (*models.Vacancy, error) {
	uid, err := newUID()
	if err != nil {
		return nil, dberr.GetError(fmt.Errorf("could not generate a vacancy uid: %w", err))
	}
	status := input.Status
	if status == nil {
		status = models.String(models.StatusCreated)
	}
	v := new(models.Vacancy)
	err = q.QueryRowContext(ctx, insertQuery,
		uid,
		input.CompanyLogo,
		input.Company,
		input.Title,
		input.Description,
		input.Location,
		input.WorkplaceType,
		input.URL,
		input.CompanyURL,
		input.ExperienceLevel,
		input.ContractType,
		status,
	).Scan(args(v)...)
	if err != nil {
		return nil, dberr.GetError(err)
	}
	return v, nil
}

// Update applies m to the vacancy with uid m.UID and returns the updated row.
// The store sets date_modified. Unlike Get and Delete, updating a vacancy that
// does not exist is an error; it wraps sql.ErrNoRows.
func Update(ctx context.Context, q Querier, m models.VacancyMutation) (*models.Vacancy, error) {
	v := new(models.Vacancy)
	err := q.QueryRowContext(ctx, updateQuery, m.UID, m.Status).Scan(args(v)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &dberr.Error{
			Kind:    dberr.KindStore,
			Message: fmt.Sprintf("No vacancy found with uid %s", m.UID),
			Table:   "vacancies",
			Err:     err,
		}
	}
	if err != nil {
		return nil, dberr.GetError(err)
	}
	return v, nil
}

// Delete deletes the vacancy with the given uid. It returns true if the
// vacancy was deleted and false if no vacancy has that uid.
func Delete(ctx context.Context, q Querier, uid string) (bool, error) {
	res, err := q.ExecContext(ctx, deleteQuery, uid)
	if err != nil {
		return false, dberr.GetError(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, dberr.GetError(err)
	}
	switch rows {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		// The unique index on uid should make this impossible.
		return false, &dberr.Error{
			Kind:    dberr.KindStore,
			Message: fmt.Sprintf("Multiple rows (%d) deleted for vacancy %s, please investigate", rows, uid),
			Table:   "vacancies",
		}
	}
}

// CountsByStatus returns the number of vacancies with each status. Vacancies
// without a status are counted under the empty string.
func CountsByStatus(ctx context.Context, q Querier) (map[string]int64, error) {
	rows, err := q.QueryContext(ctx, countsByStatusQuery)
	if err != nil {
		return nil, dberr.GetError(err)
	}
	defer rows.Close()
	m := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, dberr.GetError(err)
		}
		m[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.GetError(err)
	}
	return m, nil
}

func insertFields() string {
	return `uid,
	company_logo,
	company,
	title,
	description,
	location,
	workplace_type,
	url,
	company_url,
	experience_level,
	contract_type,
	status`
}

func fields() string {
	return `pk,
	uid,
	company_logo,
	company,
	title,
	description,
	location,
	workplace_type,
	url,
	company_url,
	date_created,
	date_modified,
	experience_level,
	contract_type,
	status`
}

func args(v *models.Vacancy) []interface{} {
	return []interface{}{
		&v.PK,
		&v.UID,
		&v.CompanyLogo,
		&v.Company,
		&v.Title,
		&v.Description,
		&v.Location,
		&v.WorkplaceType,
		&v.URL,
		&v.CompanyURL,
		&v.DateCreated,
		&v.DateModified,
		&v.ExperienceLevel,
		&v.ContractType,
		&v.Status,
	}
}
