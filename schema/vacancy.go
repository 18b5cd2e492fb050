package schema

import (
	"time"

	"github.com/Shyp/joblog/models"
	graphql "github.com/graph-gophers/graphql-go"
)

// VacancyResolver resolves the fields of the Vacancy type. The store's
// surrogate key has no field.
type VacancyResolver struct {
	v *models.Vacancy
}

func (r *VacancyResolver) UID() string              { return r.v.UID }
func (r *VacancyResolver) CompanyLogo() string      { return r.v.CompanyLogo }
func (r *VacancyResolver) Company() string          { return r.v.Company }
func (r *VacancyResolver) Title() string            { return r.v.Title }
func (r *VacancyResolver) Description() string      { return r.v.Description }
func (r *VacancyResolver) Location() string         { return r.v.Location }
func (r *VacancyResolver) WorkplaceType() *string   { return r.v.WorkplaceType }
func (r *VacancyResolver) URL() string              { return r.v.URL }
func (r *VacancyResolver) CompanyURL() string       { return r.v.CompanyURL }
func (r *VacancyResolver) ExperienceLevel() *string { return r.v.ExperienceLevel }
func (r *VacancyResolver) ContractType() *string    { return r.v.ContractType }
func (r *VacancyResolver) Status() *string          { return r.v.Status }

func (r *VacancyResolver) DateCreated() *graphql.Time  { return toTime(r.v.DateCreated) }
func (r *VacancyResolver) DateModified() *graphql.Time { return toTime(r.v.DateModified) }

func toTime(t *time.Time) *graphql.Time {
	if t == nil {
		return nil
	}
	return &graphql.Time{Time: *t}
}
