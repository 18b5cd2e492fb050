package models

import "time"

// StatusCreated is the status a vacancy gets when none is supplied at
// creation.
const StatusCreated = "Created"

// Conventional values for the classification fields. They document what
// clients send; the store and the API accept any string.
const (
	WorkplaceOnSite = "On-site"
	WorkplaceHybrid = "Hybrid"
	WorkplaceRemote = "Remote"

	ExperienceInternship = "Internship"
	ExperienceEntry      = "Entry"
	ExperienceAssociate  = "Associate"
	ExperienceMidSenior  = "Mid-Senior"
	ExperienceDirector   = "Director"
	ExperienceExecutive  = "Executive"

	ContractFullTime   = "Full-time"
	ContractPartTime   = "Part-time"
	ContractContract   = "Contract"
	ContractInternship = "Internship"
)

// Vacancy is a job posting stored in the "vacancies" table.
type Vacancy struct {
	// PK is the store's surrogate key. It never leaves the service; use UID.
	PK              int64      `json:"-"`
	UID             string     `json:"uid"`
	CompanyLogo     string     `json:"company_logo"`
	Company         string     `json:"company"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	WorkplaceType   *string    `json:"workplace_type"`
	URL             string     `json:"url"`
	CompanyURL      string     `json:"company_url"`
	DateCreated     *time.Time `json:"date_created"`
	DateModified    *time.Time `json:"date_modified"`
	ExperienceLevel *string    `json:"experience_level"`
	ContractType    *string    `json:"contract_type"`
	Status          *string    `json:"status"`
}

// VacancyInput holds the caller-supplied fields of a new vacancy.
type VacancyInput struct {
	CompanyLogo     string
	Company         string
	Title           string
	Description     string
	Location        string
	WorkplaceType   *string
	URL             string
	CompanyURL      string
	ExperienceLevel *string
	ContractType    *string
	Status          *string
}

// VacancyMutation is a partial update of the vacancy identified by UID. Only
// the status can change; a nil Status leaves it as is.
type VacancyMutation struct {
	UID    string
	Status *string
}

// String returns a pointer to s, for filling in optional fields.
func String(s string) *string {
	return &s
}
