package client

import (
	"context"
	"time"
)

// Vacancy is a vacancy as returned by the API.
type Vacancy struct {
	UID             string     `json:"uid"`
	CompanyLogo     string     `json:"companyLogo"`
	Company         string     `json:"company"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	WorkplaceType   *string    `json:"workplaceType"`
	URL             string     `json:"url"`
	CompanyURL      string     `json:"companyUrl"`
	DateCreated     *time.Time `json:"dateCreated"`
	DateModified    *time.Time `json:"dateModified"`
	ExperienceLevel *string    `json:"experienceLevel"`
	ContractType    *string    `json:"contractType"`
	Status          *string    `json:"status"`
}

// VacancyInput is the payload of createVacancy.
type VacancyInput struct {
	CompanyLogo     string  `json:"companyLogo"`
	Company         string  `json:"company"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Location        string  `json:"location"`
	WorkplaceType   *string `json:"workplaceType,omitempty"`
	URL             string  `json:"url"`
	CompanyURL      string  `json:"companyUrl"`
	ExperienceLevel *string `json:"experienceLevel,omitempty"`
	ContractType    *string `json:"contractType,omitempty"`
	Status          *string `json:"status,omitempty"`
}

const vacancyFields = `uid
	companyLogo
	company
	title
	description
	location
	workplaceType
	url
	companyUrl
	dateCreated
	dateModified
	experienceLevel
	contractType
	status`

const allVacanciesQuery = `query AllVacancies {
	allVacancies {
	` + vacancyFields + `
	}
}`

const getVacancyQuery = `query GetVacancy($uid: String!) {
	getVacancy(uid: $uid) {
	` + vacancyFields + `
	}
}`

const createVacancyMutation = `mutation CreateVacancy($input: VacancyInput!) {
	createVacancy(input: $input) {
	` + vacancyFields + `
	}
}`

const deleteVacancyMutation = `mutation DeleteVacancy($uid: String!) {
	deleteVacancy(uid: $uid)
}`

const updateVacancyMutation = `mutation UpdateVacancy($input: VacancyMutation!) {
	updateVacancy(input: $input) {
	` + vacancyFields + `
	}
}`

// VacancyService runs the vacancy queries and mutations.
type VacancyService struct {
	client *Client
}

// All returns every vacancy, newest first.
func (s *VacancyService) All(ctx context.Context) ([]*Vacancy, error) {
	var data struct {
		AllVacancies []*Vacancy `json:"allVacancies"`
	}
	if err := s.client.Do(ctx, allVacanciesQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.AllVacancies, nil
}

// Get returns the vacancy with the given uid, or nil if there is none.
func (s *VacancyService) Get(ctx context.Context, uid string) (*Vacancy, error) {
	var data struct {
		GetVacancy *Vacancy `json:"getVacancy"`
	}
	if err := s.client.Do(ctx, getVacancyQuery, map[string]interface{}{"uid": uid}, &data); err != nil {
		return nil, err
	}
	return data.GetVacancy, nil
}

// Create stores a new vacancy.
func (s *VacancyService) Create(ctx context.Context, in VacancyInput) (*Vacancy, error) {
	var data struct {
		CreateVacancy *Vacancy `json:"createVacancy"`
	}
	if err := s.client.Do(ctx, createVacancyMutation, map[string]interface{}{"input": in}, &data); err != nil {
		return nil, err
	}
	return data.CreateVacancy, nil
}

// Delete deletes the vacancy with the given uid and reports whether it
// existed.
func (s *VacancyService) Delete(ctx context.Context, uid string) (bool, error) {
	var data struct {
		DeleteVacancy bool `json:"deleteVacancy"`
	}
	if err := s.client.Do(ctx, deleteVacancyMutation, map[string]interface{}{"uid": uid}, &data); err != nil {
		return false, err
	}
	return data.DeleteVacancy, nil
}

// UpdateStatus sets the status of the vacancy with the given uid.
func (s *VacancyService) UpdateStatus(ctx context.Context, uid string, status string) (*Vacancy, error) {
	var data struct {
		UpdateVacancy *Vacancy `json:"updateVacancy"`
	}
	input := map[string]interface{}{"uid": uid, "status": status}
	if err := s.client.Do(ctx, updateVacancyMutation, map[string]interface{}{"input": input}, &data); err != nil {
		return nil, err
	}
	return data.UpdateVacancy, nil
}
