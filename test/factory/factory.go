// Package factory contains helpers for instantiating tests.
package factory

import (
	"context"
	"fmt"
	"testing"

	"github.com/Shyp/joblog/models"
	"github.com/Shyp/joblog/models/db"
	"github.com/Shyp/joblog/models/vacancies"
	"github.com/google/uuid"
)

// SampleVacancy is a complete create input for Acme.
var SampleVacancy = models.VacancyInput{
	CompanyLogo:     "https://acme.com/logo.png",
	Company:         "Acme",
	Title:           "Engineer",
	Description:     "Build rockets.",
	Location:        "Remote",
	WorkplaceType:   models.String(models.WorkplaceRemote),
	URL:             "https://acme.com/jobs/1",
	CompanyURL:      "https://acme.com",
	ExperienceLevel: models.String(models.ExperienceMidSenior),
	ContractType:    models.String(models.ContractFullTime),
}

// MinimalVacancy sets only the required fields.
var MinimalVacancy = models.VacancyInput{
	CompanyLogo: "logo.png",
	Company:     "Initech",
	Title:       "TPS Report Analyst",
	Description: "Reports.",
	Location:    "Austin",
	URL:         "https://initech.example.com/jobs/2",
	CompanyURL:  "https://initech.example.com",
}

// RandomUID returns a uid that no vacancy has.
func RandomUID() string {
	return uuid.NewString()
}

// WithTitle returns a copy of in with a distinct title, so several vacancies
// can be told apart.
func WithTitle(in models.VacancyInput, i int) models.VacancyInput {
	in.Title = fmt.Sprintf("%s %d", in.Title, i)
	return in
}

// CreateVacancy stores in, reads it back and fails the test if either step
// does not work.
func CreateVacancy(t testing.TB, pool *db.Pool, in models.VacancyInput) *models.Vacancy {
	t.Helper()
	ctx := context.Background()
	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	v, err := vacancies.Create(ctx, conn, in)
	if err != nil {
		t.Fatal(err)
	}
	got, err := vacancies.GetRetry(ctx, conn, v.UID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatalf("vacancy %s not found after create", v.UID)
	}
	return got
}
