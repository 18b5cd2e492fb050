package servertest

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/Shyp/joblog/client"
	"github.com/Shyp/joblog/schema"
	"github.com/Shyp/joblog/server"
	"github.com/Shyp/joblog/test"
	testdb "github.com/Shyp/joblog/test/db"
)

func TestAcmeOverHTTP(t *testing.T) {
	pool := testdb.SetUp(t)
	defer testdb.TearDown(t, pool)
	s := httptest.NewServer(server.Get(server.Config{Pool: pool, Schema: schema.MustNew()}))
	defer s.Close()
	c := client.NewClient(s.URL)
	ctx := context.Background()

	remote := "Remote"
	v, err := c.Vacancy.Create(ctx, client.VacancyInput{
		CompanyLogo:   "https://acme.com/logo.png",
		Company:       "Acme",
		Title:         "Engineer",
		Description:   "Build rockets.",
		Location:      "Remote",
		WorkplaceType: &remote,
		URL:           "https://acme.com/jobs/1",
		CompanyURL:    "https://acme.com",
	})
	test.AssertNotError(t, err, "")
	test.Assert(t, v.UID != "", "expected a uid")
	test.AssertEquals(t, *v.Status, "Created")

	all, err := c.Vacancy.All(ctx)
	test.AssertNotError(t, err, "")
	found := false
	for _, a := range all {
		if a.UID == v.UID {
			found = true
		}
	}
	test.Assert(t, found, "expected the new vacancy in allVacancies")

	got, err := c.Vacancy.Get(ctx, v.UID)
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, got.Company, "Acme")

	updated, err := c.Vacancy.UpdateStatus(ctx, v.UID, "Applied")
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, *updated.Status, "Applied")
	test.Assert(t, updated.DateModified != nil, "expected dateModified")

	deleted, err := c.Vacancy.Delete(ctx, v.UID)
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, deleted, true)

	gone, err := c.Vacancy.Get(ctx, v.UID)
	test.AssertNotError(t, err, "")
	test.Assert(t, gone == nil, "expected null after delete")

	all, err = c.Vacancy.All(ctx)
	test.AssertNotError(t, err, "")
	for _, a := range all {
		test.AssertNotEquals(t, a.UID, v.UID)
	}

	deleted, err = c.Vacancy.Delete(ctx, v.UID)
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, deleted, false)
}
