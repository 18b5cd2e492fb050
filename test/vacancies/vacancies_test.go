package test_vacancies

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Shyp/joblog/models"
	"github.com/Shyp/joblog/models/db"
	"github.com/Shyp/joblog/models/dberr"
	"github.com/Shyp/joblog/models/vacancies"
	"github.com/Shyp/joblog/setup"
	"github.com/Shyp/joblog/test"
	testdb "github.com/Shyp/joblog/test/db"
	"github.com/Shyp/joblog/test/factory"
)

var pool *db.Pool

func TestAll(t *testing.T) {
	pool = testdb.SetUp(t)
	defer testdb.TearDown(t, pool)
	t.Run("Parallel", func(t *testing.T) {
		t.Run("RoundTrip", testRoundTrip)
		t.Run("MinimalRoundTrip", testMinimalRoundTrip)
		t.Run("UIDsAreUnique", testUIDsAreUnique)
		t.Run("AbsenceIsBenign", testAbsenceIsBenign)
		t.Run("DeleteRemoves", testDeleteRemoves)
		t.Run("UpdateOnlyTouchesStatus", testUpdateOnlyTouchesStatus)
		t.Run("UpdateNilStatus", testUpdateNilStatus)
		t.Run("UpdateMissingIsError", testUpdateMissingIsError)
		t.Run("ListNewestFirst", testListNewestFirst)
	})
	t.Run("CountsByStatus", testCountsByStatus)
	t.Run("PoolExhaustion", testPoolExhaustion)
}

func conn(t *testing.T) *sql.Conn {
	t.Helper()
	c, err := pool.Acquire(context.Background())
	test.AssertNotError(t, err, "acquiring a connection")
	t.Cleanup(func() { c.Close() })
	return c
}

func testRoundTrip(t *testing.T) {
	t.Parallel()
	in := factory.SampleVacancy
	v := factory.CreateVacancy(t, pool, in)
	test.Assert(t, v.UID != "", "expected a uid")
	test.Assert(t, v.PK > 0, "expected a primary key")
	test.Assert(t, v.DateCreated != nil, "expected date_created")
	test.Assert(t, v.DateModified == nil, "expected no date_modified")
	test.AssertEquals(t, *v.Status, models.StatusCreated)

	test.AssertEquals(t, v.CompanyLogo, in.CompanyLogo)
	test.AssertEquals(t, v.Company, in.Company)
	test.AssertEquals(t, v.Title, in.Title)
	test.AssertEquals(t, v.Description, in.Description)
	test.AssertEquals(t, v.Location, in.Location)
	test.AssertEquals(t, v.URL, in.URL)
	test.AssertEquals(t, v.CompanyURL, in.CompanyURL)
	test.AssertEquals(t, *v.WorkplaceType, *in.WorkplaceType)
	test.AssertEquals(t, *v.ExperienceLevel, *in.ExperienceLevel)
	test.AssertEquals(t, *v.ContractType, *in.ContractType)
}

func testMinimalRoundTrip(t *testing.T) {
	t.Parallel()
	v := factory.CreateVacancy(t, pool, factory.MinimalVacancy)
	test.Assert(t, v.WorkplaceType == nil, "")
	test.Assert(t, v.ExperienceLevel == nil, "")
	test.Assert(t, v.ContractType == nil, "")
	test.AssertEquals(t, *v.Status, models.StatusCreated)
}

func testUIDsAreUnique(t *testing.T) {
	t.Parallel()
	a := factory.CreateVacancy(t, pool, factory.SampleVacancy)
	b := factory.CreateVacancy(t, pool, factory.SampleVacancy)
	test.AssertNotEquals(t, a.UID, b.UID)
	test.AssertNotEquals(t, a.PK, b.PK)
}

func testAbsenceIsBenign(t *testing.T) {
	t.Parallel()
	c := conn(t)
	uid := factory.RandomUID()
	v, err := vacancies.Get(context.Background(), c, uid)
	test.AssertNotError(t, err, "")
	test.Assert(t, v == nil, "expected nil for an unknown uid")
	deleted, err := vacancies.Delete(context.Background(), c, uid)
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, deleted, false)
}

func testDeleteRemoves(t *testing.T) {
	t.Parallel()
	v := factory.CreateVacancy(t, pool, factory.SampleVacancy)
	c := conn(t)
	ctx := context.Background()
	deleted, err := vacancies.Delete(ctx, c, v.UID)
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, deleted, true)
	got, err := vacancies.Get(ctx, c, v.UID)
	test.AssertNotError(t, err, "")
	test.Assert(t, got == nil, "expected the vacancy to be gone")
	all, err := vacancies.List(ctx, c)
	test.AssertNotError(t, err, "")
	for _, other := range all {
		test.AssertNotEquals(t, other.UID, v.UID)
	}
	deleted, err = vacancies.Delete(ctx, c, v.UID)
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, deleted, false)
}

func testUpdateOnlyTouchesStatus(t *testing.T) {
	t.Parallel()
	v := factory.CreateVacancy(t, pool, factory.SampleVacancy)
	c := conn(t)
	updated, err := vacancies.Update(context.Background(), c, models.VacancyMutation{
		UID:    v.UID,
		Status: models.String("Applied"),
	})
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, *updated.Status, "Applied")
	test.Assert(t, updated.DateModified != nil, "expected date_modified to be set")
	test.AssertEquals(t, updated.PK, v.PK)
	test.AssertEquals(t, updated.Company, v.Company)
	test.AssertEquals(t, updated.Title, v.Title)
	test.AssertEquals(t, updated.Description, v.Description)
	test.AssertEquals(t, updated.URL, v.URL)
	test.AssertEquals(t, *updated.ContractType, *v.ContractType)
	test.Assert(t, updated.DateCreated.Equal(*v.DateCreated), "date_created should not move")
}

func testUpdateNilStatus(t *testing.T) {
	t.Parallel()
	v := factory.CreateVacancy(t, pool, factory.SampleVacancy)
	c := conn(t)
	updated, err := vacancies.Update(context.Background(), c, models.VacancyMutation{UID: v.UID})
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, *updated.Status, models.StatusCreated)
	test.Assert(t, updated.DateModified != nil, "expected date_modified to be set")
}

func testUpdateMissingIsError(t *testing.T) {
	t.Parallel()
	c := conn(t)
	_, err := vacancies.Update(context.Background(), c, models.VacancyMutation{
		UID:    factory.RandomUID(),
		Status: models.String("Applied"),
	})
	test.AssertError(t, err, "")
	test.Assert(t, errors.Is(err, sql.ErrNoRows), "expected the error to wrap sql.ErrNoRows")
}

func testListNewestFirst(t *testing.T) {
	t.Parallel()
	var uids []string
	for i := 0; i < 3; i++ {
		v := factory.CreateVacancy(t, pool, factory.WithTitle(factory.SampleVacancy, i))
		uids = append(uids, v.UID)
	}
	c := conn(t)
	all, err := vacancies.List(context.Background(), c)
	test.AssertNotError(t, err, "")
	pos := make(map[string]int)
	for i, v := range all {
		pos[v.UID] = i
	}
	for _, uid := range uids {
		_, ok := pos[uid]
		test.Assert(t, ok, "expected "+uid+" in the list")
	}
	test.Assert(t, pos[uids[2]] < pos[uids[1]], "newest should come first")
	test.Assert(t, pos[uids[1]] < pos[uids[0]], "newest should come first")
}

func testCountsByStatus(t *testing.T) {
	factory.CreateVacancy(t, pool, factory.SampleVacancy)
	c := conn(t)
	counts, err := vacancies.CountsByStatus(context.Background(), c)
	test.AssertNotError(t, err, "")
	test.Assert(t, counts[models.StatusCreated] >= 1, "expected at least one Created vacancy")
}

func testPoolExhaustion(t *testing.T) {
	small, err := setup.DB(context.Background(), setup.DefaultConnection, 1, 50*time.Millisecond, time.Second)
	test.AssertNotError(t, err, "")
	defer small.Close()
	held, err := small.Acquire(context.Background())
	test.AssertNotError(t, err, "")
	defer held.Close()

	_, err = small.Acquire(context.Background())
	test.AssertError(t, err, "")
	test.Assert(t, dberr.IsResourceExhaustion(err), "expected a resource exhaustion error, got "+err.Error())
}
