package setup

import (
	"context"
	"database/sql"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Shyp/joblog/metrics"
	"github.com/Shyp/joblog/models/db"
	"github.com/Shyp/joblog/test"
	gometrics "github.com/rcrowley/go-metrics"
)

var idleTests = []struct {
	conns int
	idle  int
}{
	{1, 1},
	{5, 5},
	{8, 6},
	{20, 17},
	{60, 50},
	{200, 180},
}

func TestIdleConns(t *testing.T) {
	t.Parallel()
	for _, tt := range idleTests {
		test.AssertEquals(t, idleConns(tt.conns), tt.idle)
	}
}

func TestConnectRequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	c := &DatabaseURLConnector{}
	_, err := c.Connect(1)
	test.AssertError(t, err, "")
	test.AssertEquals(t, err.Error(), "setup: No value provided for DATABASE_URL, cannot connect")
}

func TestConnectSetsPoolSize(t *testing.T) {
	c := &DatabaseURLConnector{Driver: "pgx", URL: "postgres://joblog@localhost:5432/joblog_test?sslmode=disable"}
	conn, err := c.Connect(3)
	test.AssertNotError(t, err, "sql.Open does not dial")
	defer conn.Close()
	test.AssertEquals(t, conn.Stats().MaxOpenConnections, 3)
}

func TestGetActiveQueries(t *testing.T) {
	t.Parallel()
	conn, mock, err := sqlmock.New()
	test.AssertNotError(t, err, "")
	defer conn.Close()
	mock.ExpectQuery("-- setup.GetActiveQueries").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	count, err := GetActiveQueries(context.Background(), db.NewPool(conn, 0))
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, count, int64(2))
}

func TestMeasureVacancies(t *testing.T) {
	conn, mock, err := sqlmock.New()
	test.AssertNotError(t, err, "")
	defer conn.Close()
	pool := db.NewPool(conn, 0)
	mock.ExpectQuery("-- vacancies.CountsByStatus").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("Created", int64(3)).
			AddRow("On-hold", int64(1)).
			AddRow("On_hold", int64(4)).
			AddRow("", int64(2)))
	err = measureVacancies(context.Background(), pool)
	test.AssertNotError(t, err, "")
	test.AssertEquals(t, gometrics.GetOrRegisterGauge("vacancies.count", metrics.Registry).Value(), int64(10))
	test.AssertDeepEquals(t, metrics.VacanciesByStatus.Values(), map[string]int64{
		"Created": 3, "On-hold": 1, "On_hold": 4, "none": 2,
	})

	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	test.AssertEquals(t, w.Code, 200)
	test.AssertContains(t, w.Body.String(), `vacancies_by_status{status="On-hold"} 1`)
	test.AssertContains(t, w.Body.String(), `vacancies_by_status{status="On_hold"} 4`)

	// A status with no rows left is no longer reported.
	mock.ExpectQuery("-- vacancies.CountsByStatus").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("Created", int64(3)))
	err = measureVacancies(context.Background(), pool)
	test.AssertNotError(t, err, "")
	test.AssertDeepEquals(t, metrics.VacanciesByStatus.Values(), map[string]int64{"Created": 3})
}

type failingConnector struct {
	err error
}

func (f failingConnector) Connect(int) (*sql.DB, error) {
	return nil, f.err
}

type mockConnector struct {
	conn *sql.DB
}

func (m mockConnector) Connect(int) (*sql.DB, error) {
	return m.conn, nil
}

var errRefused = errors.New("connection refused")

func TestDBWrapsConnectError(t *testing.T) {
	t.Parallel()
	_, err := DB(context.Background(), failingConnector{err: errRefused}, 1, 0, 0)
	test.AssertError(t, err, "")
	test.Assert(t, errors.Is(err, errRefused), "expected the cause to be kept")
	test.AssertEquals(t, err.Error(), "Could not establish a database connection: connection refused")
}

func TestDBWrapsPingError(t *testing.T) {
	t.Parallel()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	test.AssertNotError(t, err, "")
	mock.ExpectPing().WillReturnError(errRefused)
	mock.ExpectClose()
	_, err = DB(context.Background(), mockConnector{conn: conn}, 1, 0, 0)
	test.AssertError(t, err, "")
	test.Assert(t, errors.Is(err, errRefused), "expected the cause to be kept")
}

func TestEveryStopsWithContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	calls := make(chan struct{}, 10)
	done := make(chan struct{})
	go func() {
		every(ctx, time.Millisecond, func() {
			select {
			case calls <- struct{}{}:
			default:
			}
		})
		close(done)
	}()
	<-calls
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("every did not return after cancel")
	}
}

func TestRedisRejectsBadURL(t *testing.T) {
	t.Parallel()
	_, err := Redis(context.Background(), "http://not-redis")
	test.AssertError(t, err, "")
	test.AssertContains(t, err.Error(), "invalid REDIS_URL")
}
