// Package schema defines the GraphQL contract for vacancies. The Query and
// Mutation roots check out one pooled connection per field and delegate to
// the vacancies repository; results and errors are returned unchanged.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Shyp/joblog/metrics"
	"github.com/Shyp/joblog/models"
	"github.com/Shyp/joblog/models/vacancies"
	graphql "github.com/graph-gophers/graphql-go"
)

// SDL is the schema served at /graphql.
const SDL = `
scalar Time

schema {
	query: Query
	mutation: Mutation
}

type Vacancy {
	uid: String!
	companyLogo: String!
	company: String!
	title: String!
	description: String!
	location: String!
	# On-site, Hybrid, Remote
	workplaceType: String
	url: String!
	companyUrl: String!
	dateCreated: Time
	dateModified: Time
	# Internship, Entry, Associate, Mid-Senior, Director, Executive
	experienceLevel: String
	# Full-time, Part-time, Contract, Internship
	contractType: String
	status: String
}

input VacancyInput {
	companyLogo: String!
	company: String!
	title: String!
	description: String!
	location: String!
	workplaceType: String
	url: String!
	companyUrl: String!
	experienceLevel: String
	contractType: String
	status: String
}

input VacancyMutation {
	uid: String!
	status: String
}

type Query {
	allVacancies: [Vacancy!]!
	getVacancy(uid: String!): Vacancy
}

type Mutation {
	createVacancy(input: VacancyInput!): Vacancy!
	deleteVacancy(uid: String!): Boolean!
	updateVacancy(input: VacancyMutation!): Vacancy!
}
`

// MaxParallelism bounds how many fields of one request resolve at once, and
// so how many pooled connections a single request can hold.
const MaxParallelism = 4

var errNoContext = errors.New("schema: no Context attached to the request")

// New parses SDL against the root resolver.
func New() (*graphql.Schema, error) {
	return graphql.ParseSchema(SDL, &Resolver{}, graphql.MaxParallelism(MaxParallelism))
}

// MustNew is like New but panics if the schema cannot be parsed.
func MustNew() *graphql.Schema {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// Resolver is the root of both Query and Mutation.
type Resolver struct{}

// withConn checks out one connection from the request's pool, runs f with it
// and always hands the connection back.
func withConn(ctx context.Context, name string, f func(conn *sql.Conn) error) error {
	c := ContextFrom(ctx)
	if c == nil {
		return errNoContext
	}
	start := time.Now()
	conn, err := c.Pool.Acquire(ctx)
	go metrics.Time("pool.acquire.latency", time.Since(start))
	if err != nil {
		go metrics.Increment("pool.acquire.error")
		return err
	}
	defer conn.Close()
	err = f(conn)
	go metrics.Time(name+".latency", time.Since(start))
	if err != nil {
		go metrics.Increment(name + ".error")
	} else {
		go metrics.Increment(name + ".success")
	}
	return err
}

func resolvers(vs []*models.Vacancy) []*VacancyResolver {
	out := make([]*VacancyResolver, len(vs))
	for i, v := range vs {
		out[i] = &VacancyResolver{v: v}
	}
	return out
}

// AllVacancies resolves Query.allVacancies.
func (r *Resolver) AllVacancies(ctx context.Context) ([]*VacancyResolver, error) {
	var vs []*models.Vacancy
	err := withConn(ctx, "vacancies.list", func(conn *sql.Conn) (err error) {
		vs, err = vacancies.List(ctx, conn)
		return
	})
	if err != nil {
		return nil, err
	}
	return resolvers(vs), nil
}

// GetVacancy resolves Query.getVacancy. An unknown uid resolves to null.
func (r *Resolver) GetVacancy(ctx context.Context, args struct{ UID string }) (*VacancyResolver, error) {
	var v *models.Vacancy
	err := withConn(ctx, "vacancies.get", func(conn *sql.Conn) (err error) {
		v, err = vacancies.Get(ctx, conn, args.UID)
		return
	})
	if err != nil || v == nil {
		return nil, err
	}
	return &VacancyResolver{v: v}, nil
}

// VacancyInput mirrors the GraphQL input type of the same name.
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

// VacancyMutation mirrors the GraphQL input type of the same name.
type VacancyMutation struct {
	UID    string
	Status *string
}

// CreateVacancy resolves Mutation.createVacancy.
func (r *Resolver) CreateVacancy(ctx context.Context, args struct{ Input VacancyInput }) (*VacancyResolver, error) {
	in := models.VacancyInput(args.Input)
	var v *models.Vacancy
	err := withConn(ctx, "vacancies.create", func(conn *sql.Conn) (err error) {
		v, err = vacancies.Create(ctx, conn, in)
		return
	})
	if err != nil {
		return nil, err
	}
	return &VacancyResolver{v: v}, nil
}

// DeleteVacancy resolves Mutation.deleteVacancy. Deleting an unknown uid
// resolves to false.
func (r *Resolver) DeleteVacancy(ctx context.Context, args struct{ UID string }) (bool, error) {
	var deleted bool
	err := withConn(ctx, "vacancies.delete", func(conn *sql.Conn) (err error) {
		deleted, err = vacancies.Delete(ctx, conn, args.UID)
		return
	})
	return deleted, err
}

// UpdateVacancy resolves Mutation.updateVacancy.
func (r *Resolver) UpdateVacancy(ctx context.Context, args struct{ Input VacancyMutation }) (*VacancyResolver, error) {
	m := models.VacancyMutation(args.Input)
	var v *models.Vacancy
	err := withConn(ctx, "vacancies.update", func(conn *sql.Conn) (err error) {
		v, err = vacancies.Update(ctx, conn, m)
		return
	})
	if err != nil {
		return nil, err
	}
	return &VacancyResolver{v: v}, nil
}
