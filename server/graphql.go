package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Shyp/joblog/metrics"
	"github.com/Shyp/joblog/models/db"
	"github.com/Shyp/joblog/models/dberr"
	"github.com/Shyp/joblog/schema"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// GraphQLRequest is the body of a POST to /graphql.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// readGraphQLRequest reads the request from the body of a POST or the query
// string of a GET. The boolean reports whether the helper has written a
// response.
func readGraphQLRequest(w http.ResponseWriter, r *http.Request) (*GraphQLRequest, bool) {
	req := new(GraphQLRequest)
	if r.Method == "GET" {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				badRequest(w, r, invalidRequest(r.URL.Path))
				return nil, true
			}
		}
	} else {
		if !isJSON(r.Header.Get("Content-Type")) {
			badRequest(w, r, invalidRequest(r.URL.Path))
			return nil, true
		}
		r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, newTooLarge(r))
				return nil, true
			}
			badRequest(w, r, invalidRequest(r.URL.Path))
			return nil, true
		}
	}
	if req.Query == "" {
		badRequest(w, r, createEmptyErr("query", r.URL.Path))
		return nil, true
	}
	if r.Method == "GET" && isMutation(req.Query, req.OperationName) {
		w.Header().Set("Allow", "POST")
		writeError(w, mutationOverGet(r))
		return nil, true
	}
	return req, false
}

// isMutation reports whether the operation that would run is a mutation.
// Documents that do not parse, or do not pick out one operation, are left to
// the executor to reject.
func isMutation(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}
	op := doc.Operations.ForName(operationName)
	return op != nil && op.Operation == ast.Mutation
}

// GET/POST /graphql
//
// Executes one GraphQL request. Every request gets its own schema.Context
// over the shared pool. Resolver errors are reported in the response body
// with a 200, as usual for GraphQL; if any of them is a pool exhaustion the
// response carries a Retry-After header.
func graphqlHandler(s *graphql.Schema, pool *db.Pool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, wroteResponse := readGraphQLRequest(w, r)
		if wroteResponse {
			return
		}
		ctx := schema.WithContext(r.Context(), schema.NewContext(pool))
		resp := s.Exec(ctx, req.Query, req.OperationName, req.Variables)
		if len(resp.Errors) > 0 {
			go metrics.Increment("graphql.errors")
			for _, qe := range resp.Errors {
				if qe.ResolverError == nil {
					continue
				}
				if dberr.IsResourceExhaustion(qe.ResolverError) {
					w.Header().Set("Retry-After", "1")
					Logger.Warn("pool exhausted", "path", qe.Path, "err", qe.ResolverError)
				} else {
					Logger.Error("resolver error", "path", qe.Path, "err", qe.ResolverError)
				}
			}
		} else {
			go metrics.Increment("graphql.success")
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Error("error encoding response", "err", err)
	}
}
