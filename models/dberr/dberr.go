// Package dberr turns database driver errors into readable, classified
// errors. Every error that leaves the model layer is a *Error.
package dberr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// See https://www.postgresql.org/docs/current/errcodes-appendix.html for
// a full listing of the error codes present here.
const (
	CodeNumericValueOutOfRange    = "22003"
	CodeStringDataRightTruncation = "22001"
	CodeInvalidTextRepresentation = "22P02"
	CodeNotNullViolation          = "23502"
	CodeForeignKeyViolation       = "23503"
	CodeUniqueViolation           = "23505"
	CodeCheckViolation            = "23514"
	CodeTooManyConnections        = "53300"
	CodeLockNotAvailable          = "55P03"
)

// Kind classifies an Error.
type Kind int

const (
	// KindStore is any failure reported by, or while talking to, the store:
	// connectivity, constraint violations, malformed statements.
	KindStore Kind = iota
	// KindResourceExhaustion means no pooled connection could be checked
	// out. Callers may retry.
	KindResourceExhaustion
)

func (k Kind) String() string {
	switch k {
	case KindResourceExhaustion:
		return "resource_exhaustion"
	default:
		return "store"
	}
}

// Code is the machine readable identifier reported to API clients.
func (k Kind) Code() string {
	switch k {
	case KindResourceExhaustion:
		return "RESOURCE_EXHAUSTED"
	default:
		return "STORE_ERROR"
	}
}

// Error is a human-readable database error. Message should always be a
// non-empty, readable string, and is returned when you call err.Error(). The
// other fields may or may not be empty.
type Error struct {
	Kind       Kind
	Message    string
	Code       string
	Constraint string
	Severity   string
	Table      string
	Detail     string
	Column     string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is rendered into the "extensions" member of a GraphQL error.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code": e.Kind.Code(),
	}
	if e.Code != "" {
		ext["sqlstate"] = e.Code
	}
	return ext
}

// Exhausted wraps a failure to check out a pooled connection.
func Exhausted(err error) *Error {
	return &Error{
		Kind:    KindResourceExhaustion,
		Message: "Could not acquire a database connection: " + err.Error(),
		Err:     err,
	}
}

// IsResourceExhaustion reports whether err, or any error it wraps, is a
// pool exhaustion error.
func IsResourceExhaustion(err error) bool {
	var dbe *Error
	if errors.As(err, &dbe) {
		return dbe.Kind == KindResourceExhaustion
	}
	return false
}

var columnFinder = regexp.MustCompile(`Key \((.+)\)=`)
var valueFinder = regexp.MustCompile(`Key \(.+\)=\((.+)\)`)

// findColumn finds the column in the given detail string. If the column does
// not exist, the empty string is returned.
//
// detail can look like this:
//
//	Key (uid)=(3c7d2b4a-3fc8-4782-a518-4ce9efef51e7) already exists.
func findColumn(detail string) string {
	results := columnFinder.FindStringSubmatch(detail)
	if len(results) < 2 {
		return ""
	}
	return results[1]
}

func findValue(detail string) string {
	results := valueFinder.FindStringSubmatch(detail)
	if len(results) < 2 {
		return ""
	}
	return results[1]
}

// capitalize the first letter in the string
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return fmt.Sprintf("%c", unicode.ToTitle(r)) + s[size:]
}

// pgError holds the fields both drivers report for a server error.
type pgError struct {
	code       string
	message    string
	detail     string
	severity   string
	table      string
	column     string
	constraint string
}

func fromPQ(e *pq.Error) pgError {
	return pgError{
		code:       string(e.Code),
		message:    e.Message,
		detail:     e.Detail,
		severity:   e.Severity,
		table:      e.Table,
		column:     e.Column,
		constraint: e.Constraint,
	}
}

func fromPgconn(e *pgconn.PgError) pgError {
	return pgError{
		code:       e.Code,
		message:    e.Message,
		detail:     e.Detail,
		severity:   e.Severity,
		table:      e.TableName,
		column:     e.ColumnName,
		constraint: e.ConstraintName,
	}
}

// GetError parses a given database error and returns a human-readable
// version of that error. Errors from lib/pq and pgx are both understood. nil
// is returned as nil, an *Error is returned unchanged, and any other error is
// wrapped in a KindStore *Error carrying the original message.
func GetError(err error) error {
	if err == nil {
		return nil
	}
	var dbe *Error
	if errors.As(err, &dbe) {
		return dbe
	}
	var pqerr *pq.Error
	if errors.As(err, &pqerr) {
		return translate(fromPQ(pqerr), err)
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return translate(fromPgconn(pgerr), err)
	}
	return &Error{
		Kind:    KindStore,
		Message: err.Error(),
		Err:     err,
	}
}

func translate(p pgError, cause error) *Error {
	e := &Error{
		Kind:       KindStore,
		Message:    p.message,
		Code:       p.code,
		Severity:   p.severity,
		Table:      p.table,
		Column:     p.column,
		Constraint: p.constraint,
		Detail:     p.detail,
		Err:        cause,
	}
	switch p.code {
	case CodeUniqueViolation:
		columnName := findColumn(p.detail)
		if columnName == "" {
			columnName = "value"
		} else {
			e.Column = columnName
		}
		if valueName := findValue(p.detail); valueName != "" {
			e.Message = fmt.Sprintf("A %s already exists with this value (%s)", columnName, valueName)
		} else {
			e.Message = fmt.Sprintf("A %s already exists with that value", columnName)
		}
	case CodeNotNullViolation:
		e.Message = fmt.Sprintf("No %[1]s was provided. Please provide a %[1]s", p.column)
	case CodeNumericValueOutOfRange:
		e.Message = capitalize(strings.Replace(p.message, "out of range", "too large or too small", 1))
	case CodeInvalidTextRepresentation:
		msg := strings.Replace(p.message, "input value for enum ", "", 1)
		e.Message = strings.Replace(msg, "invalid", "Invalid", 1)
	case CodeStringDataRightTruncation:
		e.Message = capitalize(p.message)
	case CodeTooManyConnections:
		e.Kind = KindResourceExhaustion
		e.Message = capitalize(p.message)
	}
	return e
}
