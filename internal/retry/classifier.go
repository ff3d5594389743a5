package retry

import "errors"

// AdminShutdownCode is the SQLSTATE reported when the server unilaterally
// closes an otherwise-idle connection (admin_shutdown).
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const AdminShutdownCode = "57P01"

// sqlStater is the capability an error must expose to be classified.
// pgconn.PgError satisfies it; so does any other driver error carrying a
// machine-readable SQLSTATE.
type sqlStater interface {
	SQLState() string
}

// ServerClosedClassifier recognizes exactly one transient condition: the
// database server closed the connection (SQLSTATE 57P01). Every other
// error, including other connection-class codes, is fatal to the wrapper
// and propagates to the caller untouched.
type ServerClosedClassifier struct {
	code string
}

// NewServerClosedClassifier creates a classifier keyed to AdminShutdownCode.
func NewServerClosedClassifier() *ServerClosedClassifier {
	return &ServerClosedClassifier{code: AdminShutdownCode}
}

// IsTransient reports whether err (or anything it wraps) carries the
// server-closed-connection SQLSTATE.
func (c *ServerClosedClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var coded sqlStater
	if errors.As(err, &coded) {
		return coded.SQLState() == c.code
	}
	return false
}
