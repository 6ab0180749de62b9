// Package store defines the persistence interface for users, statements,
// goals and ad-hoc analytical queries, with Postgres and in-memory
// implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/finsight-ai/finsight/internal/goal"
	"github.com/finsight-ai/finsight/internal/statement"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrQueryUnsupported is returned by stores that cannot execute
	// ad-hoc SQL, such as the in-memory store.
	ErrQueryUnsupported = errors.New("ad-hoc queries require a SQL-backed store")
)

// User is a registered account. PasswordHash is a bcrypt hash, never the
// raw password.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// QueryResult is a generic tabular result from a validated analytical
// query.
type QueryResult struct {
	Columns []string
	Rows    [][]any
}

// Store defines the interface for all database operations used by the
// service.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, userID int64) (*User, error)

	// Statement operations. UpsertStatement is keyed on (user_id,
	// sha256): re-uploading the same bytes returns the existing row
	// with a refreshed filename and timestamp.
	UpsertStatement(ctx context.Context, st *statement.Statement) (*statement.Statement, error)
	GetStatementByHash(ctx context.Context, userID int64, sha256 string) (*statement.Statement, error)
	CountStatementRows(ctx context.Context, userID, statementID int64) (int, error)
	WriteRows(ctx context.Context, rows []statement.Row) error

	// Goal operations
	CreateGoal(ctx context.Context, g *goal.Goal) (*goal.Goal, error)
	ListGoals(ctx context.Context, userID int64) ([]*goal.Goal, error)
	UpdateGoal(ctx context.Context, g *goal.Goal) error
	DeleteGoal(ctx context.Context, userID, goalID int64) error

	// RunUserQuery executes a validated read-only query whose :user_id
	// placeholder is bound to userID.
	RunUserQuery(ctx context.Context, query string, userID int64) (*QueryResult, error)

	Close() error
}
