package chat

import (
	"context"
	"fmt"

	"github.com/finsight-ai/finsight/internal/store"
)

// Executor runs validated SQL against the store on behalf of one user.
type Executor struct {
	store store.Store
}

func NewExecutor(s store.Store) *Executor {
	return &Executor{store: s}
}

// Execute runs the statement with the user bound as its only parameter.
// Execution failures surface to the caller; there is no retry, since a
// failing generated statement will fail the same way again.
func (e *Executor) Execute(ctx context.Context, sql string, userID int64) (*store.QueryResult, error) {
	result, err := e.store.RunUserQuery(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("execute generated query: %w", err)
	}
	return result, nil
}
