package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnFunc is a unit of work executed against a single transaction scope.
// The context it receives carries the session; every read and write inside
// must use it so the whole sequence commits or rolls back together.
type TxnFunc func(ctx context.Context) error

// InTransaction runs fn inside a MongoDB multi-document transaction, retrying
// transient transaction errors. Cascading deletes depend on this: children
// and parent are removed as one atomic unit.
//
// Standalone mongod instances (common in local development) do not support
// transactions at all; in that case fn is executed once without a session so
// the operations still apply, just without atomicity.
func InTransaction(ctx context.Context, client *mongo.Client, fn TxnFunc) error {
	session, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	op := func() error {
		_, err := session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			return nil, fn(sessCtx)
		})
		return err
	}

	err = WithRetries(op, DefaultMaxRetries, IsMongoTransientTxnError)
	if err != nil && isTxnUnsupported(err) {
		return fn(ctx)
	}
	return err
}

// isTxnUnsupported detects the "not a replica set" class of failure.
func isTxnUnsupported(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		// IllegalOperation: transaction numbers need a replica set or mongos.
		if ce.Code == 20 {
			return true
		}
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
