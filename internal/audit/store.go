package audit

import "context"

// Store is the persistence boundary for audit records.
//
// Error Contract:
//   - GetByID returns sentinel.ErrNotFound when no record exists
//   - Append and AnonymizeRequester return nil on success
//
// The production deployment backs this with a relational store; the core
// only depends on this interface.
type Store interface {
	Append(ctx context.Context, record Record) (int64, error)
	List(ctx context.Context, q Query) ([]Record, error)
	GetByID(ctx context.Context, id int64) (Record, error)
	Stats(ctx context.Context) (Stats, error)

	// AnonymizeRequester clears requester-identifying fields on every record
	// for the given requester and returns the number of records touched.
	// Used by the RTBF audit-log layer handler, which must not delete rows.
	AnonymizeRequester(ctx context.Context, requesterID string) (int, error)
}
