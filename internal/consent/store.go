package consent

import "context"

// Store persists consent records keyed by subject id. Implementations must
// return copies; callers never share memory with the store.
type Store interface {
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, subjectID string) (Record, error)
	Delete(ctx context.Context, subjectID string) error
}
