package resume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Locker serializes resume mutations per user across processes. Two pipeline
// runs for the same user must never rewrite the same document concurrently;
// runs for different users proceed in parallel.
type Locker struct {
	dir string
}

func NewLocker(dir string) *Locker {
	return &Locker{dir: dir}
}

const lockRetryInterval = 250 * time.Millisecond

// Acquire blocks until the user's lock is held or the context expires. The
// returned release function must be called on every exit path.
func (l *Locker) Acquire(ctx context.Context, userID string) (release func(), err error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}

	fl := flock.New(filepath.Join(l.dir, fmt.Sprintf("user_%s.lock", userID)))
	ok, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring resume lock for user %s: %w", userID, err)
	}
	if !ok {
		return nil, fmt.Errorf("resume lock for user %s not acquired", userID)
	}
	return func() { _ = fl.Unlock() }, nil
}
