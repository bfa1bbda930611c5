package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"voice2sign/internal/services"
)

const lockRetryDelay = 200 * time.Millisecond

// lockVideo blocks until the per-video lock is held or ctx is done.
func (r *Runner) lockVideo(ctx context.Context, videoID string) (func(), error) {
	path := filepath.Join(r.cache.Dir(), "video_"+videoID+".lock")
	lock := flock.New(path)
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrTimeout, "pipeline", "lock video",
			fmt.Sprintf("another analysis of %s is still running", videoID), err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "lock video", "lock not acquired", nil)
	}
	return func() { _ = lock.Unlock() }, nil
}
