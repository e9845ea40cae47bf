package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEveryRunsImmediatelyThenOnInterval(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var runs atomic.Int32
	s.Every(20 * time.Millisecond).Name("images:warm").Run(func(context.Context) { runs.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
	assert.Equal(t, []string{"images:warm  [every 20ms]"}, s.List())
}

func TestWithoutOverlappingSkipsBusyTask(t *testing.T) {
	s := New()
	var runs atomic.Int32
	release := make(chan struct{})
	s.Every(time.Millisecond).WithoutOverlapping().Run(func(context.Context) {
		runs.Add(1)
		<-release
	})

	ctx := context.Background()
	now := time.Now()
	s.dispatchDue(ctx, now)
	s.dispatchDue(ctx, now.Add(time.Second))
	s.dispatchDue(ctx, now.Add(2*time.Second))

	close(release)
	s.Wait()
	assert.EqualValues(t, 1, runs.Load())
}

func TestPanickingTaskIsContained(t *testing.T) {
	s := New()
	s.Every(time.Minute).Run(func(context.Context) { panic("bad task") })

	s.dispatchDue(context.Background(), time.Now())
	s.Wait()

	assert.Equal(t, []string{"task-1  [every 1m0s]"}, s.List())
}
