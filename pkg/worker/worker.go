package worker

import (
  "context"
  "sync"

  log "github.com/sirupsen/logrus"
)

const DefaultCount = 4

type Call func(ctx context.Context) error

// Pool is a bounded worker pool. A pool lives for one polling cycle:
// it is fed one call per department, drained with StopWait and then
// discarded. Calls report their own failures; an error returned here
// is only logged.
type Pool struct {
  ch   chan Call
  wg   sync.WaitGroup
  once sync.Once
}

func NewPool(ctx context.Context, count uint8) *Pool {
  if count == 0 {
    count = DefaultCount
  }

  pool := &Pool{ch: make(chan Call)}

  pool.wg.Add(int(count))

  for index := uint8(0); index < count; index++ {
    go pool.work(ctx)
  }

  return pool
}

func (p *Pool) work(ctx context.Context) {
  defer p.wg.Done()

  for {
    select {
    case <-ctx.Done():
      log.Warn("worker.pool: context cancelled: worker stopped")
      return

    case call, ok := <-p.ch:
      if !ok {
        return
      }
      if err := call(ctx); err != nil {
        log.Errorf("worker.pool: call failed: %v", err)
      }
    }
  }
}

func (p *Pool) Push(call Call) {
  p.ch <- call
}

// StopWait closes the intake and blocks until in-flight calls finish.
// Safe to call more than once.
func (p *Pool) StopWait() {
  p.once.Do(func() {
    close(p.ch)
  })

  p.wg.Wait()
}
