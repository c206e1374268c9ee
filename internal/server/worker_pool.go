package server

import (
	"net"
	"sync"

	"go.uber.org/zap"
)

// task is one received query datagram pending classification.
type task struct {
	payload []byte
	addr    net.Addr
}

// workerPool processes tasks with a bounded number of workers.
type workerPool struct {
	// WorkerFunc handles one task.
	WorkerFunc func(t *task) error

	// MaxWorkersCount limits the number of concurrent workers.
	MaxWorkersCount int

	Logger *zap.Logger

	mux   sync.Mutex
	tasks chan *task
	wg    sync.WaitGroup
}

// Start spawns workers. Starting an already started pool is a no-op,
// and a stopped pool can be started again.
func (wp *workerPool) Start() {
	wp.mux.Lock()
	defer wp.mux.Unlock()
	if wp.tasks != nil {
		return
	}
	if wp.Logger == nil {
		wp.Logger = zap.NewNop()
	}
	// Workers drain the channel created by this Start; a captured local
	// keeps them off the field, which Stop rewrites under the mutex.
	tasks := make(chan *task, wp.MaxWorkersCount)
	wp.tasks = tasks
	wp.wg.Add(wp.MaxWorkersCount)
	for i := 0; i < wp.MaxWorkersCount; i++ {
		go func() {
			defer wp.wg.Done()
			for t := range tasks {
				if err := wp.WorkerFunc(t); err != nil {
					wp.Logger.Warn("worker failed", zap.Error(err))
				}
			}
		}()
	}
}

// Stop drains queued tasks and releases all workers.
func (wp *workerPool) Stop() {
	wp.mux.Lock()
	tasks := wp.tasks
	wp.tasks = nil
	wp.mux.Unlock()
	if tasks == nil {
		return
	}
	close(tasks)
	wp.wg.Wait()
}

// Serve queues one task, blocking while all workers are busy. Tasks
// served on a stopped pool are dropped.
func (wp *workerPool) Serve(t *task) {
	wp.mux.Lock()
	tasks := wp.tasks
	wp.mux.Unlock()
	if tasks == nil {
		return
	}
	tasks <- t
}
