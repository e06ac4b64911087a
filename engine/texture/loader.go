package texture

import (
	"errors"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/tempest/common"
)

// ErrLoaderClosed is returned by LoadAll after Close.
var ErrLoaderClosed = errors.New("texture: loader closed")

// DecodeFunc reads one texture file.
type DecodeFunc func(path string) (common.TextureStagingData, error)

// loaderImpl is the implementation of the Loader interface.
type loaderImpl struct {
	workers int
	decode  DecodeFunc
	pool    worker.DynamicWorkerPool

	mu     sync.RWMutex
	closed bool
}

// Loader decodes texture files in parallel on a bounded worker pool.
type Loader interface {
	// LoadAll decodes every path and waits for all of them.
	//
	// Parameters:
	//   - paths: the files to decode
	//
	// Returns:
	//   - []common.TextureStagingData: the decoded textures in path order, or nil on failure
	//   - error: every failure joined with errors.Join, ErrLoaderClosed, or nil
	LoadAll(paths ...string) ([]common.TextureStagingData, error)

	// Close stops the worker pool once in-flight loads finish. Later calls are no-ops.
	//
	// Returns:
	//   - error: always nil
	Close() error
}

var _ Loader = &loaderImpl{}

// NewLoader creates a Loader decoding BMP files on runtime.NumCPU workers unless configured otherwise.
//
// Parameters:
//   - options: variadic list of LoaderOption functions
//
// Returns:
//   - Loader: the loader
func NewLoader(options ...LoaderOption) Loader {
	l := &loaderImpl{
		workers: runtime.NumCPU(),
		decode:  LoadBMP,
	}
	for _, opt := range options {
		opt(l)
	}
	// The pool's workers run until stopped; Close releases them.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loaderImpl) LoadAll(paths ...string) ([]common.TextureStagingData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrLoaderClosed
	}

	results := make([]common.TextureStagingData, len(paths))
	errs := make([]error, len(paths))

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				results[i], errs[i] = l.decode(path)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	log.Printf("[Texture] loaded %d textures", len(paths))
	return results, nil
}

func (l *loaderImpl) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.pool.Stop()
	return nil
}
