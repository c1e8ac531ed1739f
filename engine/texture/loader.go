package texture

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-sprite/common"
	"github.com/Carmen-Shannon/oxy-sprite/engine/gpu"
	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// loader is the implementation of the Loader interface.
type loader struct {
	dev     gpu.Device
	logger  *log.Logger
	cache   *lru.Cache[string, Texture]
	size    int
	workers int
}

// Loader decodes image files into textures and caches them by path. Cached textures hold one
// reference owned by the cache; callers receive their own reference and must Release it.
type Loader interface {
	// Load returns the texture for path, decoding and uploading it on a cache miss.
	//
	// Parameters:
	//   - path: image file path
	//
	// Returns:
	//   - Texture: a retained texture; the caller must Release it
	//   - error: ErrDecode wrapped for undecodable files, or the read/upload error
	Load(path string) (Texture, error)

	// LoadAll loads several paths, decoding cache misses in parallel on a worker pool. Uploads
	// happen on the calling goroutine. Successfully loaded textures are returned even when some
	// paths fail.
	//
	// Parameters:
	//   - paths: image file paths
	//
	// Returns:
	//   - []Texture: one retained texture per path, nil where loading failed
	//   - error: all failures joined, nil if every path loaded
	LoadAll(paths ...string) ([]Texture, error)

	// Cached returns the number of textures currently held by the cache.
	Cached() int

	// Purge drops the cache's references to every texture.
	Purge()
}

var _ Loader = &loader{}

// NewLoader creates a texture loader.
//
// Parameters:
//   - dev: the device textures are uploaded to
//   - options: LoaderBuilderOption values (cache size, worker count, logger)
//
// Returns:
//   - Loader: the loader
func NewLoader(dev gpu.Device, options ...LoaderBuilderOption) Loader {
	l := &loader{
		dev:     dev,
		size:    128,
		workers: runtime.NumCPU(),
	}
	for _, opt := range options {
		opt(l)
	}
	cache, err := lru.NewWithEvict(l.size, func(path string, t Texture) {
		l.logger.Debug("texture evicted", "path", path)
		t.Release()
	})
	if err != nil {
		panic(fmt.Sprintf("texture: failed to create cache: %v", err))
	}
	l.cache = cache
	return l
}

func decodeFile(path string) (common.TextureStagingData, error) {
	f, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("texture %q: %w", path, err)
	}
	defer f.Close()

	data, err := common.DecodeImage(f)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("%w: %q: %w", ErrDecode, path, err)
	}
	return data, nil
}

func (l *loader) upload(path string, data common.TextureStagingData) (Texture, error) {
	t, err := New(l.dev, path, data)
	if err != nil {
		return nil, err
	}
	l.cache.Add(path, t)
	l.logger.Debug("texture loaded", "path", path, "width", data.Width, "height", data.Height)
	return t.Retain(), nil
}

func (l *loader) Load(path string) (Texture, error) {
	if t, ok := l.cache.Get(path); ok {
		return t.Retain(), nil
	}
	data, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return l.upload(path, data)
}

func (l *loader) LoadAll(paths ...string) ([]Texture, error) {
	out := make([]Texture, len(paths))
	decoded := make([]common.TextureStagingData, len(paths))
	errs := make([]error, len(paths))

	var misses []int
	for i, path := range paths {
		if t, ok := l.cache.Get(path); ok {
			out[i] = t.Retain()
			continue
		}
		misses = append(misses, i)
	}

	if len(misses) > 0 {
		// Decoding is CPU bound and independent per file; the pool is torn down once the
		// batch completes.
		pool := worker.NewDynamicWorkerPool(min(l.workers, len(misses)), len(misses), time.Second)
		var wg sync.WaitGroup
		for _, i := range misses {
			wg.Add(1)
			idx := i
			pool.SubmitTask(worker.Task{
				ID:      idx,
				Payload: paths[idx],
				Do: func() (any, error) {
					defer wg.Done()
					decoded[idx], errs[idx] = decodeFile(paths[idx])
					return nil, errs[idx]
				},
			})
		}
		wg.Wait()
		pool.Stop()
	}

	for _, i := range misses {
		if errs[i] != nil {
			continue
		}
		// The same path may appear twice in one batch.
		if t, ok := l.cache.Get(paths[i]); ok {
			out[i] = t.Retain()
			continue
		}
		out[i], errs[i] = l.upload(paths[i], decoded[i])
	}

	return out, errors.Join(errs...)
}

func (l *loader) Cached() int {
	return l.cache.Len()
}

func (l *loader) Purge() {
	l.cache.Purge()
}
