package pixels

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// ImagePool reuses frame images between loads to keep GC pressure down
// when the same sequence is unloaded and loaded again.
type ImagePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &ImagePool{
	pools: make(map[string]*sync.Pool),
}

// Get returns an image of the given kind and size from the global pool.
// Contents are undefined; callers overwrite the whole rectangle.
func Get(kind Kind, rect image.Rectangle) draw.Image {
	return globalPool.Get(kind, rect)
}

// Put returns an image to the global pool.
func Put(kind Kind, img draw.Image) {
	globalPool.Put(kind, img)
}

func poolKey(kind Kind, rect image.Rectangle) string {
	return fmt.Sprintf("%s/%s", kind, rect)
}

func newImage(kind Kind, rect image.Rectangle) draw.Image {
	switch kind {
	case Uint16:
		return image.NewRGBA64(rect)
	case Float32:
		return NewRGBA32F(rect)
	default:
		return image.NewRGBA(rect)
	}
}

func (p *ImagePool) Get(kind Kind, rect image.Rectangle) draw.Image {
	key := poolKey(kind, rect)
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return newImage(kind, rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(draw.Image)
}

func (p *ImagePool) Put(kind Kind, img draw.Image) {
	if img == nil {
		return
	}
	key := poolKey(kind, img.Bounds())
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
