package engine

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/models"
)

// Surface is a rendering surface: something that can load an address,
// execute its scripts and serialize the resulting DOM.
//
// A Surface is owned by exactly one fetch. Navigate returns once the
// surface reports the page loaded; dynamic content may still be arriving.
type Surface interface {
	Navigate(ctx context.Context, address string) error
	HTML(ctx context.Context) (string, error)
	Close() error
}

// SurfaceProvider hands out surfaces. Acquire blocks until a surface is
// available or ctx is done. Every acquired surface must be closed.
type SurfaceProvider interface {
	Acquire(ctx context.Context) (Surface, error)
	Stats() models.SurfaceStats
	Close() error
}

// Strategy turns a rendered document into a typed record. It must be pure:
// no I/O, no retained references to doc after it returns.
type Strategy[T any] func(doc *goquery.Document) (T, error)
