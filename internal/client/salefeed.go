package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/calleja/devgear/internal/domain"
)

// ErrSuperseded reports that a newer refresh was started while this one was
// in flight; the caller should show Latest instead.
var ErrSuperseded = errors.New("sale fetch superseded by a newer request")

// SaleFeed serializes competing sale-listing fetches. Nothing cancels an
// in-flight request, so a stale response must not overwrite newer state:
// last request wins, responses to superseded requests are dropped.
type SaleFeed struct {
	Client *Client

	gen atomic.Uint64

	mu     sync.Mutex
	latest []domain.SaleProduct
	loaded bool
}

// Refresh fetches the sale listing. If another Refresh started after this
// one, the result is discarded and ErrSuperseded returned.
func (f *SaleFeed) Refresh(ctx context.Context) ([]domain.SaleProduct, error) {
	gen := f.gen.Add(1)
	list, err := f.Client.SaleProducts(ctx)
	return f.publish(gen, list, err)
}

// publish accepts a fetch result under the mutex. The generation check and
// the write happen in one critical section so a response that was superseded
// after its fetch completed can never overwrite a newer listing.
func (f *SaleFeed) publish(gen uint64, list []domain.SaleProduct, err error) ([]domain.SaleProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen.Load() != gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	f.latest = list
	f.loaded = true
	return list, nil
}

// Latest returns the most recent accepted listing.
func (f *SaleFeed) Latest() ([]domain.SaleProduct, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.loaded
}
