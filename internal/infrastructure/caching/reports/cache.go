package reports

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Generator produces the bytes of a report that is not yet cached.
type Generator func(ctx context.Context) ([]byte, error)

// Outcome says how GetOrCreate obtained its bytes.
type Outcome string

const (
	OutcomeHit       Outcome = "hit"       // already stored
	OutcomeGenerated Outcome = "generated" // this caller ran the generator
	OutcomeShared    Outcome = "shared"    // one generation served several callers
)

// Cache guarantees at most one generation per scan id at a time. Callers that
// arrive while a generation is running wait for its result.
type Cache struct {
	store  *Store
	group  singleflight.Group
	logger *slog.Logger
}

func NewCache(store *Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{store: store, logger: logger}
}

func (c *Cache) Store() *Store { return c.store }

type flightResult struct {
	data    []byte
	outcome Outcome
}

// GetOrCreate returns the stored report for scanID, generating and storing it
// first if needed. A failed generation stores nothing. Generation outlives a
// cancelled caller so that other waiters still get the result.
func (c *Cache) GetOrCreate(ctx context.Context, scanID string, gen Generator) ([]byte, Outcome, error) {
	data, ok, err := c.store.Get(scanID)
	if err != nil {
		return nil, "", err
	}
	if ok {
		c.logger.Debug("Report cache hit", "scanId", scanID, "bytes", len(data))
		return data, OutcomeHit, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(scanID, func() (any, error) {
		// a flight that finished between the miss above and this call has
		// already stored the artifact
		if data, ok, err := c.store.Get(scanID); err != nil {
			return nil, err
		} else if ok {
			return flightResult{data: data, outcome: OutcomeHit}, nil
		}

		data, err := gen(flightCtx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Put(scanID, data); err != nil {
			return nil, err
		}
		c.logger.Info("Report stored", "scanId", scanID, "bytes", len(data))
		return flightResult{data: data, outcome: OutcomeGenerated}, nil
	})

	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, "", res.Err
		}
		fr := res.Val.(flightResult)
		outcome := fr.outcome
		if res.Shared && outcome == OutcomeGenerated {
			outcome = OutcomeShared
		}
		return fr.data, outcome, nil
	}
}
