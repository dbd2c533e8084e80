package reddit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter caps in-flight requests per host and spaces request starts.
// A zero interval disables spacing; maxPerHost <= 0 disables the cap.
type hostLimiter struct {
	maxPerHost int
	interval   time.Duration

	mu    sync.Mutex
	gates map[string]*hostGate
}

type hostGate struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

func newHostLimiter(maxPerHost int, interval time.Duration) *hostLimiter {
	return &hostLimiter{
		maxPerHost: maxPerHost,
		interval:   interval,
		gates:      make(map[string]*hostGate),
	}
}

func (hl *hostLimiter) gate(host string) *hostGate {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	g, ok := hl.gates[host]
	if !ok {
		g = &hostGate{}
		if hl.maxPerHost > 0 {
			g.sem = make(chan struct{}, hl.maxPerHost)
		}
		if hl.interval > 0 {
			g.limiter = rate.NewLimiter(rate.Every(hl.interval), 1)
		}
		hl.gates[host] = g
	}
	return g
}

// acquire blocks until a slot for host is free and the spacing has elapsed.
// The returned release must be called exactly once when err is nil.
func (hl *hostLimiter) acquire(ctx context.Context, host string) (release func(), err error) {
	g := hl.gate(host)

	if g.sem != nil {
		select {
		case g.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			if g.sem != nil {
				<-g.sem
			}
			return nil, err
		}
	}

	return func() {
		if g.sem != nil {
			<-g.sem
		}
	}, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
