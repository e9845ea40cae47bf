// Package imagecheck validates product image URLs. A URL is kept when a
// GET answers 2xx with an image content type inside the probe timeout;
// anything else resolves to the fallback image. Verdicts are cached in
// process and, when connected, in Redis.
package imagecheck

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"mime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shashiranjanraj/bloomthread/config"
	"github.com/shashiranjanraj/bloomthread/pkg/cache"
	bthttp "github.com/shashiranjanraj/bloomthread/pkg/http"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
	"github.com/shashiranjanraj/bloomthread/pkg/metrics"
	"github.com/shashiranjanraj/bloomthread/pkg/workerpool"
)

// Options tunes a Checker.
type Options struct {
	Enabled     bool          // false keeps every URL as is in ResolveAll
	Timeout     time.Duration // per probe
	FallbackURL string
	TTL         time.Duration // verdict cache lifetime
	Workers     int
}

// OptionsFromConfig reads the IMAGE_* settings.
func OptionsFromConfig() Options {
	return Options{
		Enabled:     config.ImageValidation(),
		Timeout:     config.ImageProbeTimeout(),
		FallbackURL: config.ImageFallbackURL(),
		TTL:         config.ImageCacheTTL(),
		Workers:     config.ImageWorkers(),
	}
}

// Result is the verdict for one URL.
type Result struct {
	Original string `json:"original"`
	URL      string `json:"url"` // Original, or the fallback
	OK       bool   `json:"ok"`
	Cached   bool   `json:"cached"`
}

type verdict struct {
	ok      bool
	expires time.Time
}

// Checker probes and caches image URLs. Safe for concurrent use.
type Checker struct {
	opts  Options
	pool  *workerpool.Pool
	group singleflight.Group
	now   func() time.Time

	mu   sync.Mutex
	memo map[string]verdict
}

func New(opts Options) *Checker {
	return &Checker{
		opts: opts,
		pool: workerpool.New(opts.Workers),
		now:  time.Now,
		memo: map[string]verdict{},
	}
}

// Options returns the checker's settings.
func (c *Checker) Options() Options { return c.opts }

// Close stops the probe workers.
func (c *Checker) Close() { c.pool.Shutdown() }

// Check resolves url. An empty url goes straight to the fallback. The
// probe is bounded by the checker's timeout, not by ctx.
func (c *Checker) Check(ctx context.Context, url string) Result {
	url = strings.TrimSpace(url)
	if url == "" {
		metrics.ImageProbes.WithLabelValues("fallback").Inc()
		return c.result(url, false, false)
	}

	if ok, hit := c.lookup(ctx, url); hit {
		metrics.ImageProbes.WithLabelValues("cached").Inc()
		return c.result(url, ok, true)
	}

	// Waiters share the cached verdict; no single caller's cancellation
	// decides it.
	v, _, _ := c.group.Do(url, func() (any, error) {
		pctx := context.WithoutCancel(ctx)
		ok := c.probe(pctx, url)
		c.store(pctx, url, ok)
		return ok, nil
	})
	ok := v.(bool)
	if ok {
		metrics.ImageProbes.WithLabelValues("ok").Inc()
	} else {
		metrics.ImageProbes.WithLabelValues("fallback").Inc()
	}
	return c.result(url, ok, false)
}

func (c *Checker) result(url string, ok, cached bool) Result {
	r := Result{Original: url, URL: url, OK: ok, Cached: cached}
	if !ok {
		r.URL = c.opts.FallbackURL
	}
	return r
}

// ResolveAll checks every url on the worker pool and returns the
// resolved URLs in input order. With validation disabled the input is
// returned unchanged.
func (c *Checker) ResolveAll(ctx context.Context, urls []string) []string {
	out := make([]string, len(urls))
	if !c.opts.Enabled {
		copy(out, urls)
		return out
	}

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			out[i] = c.Check(ctx, u).URL
		}
		err := c.pool.SubmitCtx(ctx, task)
		switch {
		case err == nil:
		case errors.Is(err, workerpool.ErrPoolClosed):
			task()
		default:
			out[i] = c.opts.FallbackURL
			wg.Done()
		}
	}
	wg.Wait()
	return out
}

// Warm re-probes urls, ignoring cached verdicts, so page loads keep
// hitting a warm cache.
func (c *Checker) Warm(ctx context.Context, urls []string) {
	c.mu.Lock()
	for _, u := range urls {
		delete(c.memo, u)
	}
	c.mu.Unlock()
	_ = cache.Forget(ctx, keys(urls)...)

	resolved := c.ResolveAll(ctx, urls)
	fallbacks := 0
	for i := range urls {
		if resolved[i] != urls[i] {
			fallbacks++
		}
	}
	logger.WithCtx(ctx).Info("imagecheck: cache warmed", "urls", len(urls), "fallbacks", fallbacks)
}

// probe makes a single attempt; there are no retries.
func (c *Checker) probe(ctx context.Context, url string) bool {
	resp, err := bthttp.Get(url).
		WithContext(ctx).
		Header("Accept", "image/*").
		Timeout(c.opts.Timeout).
		DiscardBody().
		Send()
	if err != nil {
		logger.WithCtx(ctx).Debug("imagecheck: probe failed", "url", url, "error", err)
		return false
	}
	if !resp.OK() {
		return false
	}
	ct := resp.Header("Content-Type")
	if ct == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && strings.HasPrefix(mt, "image/")
}

func (c *Checker) lookup(ctx context.Context, url string) (ok, hit bool) {
	now := c.now()
	c.mu.Lock()
	v, found := c.memo[url]
	c.mu.Unlock()
	if found && now.Before(v.expires) {
		return v.ok, true
	}

	if cache.Get(ctx, key(url), &ok) {
		c.mu.Lock()
		c.memo[url] = verdict{ok: ok, expires: now.Add(c.opts.TTL)}
		c.mu.Unlock()
		return ok, true
	}
	return false, false
}

func (c *Checker) store(ctx context.Context, url string, ok bool) {
	c.mu.Lock()
	c.memo[url] = verdict{ok: ok, expires: c.now().Add(c.opts.TTL)}
	c.mu.Unlock()
	if err := cache.Set(ctx, key(url), ok, c.opts.TTL); err != nil {
		logger.WithCtx(ctx).Warn("imagecheck: cache write failed", "error", err)
	}
}

func key(url string) string {
	sum := sha1.Sum([]byte(url))
	return "bloomthread:img:" + hex.EncodeToString(sum[:])
}

func keys(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = key(u)
	}
	return out
}
