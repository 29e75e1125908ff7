// Package crawl drives a full catalog run: resolving the target city,
// paginating every category, fanning product fetches out to a bounded
// worker pool, and funneling every completion back through one
// coordinating goroutine. Workers only fetch; all response handling,
// counters, and cursor state live on the coordinator, so no shared
// state needs locking beyond what the fetch layer owns.
package crawl

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"alkoteka-crawler/internal/catalog"
	"alkoteka-crawler/internal/extract"
	"alkoteka-crawler/internal/fetch"
	"alkoteka-crawler/internal/metrics"
	"alkoteka-crawler/internal/pipeline"
	"alkoteka-crawler/internal/sink"
)

// maxRetries caps resubmissions of one logical request.
const maxRetries = 3

// Fetcher is the slice of the fetch client the engine depends on.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (fetch.Response, error)
}

// Config controls one crawl run.
type Config struct {
	BaseURL          string
	ProductsEndpoint string
	CityEndpoint     string
	PerPage          int
	TargetCity       string
	SeedCityUUID     string
	ParseDetails     bool
	Concurrency      int
	CategoriesFile   string
	Categories       []string
}

// Engine executes the crawl state machine.
type Engine struct {
	cfg    Config
	client Fetcher
	out    sink.Sink
	logger *zap.Logger

	// Coordinator-owned state; only touched from Run's goroutine.
	cityUUID    string
	products    int
	citiesFound int
}

// New builds an Engine.
func New(cfg Config, client Fetcher, out sink.Sink, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = 20
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Engine{
		cfg:    cfg,
		client: client,
		out:    out,
		logger: logger.Named("crawl"),
	}
}

type taskKind int

const (
	taskList taskKind = iota
	taskDetail
)

// task is one logical request. attempt counts resubmissions after
// recoverable failures.
type task struct {
	kind        taskKind
	slug        string
	page        int
	categoryURL string
	url         string
	attempt     int
	// listData carries the paired list record a detail fetch falls back
	// to; nil for list tasks.
	listData catalog.Raw
}

type completion struct {
	task task
	resp fetch.Response
	err  error
}

// Run executes the crawl to natural termination: every category's
// pagination exhausted with no in-flight fetches remaining. The only
// error it returns is context cancellation; everything else degrades
// and is logged.
func (e *Engine) Run(ctx context.Context) error {
	start := time.Now()
	e.logger.Info("starting crawl", zap.String("target_city", e.cfg.TargetCity))

	e.cityUUID = e.resolveCity(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	categories := e.loadCategories()
	var pending []task
	for _, categoryURL := range categories {
		slug := categorySlug(categoryURL)
		if slug == "" {
			e.logger.Warn("could not extract category slug", zap.String("url", categoryURL))
			continue
		}
		pending = append(pending, task{
			kind:        taskList,
			slug:        slug,
			page:        1,
			categoryURL: categoryURL,
			url:         e.listURL(slug, 1),
		})
	}
	e.logger.Info("starting category crawl",
		zap.Int("categories", len(pending)),
		zap.String("city_uuid", e.cityUUID))

	e.dispatch(ctx, pending)

	e.logger.Info("crawl finished",
		zap.Int("products", e.products),
		zap.Int("cities_discovered", e.citiesFound),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	return ctx.Err()
}

// dispatch runs the worker pool and the single-writer completion loop.
func (e *Engine) dispatch(ctx context.Context, pending []task) {
	work := make(chan task)
	done := make(chan completion)
	defer close(work)

	for i := 0; i < e.cfg.Concurrency; i++ {
		go func() {
			for t := range work {
				resp, err := e.client.Fetch(ctx, fetch.Request{URL: t.url, Referer: t.categoryURL})
				done <- completion{task: t, resp: resp, err: err}
			}
		}()
	}

	inflight := 0
	canceled := false
	for inflight > 0 || (len(pending) > 0 && !canceled) {
		var workCh chan task
		var next task
		if len(pending) > 0 && !canceled {
			next = pending[0]
			workCh = work
		}

		select {
		case workCh <- next:
			pending = pending[1:]
			inflight++
		case c := <-done:
			inflight--
			pending = append(pending, e.handle(ctx, c)...)
		case <-ctx.Done():
			canceled = true
			pending = nil
		}
	}
}

// handle processes one completed fetch and returns the follow-up tasks.
// It runs only on the coordinator goroutine.
func (e *Engine) handle(ctx context.Context, c completion) []task {
	switch c.task.kind {
	case taskDetail:
		return e.handleDetail(ctx, c)
	default:
		return e.handleList(ctx, c)
	}
}

func (e *Engine) handleList(ctx context.Context, c completion) []task {
	t := c.task
	switch fetch.Classify(c.resp.StatusCode, c.err) {
	case fetch.OutcomeRetryable:
		if retry, ok := e.retry(t, c); ok {
			return []task{retry}
		}
		metrics.CategoriesTruncated.Inc()
		e.logger.Warn("category truncated after exhausting retries",
			zap.String("category", t.slug), zap.Int("page", t.page))
		return nil
	case fetch.OutcomeTerminal:
		metrics.CategoriesTruncated.Inc()
		e.logger.Warn("category truncated by terminal status",
			zap.String("category", t.slug),
			zap.Int("page", t.page),
			zap.Int("status", c.resp.StatusCode))
		return nil
	}

	products, meta, err := decodeList(c.resp.Body)
	if err != nil {
		metrics.CategoriesTruncated.Inc()
		e.logger.Error("category page payload unreadable, truncating category",
			zap.String("category", t.slug), zap.Int("page", t.page), zap.Error(err))
		return nil
	}

	e.logger.Info("category page processed",
		zap.String("category", t.slug),
		zap.Int("page", meta.CurrentPage),
		zap.Int("products", len(products)),
		zap.Int("total", meta.Total))

	var next []task
	for _, product := range products {
		if len(product) == 0 {
			continue
		}
		slug := product.Str("slug")
		if e.cfg.ParseDetails && slug != "" {
			next = append(next, task{
				kind:        taskDetail,
				slug:        slug,
				categoryURL: t.categoryURL,
				url:         e.detailURL(slug),
				listData:    product,
			})
			continue
		}
		e.emit(ctx, extract.FromList(product))
	}

	if meta.HasMorePages {
		page := meta.CurrentPage + 1
		if page <= t.page {
			page = t.page + 1
		}
		next = append(next, task{
			kind:        taskList,
			slug:        t.slug,
			page:        page,
			categoryURL: t.categoryURL,
			url:         e.listURL(t.slug, page),
		})
	}
	return next
}

func (e *Engine) handleDetail(ctx context.Context, c completion) []task {
	t := c.task

	// Transport failures get the standard retry budget; once exhausted,
	// or on any unsuccessful status or unreadable payload, the paired
	// list record is extracted instead. A product is never dropped.
	if c.err != nil {
		if retry, ok := e.retry(t, c); ok {
			return []task{retry}
		}
		e.logger.Warn("detail fetch dropped after exhausting retries, using list data",
			zap.String("slug", t.slug))
		e.fallbackToList(ctx, t)
		return nil
	}
	if c.resp.StatusCode != 200 {
		e.logger.Debug("detail fetch unsuccessful, using list data",
			zap.String("slug", t.slug), zap.Int("status", c.resp.StatusCode))
		e.fallbackToList(ctx, t)
		return nil
	}

	detail, err := decodeDetail(c.resp.Body)
	if err != nil {
		e.logger.Debug("detail payload unreadable, using list data",
			zap.String("slug", t.slug), zap.Error(err))
		e.fallbackToList(ctx, t)
		return nil
	}

	e.emit(ctx, extract.FromDetail(detail, t.listData))
	return nil
}

// retry resubmits a recoverable task until the attempt budget runs out.
// The resubmission carries no proxy assignment; the rotator picks a
// fresh egress on the next fetch.
func (e *Engine) retry(t task, c completion) (task, bool) {
	if t.attempt >= maxRetries {
		metrics.DroppedRequests.Inc()
		e.logger.Warn("request dropped after max retries",
			zap.String("url", t.url),
			zap.Int("attempts", t.attempt),
			zap.Error(c.err))
		return task{}, false
	}
	t.attempt++
	metrics.Retries.Inc()
	e.logger.Info("retrying request",
		zap.String("url", t.url),
		zap.Int("attempt", t.attempt),
		zap.Int("status", c.resp.StatusCode),
		zap.Error(c.err))
	return t, true
}

// fallbackToList extracts the paired list record when the detail fetch
// could not be used. An absent list record yields nothing.
func (e *Engine) fallbackToList(ctx context.Context, t task) {
	if len(t.listData) == 0 {
		return
	}
	e.emit(ctx, extract.FromList(t.listData))
}

// emit validates, cleans, and writes one product.
func (e *Engine) emit(ctx context.Context, p catalog.Product) {
	pipeline.Process(&p)
	if err := e.out.Write(ctx, p); err != nil {
		e.logger.Error("sink write failed", zap.String("rpc", p.RPC), zap.Error(err))
		return
	}
	e.products++
	metrics.Products.Inc()
}

func (e *Engine) cityURL(page int) string {
	q := url.Values{}
	q.Set("city_uuid", e.cfg.SeedCityUUID)
	q.Set("page", strconv.Itoa(page))
	return e.cfg.BaseURL + e.cfg.CityEndpoint + "?" + q.Encode()
}

func (e *Engine) listURL(slug string, page int) string {
	q := url.Values{}
	q.Set("city_uuid", e.cityUUID)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(e.cfg.PerPage))
	q.Set("root_category_slug", slug)
	return e.cfg.BaseURL + e.cfg.ProductsEndpoint + "?" + q.Encode()
}

func (e *Engine) detailURL(slug string) string {
	q := url.Values{}
	q.Set("city_uuid", e.cityUUID)
	return e.cfg.BaseURL + e.cfg.ProductsEndpoint + "/" + slug + "?" + q.Encode()
}
