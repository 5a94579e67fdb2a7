package flow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/logger"
	"github.com/yildizm/domainslab/internal/notify"
)

// Inline messages shown next to the search box
const (
	EmptyKeywordMessage = "Please enter a keyword"
	NotProcessedMessage = "Upload and process a file before searching"
)

// SearchController owns the keyword, the loading flag and the current
// result locator.
type SearchController struct {
	searcher Searcher
	gate     Gate
	log      *logger.Logger
	notifier notify.Notifier

	mu          sync.Mutex
	state       SearchState
	generation  uint64
	cancel      context.CancelFunc
	subscribers subscribers[SearchState]
}

// NewSearchController creates a search controller. gate may be nil when
// the caller guarantees the upload already completed.
func NewSearchController(searcher Searcher, gate Gate, log *logger.Logger, notifier notify.Notifier) *SearchController {
	if log == nil {
		log = logger.Discard()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &SearchController{
		searcher: searcher,
		gate:     gate,
		log:      log,
		notifier: notifier,
	}
}

// State returns a snapshot of the controller state
func (c *SearchController) State() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the current result, if any
func (c *SearchController) Result() (SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Result == nil {
		return SearchResult{}, false
	}
	return *c.state.Result, true
}

// Subscribe registers fn for every state change and returns a function
// that removes it.
func (c *SearchController) Subscribe(fn func(SearchState)) func() {
	c.mu.Lock()
	id := c.subscribers.add(fn)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.subscribers.remove(id)
		c.mu.Unlock()
	}
}

// Search queries the backend for keyword. Empty keywords and searches
// before the upload gate opens fail locally without a request. Starting a
// search cancels the one in flight; its late response is dropped.
func (c *SearchController) Search(ctx context.Context, keyword string) error {
	keyword = strings.TrimSpace(keyword)

	if keyword == "" {
		return c.reject(NewValidationError("keyword", "", EmptyKeywordMessage))
	}
	if c.gate != nil && !c.gate.Processed() {
		return c.reject(NewValidationError("keyword", keyword, NotProcessedMessage))
	}

	searchCtx, gen := c.begin(ctx, keyword)
	started := time.Now()
	c.log.InfoWithFields("search started", []logger.Field{logger.F("keyword", keyword)})

	locator, err := c.searcher.Search(searchCtx, keyword)

	return c.finish(gen, keyword, locator, started, err)
}

// Cancel aborts a search in flight
func (c *SearchController) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *SearchController) reject(err *ValidationError) error {
	c.log.Debug("search rejected: %s", err.Message)

	c.mu.Lock()
	c.state.InputError = err.Message
	snapshot, fns := c.state, c.subscribers.list()
	c.mu.Unlock()

	publish(snapshot, fns)
	return err
}

func (c *SearchController) begin(ctx context.Context, keyword string) (context.Context, uint64) {
	searchCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.state = SearchState{Keyword: keyword, Loading: true}
	snapshot, fns := c.state, c.subscribers.list()
	c.mu.Unlock()

	publish(snapshot, fns)
	return searchCtx, gen
}

func (c *SearchController) finish(gen uint64, keyword, locator string, started time.Time, err error) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.log.Debug("discarding superseded search for %q", keyword)
		return err
	}
	canceled := err != nil && api.IsCanceled(err)
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Loading = false
	switch {
	case err == nil:
		c.state.Result = &SearchResult{Keyword: keyword, Locator: locator}
	case canceled:
	default:
		c.state.Error = api.Message(err)
	}
	snapshot, fns := c.state, c.subscribers.list()
	c.mu.Unlock()

	publish(snapshot, fns)

	fields := []logger.Field{logger.F("keyword", keyword), logger.Duration(time.Since(started))}
	switch {
	case err == nil:
		c.log.InfoWithFields("search finished", append(fields, logger.F("locator", locator)))
	case canceled:
		c.log.InfoWithFields("search canceled", fields)
	default:
		c.log.ErrorWithFields("search failed", append(fields, logger.Error(err)))
		c.notifier.Error(snapshot.Error)
	}

	return err
}
