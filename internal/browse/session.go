package browse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/video-vault/internal/models"
)

// DefaultDebounce is the quiet period after the last search edit before a
// fetch is issued.
const DefaultDebounce = 400 * time.Millisecond

// Catalog is the read surface the session fetches from. *Client implements
// it; tests substitute their own.
type Catalog interface {
	FetchPage(ctx context.Context, query models.ListQuery) (*models.VideoPage, error)
	FetchMeta(ctx context.Context) (*models.LabelIndex, error)
}

type fetchMode int

const (
	modeReplace fetchMode = iota
	modeAppend
)

// Snapshot is a point-in-time copy of the browsing state handed to the
// presentation layer.
type Snapshot struct {
	Items       []models.Video
	Page        int
	TotalPages  int
	HasMore     bool
	Loading     bool
	Label       string
	Search      string
	Labels      []models.LabelCount
	TotalVideos int
}

// SessionConfig tunes a browsing session. Zero values pick the defaults.
type SessionConfig struct {
	PageSize int
	Debounce time.Duration
	Timeout  time.Duration
	// OnChange is invoked, without the session lock held, after every applied
	// state change.
	OnChange func(Snapshot)
	// OnError is invoked when a fetch fails. The browsing state is left
	// exactly as it was, so the presentation layer keeps showing the prior
	// list.
	OnError func(error)
}

// Session owns the in-memory browsing state: the materialized item list, the
// active label/search predicate, the pagination cursor and the loading flag.
// All fetches run asynchronously; every fetch carries the generation it was
// issued under, and a result whose generation no longer matches the current
// one is discarded instead of being applied to a list it was not fetched
// for.
type Session struct {
	catalog  Catalog
	pageSize int
	debounce time.Duration
	timeout  time.Duration
	onChange func(Snapshot)
	onError  func(error)

	mu            sync.Mutex
	gen           uint64
	label         string
	search        string
	pendingSearch string
	timer         *time.Timer
	items         []models.Video
	page          int
	totalPages    int
	hasMore       bool
	loading       bool
	labels        []models.LabelCount
	totalVideos   int

	wg sync.WaitGroup
}

// NewSession creates a browsing session over a catalog. No fetch is issued
// until Refresh or one of the predicate setters is called.
func NewSession(catalog Catalog, cfg SessionConfig) *Session {
	if cfg.PageSize <= 0 {
		cfg.PageSize = models.DefaultPageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Session{
		catalog:  catalog,
		pageSize: cfg.PageSize,
		debounce: cfg.Debounce,
		timeout:  cfg.Timeout,
		onChange: cfg.OnChange,
		onError:  cfg.OnError,
		label:    models.LabelAll,
		hasMore:  true,
		page:     0,
	}
}

// Snapshot returns a copy of the current browsing state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	items := make([]models.Video, len(s.items))
	copy(items, s.items)
	labels := make([]models.LabelCount, len(s.labels))
	copy(labels, s.labels)
	return Snapshot{
		Items:       items,
		Page:        s.page,
		TotalPages:  s.totalPages,
		HasMore:     s.hasMore,
		Loading:     s.loading,
		Label:       s.label,
		Search:      s.search,
		Labels:      labels,
		TotalVideos: s.totalVideos,
	}
}

// Refresh resets the list and fetches page 1 under the current predicate.
// Called on startup and after a mutation changed the corpus.
func (s *Session) Refresh() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

// RefreshMeta re-fetches the label index. Aggregates are corpus-global, so
// the result is applied regardless of any predicate change in between.
func (s *Session) RefreshMeta() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		index, err := s.catalog.FetchMeta(ctx)
		if err != nil {
			s.reportError(fmt.Errorf("failed to fetch label index: %w", err))
			return
		}
		s.mu.Lock()
		s.labels = index.Labels
		s.totalVideos = index.TotalVideos
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
	}()
}

// SetLabel switches the label filter and resets immediately. The sentinel
// "all" clears the filter.
func (s *Session) SetLabel(label string) {
	if label == "" {
		label = models.LabelAll
	}
	s.mu.Lock()
	if label == s.label {
		s.mu.Unlock()
		return
	}
	s.label = label
	s.cancelTimerLocked()
	// A typed-but-uncommitted search edit rides along with the label change
	// instead of waiting out the rest of its debounce window.
	s.search = s.pendingSearch
	s.resetLocked()
	s.mu.Unlock()
}

// SetSearch records a search edit. The reset fetch only runs after the
// debounce window passes with no further edits; an earlier scheduled fetch
// is cancelled by every new edit.
func (s *Session) SetSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingSearch = text
	s.cancelTimerLocked()
	s.timer = time.AfterFunc(s.debounce, s.commitSearch)
}

func (s *Session) commitSearch() {
	s.mu.Lock()
	s.timer = nil
	if s.pendingSearch == s.search {
		s.mu.Unlock()
		return
	}
	s.search = s.pendingSearch
	s.resetLocked()
	s.mu.Unlock()
}

// LoadMore fetches the next page in append mode. Triggers are ignored while
// a load is already in flight or when the last page was reached; it reports
// whether a fetch was started.
func (s *Session) LoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading || !s.hasMore {
		return false
	}
	s.loading = true
	s.startFetchLocked(s.page+1, modeAppend)
	return true
}

// JumpToPage fetches an explicit page in replace mode, for a discrete pager.
// Page values outside [1, totalPages] are rejected.
func (s *Session) JumpToPage(page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// An empty result set reports zero total pages; only page 1 is a valid
	// target then.
	maxPage := s.totalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if page < 1 || page > maxPage {
		return fmt.Errorf("page %d out of range [1, %d]", page, maxPage)
	}
	// Invalidate any in-flight append; its result would interleave with the
	// jumped-to page.
	s.gen++
	s.loading = true
	s.startFetchLocked(page, modeReplace)
	return nil
}

// Wait blocks until every in-flight fetch has completed or been discarded.
// Pending debounce timers are not waited for.
func (s *Session) Wait() {
	s.wg.Wait()
}

// resetLocked clears the list and starts a replace-mode fetch of page 1.
// Bumping the generation makes any in-flight result stale.
func (s *Session) resetLocked() {
	s.gen++
	s.items = nil
	s.page = 1
	s.hasMore = true
	s.loading = true
	s.startFetchLocked(1, modeReplace)
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// startFetchLocked launches an asynchronous page fetch tagged with the
// current generation and predicate. Must be called with the lock held.
func (s *Session) startFetchLocked(page int, mode fetchMode) {
	gen := s.gen
	query := models.ListQuery{
		Page:   page,
		Limit:  s.pageSize,
		Label:  s.label,
		Search: s.search,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		result, err := s.catalog.FetchPage(ctx, query)
		s.apply(gen, page, mode, result, err)
	}()
}

// apply reconciles one fetch result into the session. Results from an older
// generation are dropped without touching any state, including the loading
// flag, which by then belongs to a newer fetch.
func (s *Session) apply(gen uint64, page int, mode fetchMode, result *models.VideoPage, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}

	s.loading = false
	if err != nil {
		s.mu.Unlock()
		s.reportError(err)
		return
	}

	switch mode {
	case modeReplace:
		s.items = result.Videos
	case modeAppend:
		s.items = append(s.items, result.Videos...)
	}
	s.page = page
	s.totalPages = result.Pagination.TotalPages
	s.hasMore = result.Pagination.HasNextPage
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

func (s *Session) reportError(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}
