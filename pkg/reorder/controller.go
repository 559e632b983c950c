// Package reorder implements the drag-and-drop chapter reordering controller
// used by the admin console. It keeps an optimistic local copy of one page of
// chapters, computes new chapter numbers by fractional indexing between
// neighbors, and persists through a Gateway with a trailing-edge debounce.
package reorder

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultDebounceDelay is how long the controller waits after the last drop
// before persisting a chapter number change.
const DefaultDebounceDelay = 300 * time.Millisecond

var (
	// ErrUnknownChapter is returned when a drop references a chapter id that
	// is not in the displayed order.
	ErrUnknownChapter = errors.New("reorder: unknown chapter id")
	// ErrReorderInFlight is returned when a drop arrives while a cross-page
	// move is still reconciling with the server.
	ErrReorderInFlight = errors.New("reorder: cross-page move in flight")
)

// Chapter is the controller's view of a chapter. Display fields live in the
// catalog models; ordering only needs the id and the ordering key.
type Chapter struct {
	ID     int `json:"id"`
	Number int `json:"chapter_number"`
}

// Page is one page of chapters as returned by the gateway.
type Page struct {
	Chapters     []Chapter `json:"chapters"`
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	ItemsPerPage int       `json:"items_per_page"`
}

// Gateway is the persistence boundary the controller talks to.
type Gateway interface {
	FetchPage(ctx context.Context, audiobookID, page int) (*Page, error)
	UpdateChapterNumber(ctx context.Context, chapterID, number int) error
}

// Options configures a Controller.
type Options struct {
	// DebounceDelay overrides DefaultDebounceDelay when positive.
	DebounceDelay time.Duration
	// OnUpdate is called with a copy of the displayed order whenever it
	// changes (optimistic updates included).
	OnUpdate func(chapters []Chapter, page, totalPages int)
	// OnError is called when a persistence or fetch attempt fails. Errors are
	// non-fatal; the displayed order has already been rolled back.
	OnError func(error)
}

type pendingUpdate struct {
	chapterID int
	number    int
	seq       uint64
}

// Controller manages the chapter order for a single audiobook. Methods are
// intended to be called from a single UI goroutine; the debounce timer
// goroutine synchronizes through the controller's mutex.
type Controller struct {
	gateway     Gateway
	audiobookID int
	delay       time.Duration
	onUpdate    func([]Chapter, int, int)
	onError     func(error)

	mu                 sync.Mutex
	displayedOrder     []Chapter
	lastKnownGoodOrder []Chapter
	currentPage        int
	totalPages         int
	pending            *pendingUpdate
	pendingSeq         uint64
	timer              *time.Timer
	reconciling        bool
	closed             bool
}

// NewController creates a controller for one audiobook's chapters.
func NewController(gateway Gateway, audiobookID int, opts Options) *Controller {
	delay := opts.DebounceDelay
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	onUpdate := opts.OnUpdate
	if onUpdate == nil {
		onUpdate = func([]Chapter, int, int) {}
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(error) {}
	}
	return &Controller{
		gateway:     gateway,
		audiobookID: audiobookID,
		delay:       delay,
		onUpdate:    onUpdate,
		onError:     onError,
		currentPage: 1,
		totalPages:  1,
	}
}

// Load fetches the given page and resets both the displayed and last known
// good orders to the server's state.
func (c *Controller) Load(ctx context.Context, page int) error {
	p, err := c.gateway.FetchPage(ctx, c.audiobookID, page)
	if err != nil {
		return errors.WithStack(err)
	}
	c.applyPage(p)
	return nil
}

// CurrentPage returns the page the controller is displaying.
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

// TotalPages returns the page count from the last fetch.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// DisplayedOrder returns a copy of the chapters as currently displayed.
func (c *Controller) DisplayedOrder() []Chapter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneChapters(c.displayedOrder)
}

// HandleDrop processes a drag-and-drop gesture. sourceID is the dragged
// chapter and destinationID the chapter whose slot it was dropped on. A drop
// on the first slot of a later page moves the chapter to the previous page; a
// drop on the last slot with more pages ahead moves it to the next page.
// Everything else is an in-page move persisted through the debounce.
func (c *Controller) HandleDrop(ctx context.Context, sourceID, destinationID int) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.reconciling {
		c.mu.Unlock()
		return ErrReorderInFlight
	}

	srcIdx := indexOf(c.displayedOrder, sourceID)
	dstIdx := indexOf(c.displayedOrder, destinationID)
	if srcIdx < 0 || dstIdx < 0 {
		c.mu.Unlock()
		return ErrUnknownChapter
	}
	if sourceID == destinationID {
		c.mu.Unlock()
		return nil
	}

	page := c.currentPage
	total := c.totalPages
	last := len(c.displayedOrder) - 1

	switch {
	case dstIdx == 0 && page > 1:
		c.reconciling = true
		c.mu.Unlock()
		return c.moveToPreviousPage(ctx, sourceID)
	case dstIdx == last && page < total:
		c.reconciling = true
		c.mu.Unlock()
		return c.moveToNextPage(ctx, sourceID)
	default:
		c.moveInPageLocked(sourceID, srcIdx, dstIdx)
		return nil
	}
}

// moveInPageLocked applies the optimistic in-page move and schedules the
// debounced persist. Called with c.mu held; releases it before notifying.
func (c *Controller) moveInPageLocked(sourceID, srcIdx, dstIdx int) {
	order := cloneChapters(c.displayedOrder)
	moved := order[srcIdx]
	order = append(order[:srcIdx], order[srcIdx+1:]...)
	order = append(order[:dstIdx], append([]Chapter{moved}, order[dstIdx:]...)...)

	newNumber := numberForPosition(order, dstIdx)
	order[dstIdx].Number = newNumber

	c.displayedOrder = order
	c.schedulePendingLocked(sourceID, newNumber)

	snapshot := cloneChapters(order)
	page := c.currentPage
	total := c.totalPages
	c.mu.Unlock()

	c.onUpdate(snapshot, page, total)
}

// numberForPosition computes the chapter number for the element at idx from
// its neighbors. Midpoint between neighbors, falling back to prev+1 when the
// gap is exhausted. Duplicate numbers from the fallback are tolerated; the
// list sorts stably so display order survives them.
func numberForPosition(order []Chapter, idx int) int {
	switch {
	case len(order) == 1:
		return 1
	case idx == 0:
		next := order[1].Number
		if next > 1 {
			return next - 1
		}
		return 1
	case idx == len(order)-1:
		n := order[idx-1].Number + 1
		if n < 1 {
			n = 1
		}
		return n
	default:
		prev := order[idx-1].Number
		next := order[idx+1].Number
		mid := (prev + next) / 2
		if mid <= prev {
			mid = prev + 1
		}
		if mid < 1 {
			mid = 1
		}
		return mid
	}
}

// schedulePendingLocked replaces the single debounce slot and restarts the
// timer. Called with c.mu held.
func (c *Controller) schedulePendingLocked(chapterID, number int) {
	c.pendingSeq++
	seq := c.pendingSeq
	c.pending = &pendingUpdate{chapterID: chapterID, number: number, seq: seq}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		// The update outlives the gesture's context on purpose; in-flight
		// results after Close are discarded rather than cancelled.
		c.firePending(context.Background(), seq)
	})
}

// firePending sends the debounce slot if seq still identifies it. A stale
// timer that lost a Stop race finds a newer seq and does nothing.
func (c *Controller) firePending(ctx context.Context, seq uint64) {
	c.mu.Lock()
	if c.closed || c.pending == nil || c.pending.seq != seq {
		c.mu.Unlock()
		return
	}
	upd := *c.pending
	c.pending = nil
	c.timer = nil
	page := c.currentPage
	c.mu.Unlock()

	err := c.gateway.UpdateChapterNumber(ctx, upd.chapterID, upd.number)
	if err != nil {
		c.rollback(ctx, page, err)
		return
	}
	c.refreshPage(ctx, page)
}

// Flush fires any pending debounced update immediately. Intended for tests
// and teardown paths that cannot wait out the debounce window.
func (c *Controller) Flush(ctx context.Context) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	seq := c.pending.seq
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.firePending(ctx, seq)
}

// Close cancels any pending timer. In-flight gateway calls are not aborted;
// their results are discarded when they return.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) moveToPreviousPage(ctx context.Context, sourceID int) error {
	defer c.clearReconciling()

	c.mu.Lock()
	originalPage := c.currentPage
	targetPage := originalPage - 1
	c.removeFromDisplayedLocked(sourceID)

	adjacent, err := c.gateway.FetchPage(ctx, c.audiobookID, targetPage)
	if err != nil {
		return c.rollback(ctx, originalPage, err)
	}

	newNumber := 1
	if n := len(adjacent.Chapters); n > 0 {
		newNumber = adjacent.Chapters[n-1].Number + 1
	}

	return c.finishCrossPageMove(ctx, sourceID, newNumber, targetPage, originalPage)
}

func (c *Controller) moveToNextPage(ctx context.Context, sourceID int) error {
	defer c.clearReconciling()

	c.mu.Lock()
	originalPage := c.currentPage
	targetPage := originalPage + 1
	c.removeFromDisplayedLocked(sourceID)

	adjacent, err := c.gateway.FetchPage(ctx, c.audiobookID, targetPage)
	if err != nil {
		return c.rollback(ctx, originalPage, err)
	}

	newNumber := 1
	if len(adjacent.Chapters) > 0 {
		if first := adjacent.Chapters[0].Number; first > 1 {
			newNumber = first - 1
		}
	}

	return c.finishCrossPageMove(ctx, sourceID, newNumber, targetPage, originalPage)
}

// finishCrossPageMove persists the new number, moves the page pointer, and
// refreshes both affected pages. The update is awaited, never debounced.
func (c *Controller) finishCrossPageMove(ctx context.Context, chapterID, newNumber, targetPage, originalPage int) error {
	err := c.gateway.UpdateChapterNumber(ctx, chapterID, newNumber)
	if err != nil {
		return c.rollback(ctx, originalPage, err)
	}

	if err := c.Load(ctx, targetPage); err != nil {
		c.onError(err)
		return errors.WithStack(err)
	}
	// Refresh the page the chapter left so the gateway's view of it is
	// current; the controller only displays one page at a time.
	if _, err := c.gateway.FetchPage(ctx, c.audiobookID, originalPage); err != nil {
		c.onError(err)
	}
	return nil
}

// removeFromDisplayedLocked optimistically drops the chapter from the
// displayed order and notifies. Takes c.mu held, releases it.
func (c *Controller) removeFromDisplayedLocked(chapterID int) {
	order := make([]Chapter, 0, len(c.displayedOrder))
	for _, ch := range c.displayedOrder {
		if ch.ID != chapterID {
			order = append(order, ch)
		}
	}
	c.displayedOrder = order

	snapshot := cloneChapters(order)
	page := c.currentPage
	total := c.totalPages
	c.mu.Unlock()

	c.onUpdate(snapshot, page, total)
}

// rollback reverts the displayed order to the last server-confirmed one,
// refetches the page to resynchronize, and surfaces the original error.
func (c *Controller) rollback(ctx context.Context, page int, cause error) error {
	c.mu.Lock()
	c.displayedOrder = cloneChapters(c.lastKnownGoodOrder)
	snapshot := cloneChapters(c.displayedOrder)
	total := c.totalPages
	c.mu.Unlock()

	c.onUpdate(snapshot, page, total)

	// Best effort resync; the rollback already restored a coherent view.
	if err := c.Load(ctx, page); err != nil {
		c.onError(err)
	}

	c.onError(cause)
	return errors.WithStack(cause)
}

// refreshPage reconciles the displayed order with the server after a
// successful debounced update.
func (c *Controller) refreshPage(ctx context.Context, page int) {
	if err := c.Load(ctx, page); err != nil {
		c.onError(err)
	}
}

func (c *Controller) clearReconciling() {
	c.mu.Lock()
	c.reconciling = false
	c.mu.Unlock()
}

func (c *Controller) applyPage(p *Page) {
	order := cloneChapters(p.Chapters)
	// The server sorts, but the order is load bearing here, so re-sort.
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Number != order[j].Number {
			return order[i].Number < order[j].Number
		}
		return order[i].ID < order[j].ID
	})

	c.mu.Lock()
	c.displayedOrder = order
	c.lastKnownGoodOrder = cloneChapters(order)
	c.currentPage = p.Page
	c.totalPages = p.TotalPages
	snapshot := cloneChapters(order)
	page := c.currentPage
	total := c.totalPages
	c.mu.Unlock()

	c.onUpdate(snapshot, page, total)
}

func indexOf(chapters []Chapter, id int) int {
	for i, ch := range chapters {
		if ch.ID == id {
			return i
		}
	}
	return -1
}

func cloneChapters(chapters []Chapter) []Chapter {
	out := make([]Chapter, len(chapters))
	copy(out, chapters)
	return out
}
