package reorder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type updateCall struct {
	ChapterID int
	Number    int
}

// fakeGateway serves scripted pages and records every call. Updates mutate
// the scripted state so refetches after a persist see the new number.
type fakeGateway struct {
	mu          sync.Mutex
	pages       map[int][]Chapter
	totalPages  int
	fetchCalls  []int
	updateCalls []updateCall
	fetchErr    error
	updateErr   error
}

func newFakeGateway(totalPages int, pages map[int][]Chapter) *fakeGateway {
	return &fakeGateway{pages: pages, totalPages: totalPages}
}

func (g *fakeGateway) FetchPage(_ context.Context, _, page int) (*Page, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls = append(g.fetchCalls, page)
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	chapters := make([]Chapter, len(g.pages[page]))
	copy(chapters, g.pages[page])
	return &Page{
		Chapters:     chapters,
		Page:         page,
		TotalPages:   g.totalPages,
		ItemsPerPage: len(chapters),
	}, nil
}

func (g *fakeGateway) UpdateChapterNumber(_ context.Context, chapterID, number int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updateCalls = append(g.updateCalls, updateCall{ChapterID: chapterID, Number: number})
	if g.updateErr != nil {
		return g.updateErr
	}
	for page, chapters := range g.pages {
		for i := range chapters {
			if chapters[i].ID == chapterID {
				g.pages[page][i].Number = number
			}
		}
	}
	return nil
}

func (g *fakeGateway) fetches() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, len(g.fetchCalls))
	copy(out, g.fetchCalls)
	return out
}

func (g *fakeGateway) updates() []updateCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]updateCall, len(g.updateCalls))
	copy(out, g.updateCalls)
	return out
}

func chapterIDs(chapters []Chapter) []int {
	ids := make([]int, len(chapters))
	for i, ch := range chapters {
		ids[i] = ch.ID
	}
	return ids
}

func singlePageGateway(chapters ...Chapter) *fakeGateway {
	return newFakeGateway(1, map[int][]Chapter{1: chapters})
}

func loadController(t *testing.T, gw *fakeGateway, page int, opts Options) *Controller {
	t.Helper()
	ctrl := NewController(gw, 1, opts)
	require.NoError(t, ctrl.Load(context.Background(), page))
	return ctrl
}

func TestHandleDrop_SelfDrop(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(Chapter{ID: 1, Number: 1}, Chapter{ID: 2, Number: 2})
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	before := ctrl.DisplayedOrder()
	err := ctrl.HandleDrop(context.Background(), 2, 2)

	require.NoError(t, err)
	assert.Equal(t, before, ctrl.DisplayedOrder())
	assert.Empty(t, gw.updates())
	assert.Equal(t, []int{1}, gw.fetches()) // only the initial load
}

func TestHandleDrop_UnknownChapter(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(Chapter{ID: 1, Number: 1}, Chapter{ID: 2, Number: 2})
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	err := ctrl.HandleDrop(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrUnknownChapter)

	err = ctrl.HandleDrop(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrUnknownChapter)
	assert.Empty(t, gw.updates())
}

func TestHandleDrop_MoveToFront(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 10},
		Chapter{ID: 2, Number: 20},
		Chapter{ID: 3, Number: 30},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 3, 1))
	ctrl.Flush(context.Background())

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, 3, updates[0].ChapterID)
	// New neighbor has number 10, so the result lands in [1, 9].
	assert.GreaterOrEqual(t, updates[0].Number, 1)
	assert.LessOrEqual(t, updates[0].Number, 9)
}

func TestHandleDrop_MoveToFrontNoHeadroom(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 1},
		Chapter{ID: 2, Number: 2},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 2, 1))
	ctrl.Flush(context.Background())

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, updateCall{ChapterID: 2, Number: 1}, updates[0])
}

func TestHandleDrop_MoveToBack(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 10},
		Chapter{ID: 2, Number: 20},
		Chapter{ID: 3, Number: 30},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 1, 3))
	ctrl.Flush(context.Background())

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, updateCall{ChapterID: 1, Number: 31}, updates[0])
}

func TestHandleDrop_MoveToBackClampsToOne(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: -5},
		Chapter{ID: 2, Number: -3},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 1, 2))
	ctrl.Flush(context.Background())

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, updateCall{ChapterID: 1, Number: 1}, updates[0])
}

func TestHandleDrop_MoveBetweenGap(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 10},
		Chapter{ID: 2, Number: 20},
		Chapter{ID: 3, Number: 30},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 3, 2))
	ctrl.Flush(context.Background())

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, 3, updates[0].ChapterID)
	assert.Greater(t, updates[0].Number, 10)
	assert.Less(t, updates[0].Number, 20)
}

func TestHandleDrop_MoveBetweenAdjacentFallsBack(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 5},
		Chapter{ID: 2, Number: 6},
		Chapter{ID: 3, Number: 9},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	// Moving between neighbors 5 and 6 has no gap; the fallback is prev+1
	// even though it duplicates the right neighbor's number.
	require.NoError(t, ctrl.HandleDrop(context.Background(), 3, 2))
	ctrl.Flush(context.Background())

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, updateCall{ChapterID: 3, Number: 6}, updates[0])
}

func TestHandleDrop_OtherChaptersUntouched(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 10},
		Chapter{ID: 2, Number: 20},
		Chapter{ID: 3, Number: 30},
		Chapter{ID: 4, Number: 40},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 4, 2))
	ctrl.Flush(context.Background())

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, 4, updates[0].ChapterID)

	// Everyone else keeps their numbers on the server.
	for _, ch := range gw.pages[1] {
		switch ch.ID {
		case 1:
			assert.Equal(t, 10, ch.Number)
		case 2:
			assert.Equal(t, 20, ch.Number)
		case 3:
			assert.Equal(t, 30, ch.Number)
		}
	}
}

func TestDebounce_CoalescesToLastScheduled(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 10},
		Chapter{ID: 2, Number: 20},
		Chapter{ID: 3, Number: 30},
		Chapter{ID: 4, Number: 40},
	)
	ctrl := loadController(t, gw, 1, Options{DebounceDelay: 40 * time.Millisecond})
	defer ctrl.Close()

	ctx := context.Background()
	require.NoError(t, ctrl.HandleDrop(ctx, 4, 3))
	require.NoError(t, ctrl.HandleDrop(ctx, 4, 2))
	require.NoError(t, ctrl.HandleDrop(ctx, 4, 1))

	require.Eventually(t, func() bool {
		return len(gw.updates()) > 0
	}, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, 4, updates[0].ChapterID)
	// Only the final position (front of the list) was persisted.
	assert.LessOrEqual(t, updates[0].Number, 9)
}

func TestDebounce_FailureRollsBackDisplayedOrder(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 10},
		Chapter{ID: 2, Number: 20},
		Chapter{ID: 3, Number: 30},
	)
	var errs []error
	ctrl := loadController(t, gw, 1, Options{OnError: func(err error) { errs = append(errs, err) }})
	defer ctrl.Close()

	before := ctrl.DisplayedOrder()

	gw.mu.Lock()
	gw.updateErr = errors.New("boom")
	gw.mu.Unlock()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 3, 1))
	assert.NotEqual(t, chapterIDs(before), chapterIDs(ctrl.DisplayedOrder()))

	ctrl.Flush(context.Background())

	assert.Equal(t, chapterIDs(before), chapterIDs(ctrl.DisplayedOrder()))
	assert.NotEmpty(t, errs)
}

func TestHandleDrop_MoveToPreviousPage(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway(2, map[int][]Chapter{
		1: {{ID: 1, Number: 10}, {ID: 2, Number: 20}, {ID: 3, Number: 30}},
		2: {{ID: 4, Number: 40}, {ID: 5, Number: 50}, {ID: 6, Number: 60}},
	})
	ctrl := loadController(t, gw, 2, Options{})
	defer ctrl.Close()

	// Dropping onto the first slot of page 2 sends the chapter to page 1.
	require.NoError(t, ctrl.HandleDrop(context.Background(), 5, 4))

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, updateCall{ChapterID: 5, Number: 31}, updates[0])

	assert.Equal(t, 1, ctrl.CurrentPage())
	// Initial load of 2, adjacent fetch of 1, refetch of new current page 1,
	// refresh of the page the chapter left.
	assert.Equal(t, []int{2, 1, 1, 2}, gw.fetches())
}

func TestHandleDrop_MoveToNextPage(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway(2, map[int][]Chapter{
		1: {{ID: 1, Number: 10}, {ID: 2, Number: 20}, {ID: 3, Number: 30}},
		2: {{ID: 4, Number: 40}, {ID: 5, Number: 50}},
	})
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	// Dropping onto the last slot of page 1 with a page 2 present sends the
	// chapter forward.
	require.NoError(t, ctrl.HandleDrop(context.Background(), 1, 3))

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, updateCall{ChapterID: 1, Number: 39}, updates[0])

	assert.Equal(t, 2, ctrl.CurrentPage())
	assert.Equal(t, []int{1, 2, 2, 1}, gw.fetches())
}

func TestHandleDrop_MoveToNextPageEmptyTarget(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway(2, map[int][]Chapter{
		1: {{ID: 1, Number: 1}, {ID: 2, Number: 2}},
		2: {},
	})
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	require.NoError(t, ctrl.HandleDrop(context.Background(), 1, 2))

	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, updateCall{ChapterID: 1, Number: 1}, updates[0])
}

func TestHandleDrop_CrossPageFailureRollsBack(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway(2, map[int][]Chapter{
		1: {{ID: 1, Number: 10}, {ID: 2, Number: 20}},
		2: {{ID: 3, Number: 30}, {ID: 4, Number: 40}},
	})
	var errs []error
	ctrl := loadController(t, gw, 2, Options{OnError: func(err error) { errs = append(errs, err) }})
	defer ctrl.Close()

	before := ctrl.DisplayedOrder()

	gw.mu.Lock()
	gw.updateErr = errors.New("boom")
	gw.mu.Unlock()

	err := ctrl.HandleDrop(context.Background(), 4, 3)
	require.Error(t, err)

	gw.mu.Lock()
	gw.updateErr = nil
	gw.mu.Unlock()

	assert.Equal(t, chapterIDs(before), chapterIDs(ctrl.DisplayedOrder()))
	assert.Equal(t, 2, ctrl.CurrentPage())
	assert.NotEmpty(t, errs)
}

func TestHandleDrop_RejectedWhileReconciling(t *testing.T) {
	t.Parallel()
	gw := newFakeGateway(2, map[int][]Chapter{
		1: {{ID: 1, Number: 10}, {ID: 2, Number: 20}},
		2: {{ID: 3, Number: 30}, {ID: 4, Number: 40}},
	})

	var ctrl *Controller
	var reentrantErr error
	armed := false
	ctrl = NewController(gw, 1, Options{
		OnUpdate: func(_ []Chapter, _, _ int) {
			// A second gesture arriving mid cross-page move must be refused.
			if armed {
				armed = false
				reentrantErr = ctrl.HandleDrop(context.Background(), 4, 3)
			}
		},
	})
	defer ctrl.Close()
	require.NoError(t, ctrl.Load(context.Background(), 2))

	armed = true
	require.NoError(t, ctrl.HandleDrop(context.Background(), 4, 3))
	assert.ErrorIs(t, reentrantErr, ErrReorderInFlight)
}

func TestFlush_NoPendingIsNoop(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(Chapter{ID: 1, Number: 1}, Chapter{ID: 2, Number: 2})
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	ctrl.Flush(context.Background())
	assert.Empty(t, gw.updates())
}

func TestClose_CancelsPendingUpdate(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 1, Number: 10},
		Chapter{ID: 2, Number: 20},
		Chapter{ID: 3, Number: 30},
	)
	ctrl := loadController(t, gw, 1, Options{DebounceDelay: 20 * time.Millisecond})

	require.NoError(t, ctrl.HandleDrop(context.Background(), 3, 1))
	ctrl.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Empty(t, gw.updates())
}

func TestLoad_SortsByNumberThenID(t *testing.T) {
	t.Parallel()
	gw := singlePageGateway(
		Chapter{ID: 9, Number: 5},
		Chapter{ID: 2, Number: 5},
		Chapter{ID: 1, Number: 3},
	)
	ctrl := loadController(t, gw, 1, Options{})
	defer ctrl.Close()

	assert.Equal(t, []int{1, 2, 9}, chapterIDs(ctrl.DisplayedOrder()))
}
