package availability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campus-sports-cli/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) AvailableTimeSlots(ctx context.Context, sport api.Sport, date string) ([]string, error) {
	args := m.Called(ctx, sport, date)
	slots, _ := args.Get(0).([]string)
	return slots, args.Error(1)
}

var afternoon = time.Date(2024, 1, 1, 14, 5, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveAwaitsInputWithoutFetching(t *testing.T) {
	cases := []struct {
		name  string
		sport api.Sport
		date  string
	}{
		{"no sport", "", "2024-01-01"},
		{"no date", api.SportSquash, ""},
		{"neither", "", ""},
		{"invalid date", api.SportSquash, "2024-02-30"},
		{"garbage date", api.SportSquash, "tomorrow-ish"},
		{"unknown sport", api.Sport("tennis"), "2024-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &mockSource{}
			result := Resolve(context.Background(), src, tc.sport, tc.date, afternoon)
			assert.Equal(t, AwaitingInput, result.Phase)
			src.AssertNotCalled(t, "AvailableTimeSlots", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestResolveFiltersPastSlotsToday(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, api.SportBadminton, "2024-01-01").
		Return([]string{"14:00", "14:30", "15:00"}, nil).Once()

	result := Resolve(context.Background(), src, api.SportBadminton, "2024-01-01", afternoon)

	assert.Equal(t, Loaded, result.Phase)
	assert.Equal(t, []string{"14:30", "15:00"}, result.Slots)
	src.AssertExpectations(t)
}

func TestResolveLeavesTomorrowUntouched(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, api.SportCricket, "2024-01-02").
		Return([]string{"00:00", "23:30"}, nil)

	late := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	result := Resolve(context.Background(), src, api.SportCricket, "2024-01-02", late)

	assert.Equal(t, []string{"00:00", "23:30"}, result.Slots)
}

func TestResolveFailureIsNotEmpty(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, api.SportSquash, "2024-01-02").
		Return(nil, errors.New("connection refused"))

	result := Resolve(context.Background(), src, api.SportSquash, "2024-01-02", afternoon)
	assert.Equal(t, Failed, result.Phase)
	assert.Error(t, result.Err)

	empty := &mockSource{}
	empty.On("AvailableTimeSlots", mock.Anything, api.SportSquash, "2024-01-02").Return([]string{}, nil)
	result = Resolve(context.Background(), empty, api.SportSquash, "2024-01-02", afternoon)
	assert.Equal(t, Loaded, result.Phase)
	assert.Empty(t, result.Slots)
	assert.NoError(t, result.Err)
}

func TestFilterPast(t *testing.T) {
	cases := []struct {
		name  string
		slots []string
		date  string
		want  []string
	}{
		{"same minute excluded", []string{"14:05", "14:06"}, "2024-01-01", []string{"14:06"}},
		{"keeps server order", []string{"16:00", "15:00", "09:00"}, "2024-01-01", []string{"16:00", "15:00"}},
		{"seconds suffix", []string{"14:00:00", "18:00:00"}, "2024-01-01", []string{"18:00:00"}},
		{"unparseable kept", []string{"noon", "13:00"}, "2024-01-01", []string{"noon"}},
		{"out of range hour kept", []string{"25:00", "-1:00", "+9:00", "09:75"}, "2024-01-01", []string{"25:00", "-1:00", "+9:00", "09:75"}},
		{"single digit hour", []string{"9:30", "15:30"}, "2024-01-01", []string{"15:30"}},
		{"other day", []string{"01:00"}, "2023-12-31", []string{"01:00"}},
		{"empty", nil, "2024-01-01", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterPast(tc.slots, tc.date, afternoon))
		})
	}
}

func TestParseBookableDate(t *testing.T) {
	date, err := ParseBookableDate("today", afternoon)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", date)

	date, err = ParseBookableDate("Tomorrow", afternoon)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", date)

	date, err = ParseBookableDate("2024-01-02", afternoon)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", date)

	_, err = ParseBookableDate("2024-01-03", afternoon)
	assert.ErrorContains(t, err, "only be made for")

	_, err = ParseBookableDate("01/02/2024", afternoon)
	assert.ErrorContains(t, err, "invalid date")

	_, err = ParseBookableDate("", afternoon)
	assert.Error(t, err)
}

func TestSelectorLifecycle(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, api.SportBadminton, "2024-01-02").
		Return([]string{"09:00", "10:00"}, nil).Once()

	sel := NewSelector(src, fixedClock(afternoon), nil)
	assert.Equal(t, AwaitingInput, sel.View().Phase)

	sel.SetSport(api.SportBadminton)
	assert.Equal(t, AwaitingInput, sel.View().Phase)

	sel.SetDate("2024-01-02")
	assert.Equal(t, Loading, sel.View().Phase)

	view := sel.Load(context.Background())
	assert.Equal(t, Loaded, view.Phase)
	assert.Equal(t, []string{"09:00", "10:00"}, view.Slots)

	// a second load for the same pair does not refetch
	sel.Load(context.Background())
	src.AssertNumberOfCalls(t, "AvailableTimeSlots", 1)

	require.NoError(t, sel.Select("10:00"))
	picked, ok := sel.Selection()
	require.True(t, ok)
	assert.Equal(t, Selection{Sport: api.SportBadminton, Date: "2024-01-02", TimeSlot: "10:00"}, picked)
	assert.Equal(t, "10:00", sel.View().Selected)
}

func TestSelectorRejectsUnofferedSlot(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, api.SportSquash, "2024-01-01").
		Return([]string{"14:00", "16:00"}, nil)

	sel := NewSelector(src, fixedClock(afternoon), nil)
	assert.ErrorIs(t, sel.Select("16:00"), ErrNotLoaded)

	sel.SetInputs(api.SportSquash, "2024-01-01")
	sel.Load(context.Background())

	assert.ErrorIs(t, sel.Select("12:00"), ErrSlotNotOffered)
	assert.ErrorIs(t, sel.Select("14:00"), ErrSlotNotOffered, "past slot is not offered")
	assert.NoError(t, sel.Select("16:00"))
}

func TestSelectorInputChangeClearsSelection(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, mock.Anything, mock.Anything).
		Return([]string{"18:00"}, nil)

	sel := NewSelector(src, fixedClock(afternoon), nil)
	sel.SetInputs(api.SportFootball, "2024-01-01")
	sel.Load(context.Background())
	require.NoError(t, sel.Select("18:00"))

	sel.SetSport(api.SportBasketball)
	_, ok := sel.Selection()
	assert.False(t, ok)
	assert.Empty(t, sel.View().Selected)
	assert.Equal(t, Loading, sel.View().Phase)

	sel.Load(context.Background())
	require.NoError(t, sel.Select("18:00"))
	sel.SetDate("2024-01-02")
	_, ok = sel.Selection()
	assert.False(t, ok)

	sel.SetDate("")
	assert.Equal(t, AwaitingInput, sel.View().Phase)
}

func TestSelectorFailureAndRetry(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, api.SportSquash, "2024-01-02").
		Return(nil, errors.New("502 Bad Gateway")).Once()
	src.On("AvailableTimeSlots", mock.Anything, api.SportSquash, "2024-01-02").
		Return([]string{}, nil).Once()

	sel := NewSelector(src, fixedClock(afternoon), nil)
	sel.SetInputs(api.SportSquash, "2024-01-02")

	view := sel.Load(context.Background())
	assert.Equal(t, Failed, view.Phase)
	assert.False(t, view.Empty())
	assert.Equal(t, "failed", view.State)
	assert.NotEmpty(t, view.Error)

	view = sel.Load(context.Background())
	assert.Equal(t, Failed, view.Phase, "no automatic retry")

	view = sel.Retry(context.Background())
	assert.Equal(t, Loaded, view.Phase)
	assert.True(t, view.Empty())
	src.AssertExpectations(t)
}

// blockingSource holds back the badminton answer until released.
type blockingSource struct {
	mu       sync.Mutex
	started  chan struct{}
	release  chan struct{}
	requests []api.Sport
}

func (b *blockingSource) AvailableTimeSlots(ctx context.Context, sport api.Sport, date string) ([]string, error) {
	b.mu.Lock()
	b.requests = append(b.requests, sport)
	b.mu.Unlock()
	if sport == api.SportBadminton {
		close(b.started)
		<-b.release
		return []string{"20:00", "21:00"}, nil
	}
	return []string{"16:00"}, nil
}

func TestSelectorIgnoresStaleResponse(t *testing.T) {
	src := &blockingSource{started: make(chan struct{}), release: make(chan struct{})}
	sel := NewSelector(src, fixedClock(afternoon), nil)

	sel.SetInputs(api.SportBadminton, "2024-01-01")
	done := make(chan View)
	go func() {
		done <- sel.Load(context.Background())
	}()
	<-src.started

	sel.SetSport(api.SportSquash)
	view := sel.Load(context.Background())
	require.Equal(t, Loaded, view.Phase)
	assert.Equal(t, []string{"16:00"}, view.Slots)
	require.NoError(t, sel.Select("16:00"))

	close(src.release)
	stale := <-done
	assert.Equal(t, api.SportSquash, stale.Sport)

	current := sel.View()
	assert.Equal(t, api.SportSquash, current.Sport)
	assert.Equal(t, []string{"16:00"}, current.Slots)
	assert.Equal(t, "16:00", current.Selected)
}

func TestViewRefiltersAtRenderTime(t *testing.T) {
	src := &mockSource{}
	src.On("AvailableTimeSlots", mock.Anything, api.SportSquash, "2024-01-01").
		Return([]string{"14:30", "15:00"}, nil).Once()

	now := afternoon
	sel := NewSelector(src, func() time.Time { return now }, nil)
	sel.SetInputs(api.SportSquash, "2024-01-01")
	assert.Equal(t, []string{"14:30", "15:00"}, sel.Load(context.Background()).Slots)

	now = time.Date(2024, 1, 1, 14, 45, 0, 0, time.UTC)
	assert.Equal(t, []string{"15:00"}, sel.View().Slots)
	src.AssertNumberOfCalls(t, "AvailableTimeSlots", 1)
}
