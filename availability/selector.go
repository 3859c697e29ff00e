package availability

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"campus-sports-cli/api"
)

var (
	ErrNotLoaded      = errors.New("time slots are not loaded")
	ErrSlotNotOffered = errors.New("time slot is not available")
)

// View is what a renderer shows for the current inputs.
type View struct {
	Sport    api.Sport `json:"sport"`
	Date     string    `json:"date"`
	State    string    `json:"state"`
	Slots    []string  `json:"slots"`
	Selected string    `json:"selected,omitempty"`
	Error    string    `json:"error,omitempty"`
	Phase    Phase     `json:"-"`
	Err      error     `json:"-"`
}

// Empty reports a successful fetch that offered nothing.
func (v View) Empty() bool {
	return v.Phase == Loaded && len(v.Slots) == 0
}

// Selection is a completed pick, ready to be submitted.
type Selection struct {
	Sport    api.Sport
	Date     string
	TimeSlot string
}

// Selector drives AwaitingInput -> Loading -> Loaded|Failed for the current
// (sport, date) pair. Every input change bumps a generation counter and a
// fetch result is applied only while its generation is still current, so a
// slow answer for an older pair can never overwrite a newer one.
type Selector struct {
	src    SlotSource
	now    func() time.Time
	logger *log.Logger

	mu       sync.Mutex
	sport    api.Sport
	date     string
	gen      uint64
	fetched  uint64
	phase    Phase
	raw      []string
	err      error
	selected string
}

// NewSelector starts in AwaitingInput. now drives the past-slot filter.
func NewSelector(src SlotSource, now func() time.Time, logger *log.Logger) *Selector {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Selector{src: src, now: now, logger: logger}
}

// SetSport changes the sport input. Every input change clears the selection
// and restarts the fetch cycle for the new pair.
func (s *Selector) SetSport(sport api.Sport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sport = sport
	s.inputChanged()
}

// SetDate changes the date input.
func (s *Selector) SetDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.date = date
	s.inputChanged()
}

// SetInputs changes both inputs as one change.
func (s *Selector) SetInputs(sport api.Sport, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sport = sport
	s.date = date
	s.inputChanged()
}

// inputChanged runs on every sport or date change, from any phase.
func (s *Selector) inputChanged() {
	s.selected = ""
	s.gen++
	s.raw = nil
	s.err = nil
	if ready(s.sport, s.date) {
		s.phase = Loading
	} else {
		s.phase = AwaitingInput
	}
}

// Load fetches the slots for the current pair once. Calls while the pair is
// already fetched or in flight return the current view without a request.
func (s *Selector) Load(ctx context.Context) View {
	s.mu.Lock()
	if s.phase != Loading || s.fetched == s.gen {
		defer s.mu.Unlock()
		return s.viewLocked()
	}
	gen, sport, date := s.gen, s.sport, s.date
	s.fetched = gen
	s.mu.Unlock()

	slots, err := s.src.AvailableTimeSlots(ctx, sport, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Printf("availability stale sport=%s date=%s gen=%d current=%d", sport, date, gen, s.gen)
		return s.viewLocked()
	}
	if err != nil {
		s.phase = Failed
		s.err = err
	} else {
		s.phase = Loaded
		s.raw = slots
	}
	return s.viewLocked()
}

// Retry refetches after a failure. Nothing is retried automatically.
func (s *Selector) Retry(ctx context.Context) View {
	s.mu.Lock()
	if s.phase == Failed {
		s.gen++
		s.err = nil
		s.phase = Loading
	}
	s.mu.Unlock()
	return s.Load(ctx)
}

// View renders the current state. Past slots are filtered here, at render
// time, against the clock.
func (s *Selector) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Selector) viewLocked() View {
	view := View{
		Sport:    s.sport,
		Date:     s.date,
		Phase:    s.phase,
		State:    s.phase.String(),
		Selected: s.selected,
		Err:      s.err,
	}
	if s.err != nil {
		view.Error = s.err.Error()
	}
	if s.phase == Loaded {
		view.Slots = FilterPast(s.raw, s.date, s.now())
	}
	return view
}

// Select picks one of the currently offered slots.
func (s *Selector) Select(slot string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Loaded {
		return ErrNotLoaded
	}
	for _, offered := range FilterPast(s.raw, s.date, s.now()) {
		if offered == slot {
			s.selected = slot
			return nil
		}
	}
	return ErrSlotNotOffered
}

// Selection returns the pick together with the pair it belongs to.
func (s *Selector) Selection() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return Selection{Sport: s.sport, Date: s.date}, false
	}
	return Selection{Sport: s.sport, Date: s.date, TimeSlot: s.selected}, true
}
