package handler_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/fyyur/internal/model"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/repository"
)

// memStore is an in-memory stand-in for the three MySQL repositories.
type memStore struct {
	mu      sync.Mutex
	nextID  uint64
	venues  map[uint64]model.Venue
	artists map[uint64]model.Artist
	shows   []model.Show
	cascade bool
	failErr error // returned by every write when set
}

func newMemStore() *memStore {
	return &memStore{venues: map[uint64]model.Venue{}, artists: map[uint64]model.Artist{}}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) upcoming(match func(model.Show) bool, now time.Time) int {
	n := 0
	for _, s := range m.shows {
		if match(s) && !s.StartTime.Before(now) {
			n++
		}
	}
	return n
}

func (m *memStore) listing(s model.Show) model.ShowListing {
	v, a := m.venues[s.VenueID], m.artists[s.ArtistID]
	return model.ShowListing{
		ID: s.ID, VenueID: s.VenueID, VenueName: v.Name, VenueImageLink: v.ImageLink,
		ArtistID: s.ArtistID, ArtistName: a.Name, ArtistImageLink: a.ImageLink, StartTime: s.StartTime,
	}
}

func (m *memStore) split(match func(model.Show) bool, now time.Time) model.ShowSplit {
	var out model.ShowSplit
	for _, s := range m.shows {
		if !match(s) {
			continue
		}
		if s.StartTime.Before(now) {
			out.Past = append(out.Past, m.listing(s))
		} else {
			out.Upcoming = append(out.Upcoming, m.listing(s))
		}
	}
	sort.Slice(out.Past, func(i, j int) bool { return out.Past[i].StartTime.After(out.Past[j].StartTime) })
	sort.Slice(out.Upcoming, func(i, j int) bool { return out.Upcoming[i].StartTime.Before(out.Upcoming[j].StartTime) })
	return out
}

// dropShows removes matching shows, or refuses with ErrConflict when
// deletes are restricted.
func (m *memStore) dropShows(match func(model.Show) bool) error {
	var kept []model.Show
	for _, sh := range m.shows {
		if !match(sh) {
			kept = append(kept, sh)
			continue
		}
		if !m.cascade {
			return repository.ErrConflict
		}
	}
	m.shows = kept
	return nil
}

func contains(name, term string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// Copies go in and out so handlers cannot mutate stored rows.
func copyGenres(g []string) []string { return append([]string{}, g...) }

type venueStore struct{ *memStore }

func (s venueStore) Create(_ context.Context, v *model.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	v.ID = s.id()
	stored := *v
	stored.Genres = model.SplitGenres(model.JoinGenres(v.Genres))
	s.venues[v.ID] = stored
	return nil
}

func (s venueStore) GetByID(_ context.Context, id uint64) (*model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	v.Genres = copyGenres(v.Genres)
	return &v, nil
}

func (s venueStore) summaries(now time.Time, keep func(model.Venue) bool) []model.VenueSummary {
	out := []model.VenueSummary{}
	for _, v := range s.venues {
		if !keep(v) {
			continue
		}
		id := v.ID
		out = append(out, model.VenueSummary{
			ID: v.ID, Name: v.Name, City: v.City, State: v.State,
			NumUpcomingShows: s.upcoming(func(sh model.Show) bool { return sh.VenueID == id }, now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].State != out[j].State {
			return out[i].State < out[j].State
		}
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s venueStore) ListAll(_ context.Context, now time.Time) ([]model.VenueSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaries(now, func(model.Venue) bool { return true }), nil
}

func (s venueStore) Search(_ context.Context, term string, now time.Time) ([]model.VenueSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaries(now, func(v model.Venue) bool { return contains(v.Name, term) }), nil
}

func (s venueStore) Update(_ context.Context, v *model.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.venues[v.ID]; !ok {
		return repository.ErrVenueNotFound
	}
	stored := *v
	stored.Genres = copyGenres(v.Genres)
	s.venues[v.ID] = stored
	return nil
}

func (s venueStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.venues[id]; !ok {
		return repository.ErrVenueNotFound
	}
	if err := s.dropShows(func(sh model.Show) bool { return sh.VenueID == id }); err != nil {
		return err
	}
	delete(s.venues, id)
	return nil
}

type artistStore struct{ *memStore }

func (s artistStore) Create(_ context.Context, a *model.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	a.ID = s.id()
	stored := *a
	stored.Genres = model.SplitGenres(model.JoinGenres(a.Genres))
	s.artists[a.ID] = stored
	return nil
}

func (s artistStore) GetByID(_ context.Context, id uint64) (*model.Artist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artists[id]
	if !ok {
		return nil, repository.ErrArtistNotFound
	}
	a.Genres = copyGenres(a.Genres)
	return &a, nil
}

func (s artistStore) summaries(now time.Time, keep func(model.Artist) bool) []model.ArtistSummary {
	out := []model.ArtistSummary{}
	for _, a := range s.artists {
		if !keep(a) {
			continue
		}
		id := a.ID
		out = append(out, model.ArtistSummary{
			ID: a.ID, Name: a.Name,
			NumUpcomingShows: s.upcoming(func(sh model.Show) bool { return sh.ArtistID == id }, now),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s artistStore) ListAll(_ context.Context, now time.Time) ([]model.ArtistSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaries(now, func(model.Artist) bool { return true }), nil
}

func (s artistStore) Search(_ context.Context, term string, now time.Time) ([]model.ArtistSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaries(now, func(a model.Artist) bool { return contains(a.Name, term) }), nil
}

func (s artistStore) Update(_ context.Context, a *model.Artist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.artists[a.ID]; !ok {
		return repository.ErrArtistNotFound
	}
	stored := *a
	stored.Genres = copyGenres(a.Genres)
	s.artists[a.ID] = stored
	return nil
}

func (s artistStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.artists[id]; !ok {
		return repository.ErrArtistNotFound
	}
	if err := s.dropShows(func(sh model.Show) bool { return sh.ArtistID == id }); err != nil {
		return err
	}
	delete(s.artists, id)
	return nil
}

type showStore struct{ *memStore }

func (s showStore) Create(_ context.Context, sh *model.Show) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.venues[sh.VenueID]; !ok {
		return repository.ErrVenueNotFound
	}
	if _, ok := s.artists[sh.ArtistID]; !ok {
		return repository.ErrArtistNotFound
	}
	sh.ID = s.id()
	s.shows = append(s.shows, *sh)
	return nil
}

func (s showStore) ListAll(context.Context) ([]model.ShowListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ShowListing, 0, len(s.shows))
	for _, sh := range s.shows {
		out = append(out, s.listing(sh))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s showStore) ForVenue(_ context.Context, venueID uint64, now time.Time) (model.ShowSplit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.split(func(sh model.Show) bool { return sh.VenueID == venueID }, now), nil
}

func (s showStore) ForArtist(_ context.Context, artistID uint64, now time.Time) (model.ShowSplit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.split(func(sh model.Show) bool { return sh.ArtistID == artistID }, now), nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ListingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ListingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Entity+"."+ev.Action)
	}
	return out
}
