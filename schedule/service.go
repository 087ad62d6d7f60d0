package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	t "github.com/quesurifn/rasp-ics/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSelection = errors.New("no group or schedule url given")
	ErrNoLessons   = errors.New("no lessons found")
)

type Options struct {
	// Weeks lists the site week numbers to fetch. Empty means the current
	// week only.
	Weeks []int
	// DetailWorkers bounds concurrent detail lookups.
	DetailWorkers int
	// CacheTTL enables an in-memory cache of fetched weeks. Zero disables it.
	CacheTTL time.Duration
}

type Service struct {
	Logger *zap.Logger
	Client *Client
	Parser Parser

	weeks   []int
	workers int
	cache   *ristretto.Cache
	ttl     time.Duration
}

func NewService(client *Client, opts Options, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		Logger:  logger,
		Client:  client,
		Parser:  Parser{Logger: logger},
		weeks:   opts.Weeks,
		workers: opts.DetailWorkers,
		ttl:     opts.CacheTTL,
	}
	if len(s.weeks) == 0 {
		s.weeks = []int{0}
	}
	if s.workers < 1 {
		s.workers = 4
	}
	if opts.CacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters:        1e4,
			MaxCost:            1 << 10, // entries, each costs 1
			BufferItems:        64,
			IgnoreInternalCost: true,
		})
		if err != nil {
			return nil, fmt.Errorf("create schedule cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Fetch downloads and parses the schedule of a group. The group is taken
// from the "q" parameter of url when present.
func (s *Service) Fetch(ctx context.Context, url, group string) ([]t.Lesson, error) {
	selection := SelectionFromURL(url)
	if selection == "" {
		selection = strings.TrimSpace(group)
	}
	if selection == "" {
		return nil, ErrNoSelection
	}
	selection = s.Client.Normalize(ctx, selection)

	var lessons []t.Lesson
	for _, week := range s.weeks {
		got, err := s.week(ctx, selection, week)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, got...)
	}

	lessons = Normalize(lessons)
	if len(lessons) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoLessons, selection)
	}
	s.Logger.Info("Fetch", zap.String("selection", selection), zap.Int("lessons", len(lessons)))
	return lessons, nil
}

func (s *Service) week(ctx context.Context, selection string, week int) ([]t.Lesson, error) {
	key := selection + "|" + strconv.Itoa(week)
	if s.cache != nil {
		if cached, found := s.cache.Get(key); found {
			s.Logger.Debug("week: cache hit", zap.String("key", key))
			return append([]t.Lesson(nil), cached.([]t.Lesson)...), nil
		}
	}

	html, err := s.Client.Card(ctx, selection, week)
	if err != nil {
		return nil, err
	}
	lessons, err := s.Parser.Card(html)
	if err != nil {
		return nil, fmt.Errorf("parse schedule card: %w", err)
	}
	if err := s.enrich(ctx, lessons); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetWithTTL(key, append([]t.Lesson(nil), lessons...), 1, s.ttl)
	}
	return lessons, nil
}

type details struct {
	teacher string
	extra   string
}

// enrich fills teacher and extra info from the details popup of every
// distinct element. Lookup failures leave the fields empty.
func (s *Service) enrich(ctx context.Context, lessons []t.Lesson) error {
	ids := map[string]struct{}{}
	for _, l := range lessons {
		if l.ElementID != "" {
			ids[l.ElementID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var (
		mu    sync.Mutex
		found = make(map[string]details, len(ids))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for id := range ids {
		id := id
		g.Go(func() error {
			html, err := s.Client.Details(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.Logger.Warn("enrich: details unavailable", zap.String("id", id), zap.Error(err))
				return nil
			}
			teacher, extra := s.Parser.Details(html)
			mu.Lock()
			found[id] = details{teacher: teacher, extra: extra}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range lessons {
		if d, ok := found[lessons[i].ElementID]; ok {
			lessons[i].Teacher = d.teacher
			lessons[i].Extra = d.extra
		}
	}
	return nil
}
