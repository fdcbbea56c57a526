package project

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"listing-forge/internal/listing"
)

type SaverOptions struct {
	Store    Store
	Debounce time.Duration
	// SaveTimeout bounds each background write.
	SaveTimeout time.Duration
	Logger      *slog.Logger
}

// Saver coalesces rapid successive mutations of the same project into
// one write. Last write wins: only the newest queued snapshot reaches
// the store.
type Saver struct {
	mu          sync.Mutex
	store       Store
	debounce    time.Duration
	saveTimeout time.Duration
	log         *slog.Logger
	pending     map[string]*pendingSave
}

type pendingSave struct {
	snapshot []byte
	timer    *time.Timer
}

func NewSaver(opts SaverOptions) *Saver {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 800 * time.Millisecond
	}
	saveTimeout := opts.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Saver{
		store:       opts.Store,
		debounce:    debounce,
		saveTimeout: saveTimeout,
		log:         logger,
		pending:     make(map[string]*pendingSave),
	}
}

// Queue snapshots the project and (re)arms its debounce timer.
func (s *Saver) Queue(p *listing.Project) {
	if p == nil || p.ID == "" {
		return
	}
	snapshot, err := encodeProject(p)
	if err != nil {
		s.log.Error("project snapshot failed", "project", p.ID, "error", err)
		return
	}

	id := p.ID
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.pending[id]
	if !ok {
		ps = &pendingSave{}
		s.pending[id] = ps
	}
	ps.snapshot = snapshot

	if ps.timer != nil {
		ps.timer.Stop()
	}
	ps.timer = time.AfterFunc(s.debounce, func() {
		s.flush(id)
	})
}

// Flush writes every pending snapshot immediately. Used on shutdown.
func (s *Saver) Flush(ctx context.Context) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pending))
	for id, ps := range s.pending {
		if ps.timer != nil {
			ps.timer.Stop()
		}
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.flush(id)
	}
}

func (s *Saver) flush(id string) {
	s.mu.Lock()
	ps, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	snapshot := ps.snapshot
	s.mu.Unlock()

	p, err := decodeProject(snapshot)
	if err != nil {
		s.log.Error("pending snapshot unreadable", "project", id, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, p); err != nil {
		s.log.Error("deferred save failed", "project", id, "error", err)
		return
	}
	s.log.Debug("project saved", "project", id)
}
