package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/component"
	"github.com/roach88/canvas/internal/history"
	"github.com/roach88/canvas/internal/instance"
	"github.com/roach88/canvas/internal/model"
)

// DefaultHistoryDepth is the number of undo steps kept when no depth is
// configured.
const DefaultHistoryDepth = 100

// ErrSessionCorrupted is returned once restoring a snapshot has failed. The
// live canvas can no longer be trusted; every later mutation, undo and redo
// fails with it.
var ErrSessionCorrupted = errors.New("session corrupted")

// ErrNoPageStore is returned by Open and Save when the session was created
// without a page store.
var ErrNoPageStore = errors.New("session has no page store")

// ErrNoPage is returned by Save when no page has been opened or saved yet.
var ErrNoPage = errors.New("no page is open")

// PageStore loads and saves page documents by page id.
// Implemented by pagestore.Store.
type PageStore interface {
	LoadPage(ctx context.Context, id string) (model.Document, error)
	SavePage(ctx context.Context, id string, doc model.Document) error
}

// Session is one editing session over one page.
type Session struct {
	store    *canvas.Store
	registry *component.Registry
	resolver *instance.Resolver
	history  *history.History[canvas.State]
	pages    PageStore
	pageID   string

	ids    model.IDGenerator
	depth  int
	logger *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryDepth bounds the number of undo steps. A depth <= 0 keeps
// every step.
func WithHistoryDepth(depth int) Option {
	return func(s *Session) {
		s.depth = depth
	}
}

// WithLogger sets the logger shared by the session and everything it owns.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithIDGenerator sets the id generator for new canvas elements and, unless
// a registry is supplied, for new components.
//
// Default: model.UUIDv7Generator
// Use model.NewSequentialGenerator for deterministic ids in tests.
func WithIDGenerator(ids model.IDGenerator) Option {
	return func(s *Session) {
		s.ids = ids
	}
}

// WithRegistry shares an existing component registry with the session.
func WithRegistry(r *component.Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithPageStore sets the page store used by Open and Save.
func WithPageStore(p PageStore) Option {
	return func(s *Session) {
		s.pages = p
	}
}

// New creates a session over an empty canvas.
func New(opts ...Option) *Session {
	s := &Session{
		ids:    model.UUIDv7Generator{},
		depth:  DefaultHistoryDepth,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = canvas.New(s.ids, canvas.WithLogger(s.logger))
	if s.registry == nil {
		s.registry = component.NewRegistry(s.ids, component.WithLogger(s.logger))
	}
	s.resolver = instance.NewResolver(s.store, s.registry, instance.WithLogger(s.logger))
	s.history = history.New[canvas.State](s.depth)
	return s
}

// Store returns the canvas store for reading. Mutating it directly bypasses
// the history.
func (s *Session) Store() *canvas.Store {
	return s.store
}

// Registry returns the component registry.
func (s *Session) Registry() *component.Registry {
	return s.registry
}

// Resolver returns the instance resolver for reading resolved elements.
func (s *Session) Resolver() *instance.Resolver {
	return s.resolver
}

// PageID returns the id of the open page, or "" if none was opened.
func (s *Session) PageID() string {
	return s.pageID
}

// Err returns ErrSessionCorrupted (wrapping the cause) once the session is
// corrupted, nil otherwise.
func (s *Session) Err() error {
	if err := s.history.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionCorrupted, err)
	}
	return nil
}

// mutate runs fn as one undoable step. The canvas is snapshotted first; if
// fn fails the canvas is put back and nothing is recorded. A step that
// changed nothing is not recorded either.
func (s *Session) mutate(op string, fn func() error) error {
	if err := s.Err(); err != nil {
		return err
	}
	before := s.store.Snapshot()
	if err := fn(); err != nil {
		if rerr := s.store.Restore(before); rerr != nil {
			s.logger.Error("restore after rejected mutation failed", "op", op, "error", rerr)
			return fmt.Errorf("%w: %s: %w", ErrSessionCorrupted, op, rerr)
		}
		s.logger.Debug("mutation rejected", "op", op, "code", model.ErrorCodeOf(err), "error", err)
		return err
	}
	if before.Same(s.store.Snapshot()) {
		return nil
	}
	s.history.Push(before)
	return nil
}

// Undo reverts the most recent recorded mutation. Returns false if there
// is nothing to undo.
func (s *Session) Undo() (bool, error) {
	ok, err := s.history.Undo(s.store.Snapshot, s.store.Restore)
	if err != nil {
		s.logger.Error("undo failed", "error", err)
		return false, fmt.Errorf("%w: %w", ErrSessionCorrupted, err)
	}
	return ok, nil
}

// Redo re-applies the most recently undone mutation. Returns false if there
// is nothing to redo.
func (s *Session) Redo() (bool, error) {
	ok, err := s.history.Redo(s.store.Snapshot, s.store.Restore)
	if err != nil {
		s.logger.Error("redo failed", "error", err)
		return false, fmt.Errorf("%w: %w", ErrSessionCorrupted, err)
	}
	return ok, nil
}

// CanUndo reports whether Undo would change the canvas.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change the canvas.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// HistoryDepth returns the number of undo and redo steps held.
func (s *Session) HistoryDepth() (undo, redo int) {
	return s.history.Depth()
}

// Load replaces the canvas with doc and clears the history. An invalid
// document is rejected and the canvas is left as it was.
func (s *Session) Load(doc model.Document) error {
	if err := s.store.Load(doc); err != nil {
		return err
	}
	s.history.Clear()
	return nil
}

// Document returns a copy of the canvas as stored: derived elements carry
// their template copy, instance records carry the deltas.
func (s *Session) Document() model.Document {
	return s.store.Document()
}

// Resolved returns the canvas with every derived element resolved, without
// instance records. This is what a renderer draws.
func (s *Session) Resolved() model.Document {
	return s.resolver.ResolveDocument()
}

// Open loads page id from the page store and makes it the session's page.
func (s *Session) Open(ctx context.Context, id string) error {
	if s.pages == nil {
		return ErrNoPageStore
	}
	doc, err := s.pages.LoadPage(ctx, id)
	if err != nil {
		return fmt.Errorf("open page %q: %w", id, err)
	}
	if err := s.Load(doc); err != nil {
		return fmt.Errorf("open page %q: %w", id, err)
	}
	s.pageID = id
	s.logger.Info("page opened", "page", id, "elements", s.store.Len())
	return nil
}

// Save writes the canvas to the open page. A failed save leaves the
// session untouched and is not retried.
func (s *Session) Save(ctx context.Context) error {
	if s.pageID == "" {
		return ErrNoPage
	}
	return s.SaveAs(ctx, s.pageID)
}

// SaveAs writes the canvas to page id and makes it the session's page.
func (s *Session) SaveAs(ctx context.Context, id string) error {
	if s.pages == nil {
		return ErrNoPageStore
	}
	if err := s.pages.SavePage(ctx, id, s.store.Document()); err != nil {
		s.logger.Warn("page save failed", "page", id, "error", err)
		return fmt.Errorf("save page %q: %w", id, err)
	}
	s.pageID = id
	s.logger.Info("page saved", "page", id)
	return nil
}
