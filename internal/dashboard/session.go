package dashboard

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	authsvc "oticas/internal/auth/service"
	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
)

type State int

const (
	StateLoggedOut State = iota
	StateLoggedIn
)

func (s State) String() string {
	if s == StateLoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

const (
	DefaultRemovalDelay = 500 * time.Millisecond

	msgNotLoggedIn   = "Sessão encerrada. Faça login novamente."
	msgOrderNotFound = "Pedido não encontrado."
)

type Backend interface {
	ListActive(ctx context.Context) ([]domain.Order, error)
	CreateOrder(ctx context.Context, input domain.NewOrder) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Stage, history []domain.HistoryEntry) error
	DeleteOrder(ctx context.Context, id int64) error
}

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*authsvc.Session, error)
	Revoke(ctx context.Context, session *authsvc.Session) error
}

type Recorder interface {
	RecordStatusUpdate(stage string, ok bool)
	RecordReconciliation()
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithRemovalDelay sets how long a delivered order stays visible after its update.
func WithRemovalDelay(d time.Duration) Option {
	return func(s *Session) { s.removalDelay = d }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Session) { s.loc = loc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// Session is one admin's dashboard: identity plus the in-memory list of
// active orders. Writes are applied to the list before the backend call and
// reconciled by re-fetching when the backend fails.
type Session struct {
	backend      Backend
	auth         Authenticator
	now          func() time.Time
	loc          *time.Location
	removalDelay time.Duration
	logger       *zap.Logger
	recorder     Recorder

	mu       sync.Mutex
	state    State
	identity *authsvc.Session
	orders   []domain.Order
	loaded   bool
	timers   map[string]*time.Timer
	// generation changes on logout so late fetches and timers from an
	// earlier login are discarded.
	generation uint64
}

func NewSession(backend Backend, auth Authenticator, opts ...Option) *Session {
	s := &Session{
		backend:      backend,
		auth:         auth,
		now:          time.Now,
		loc:          time.UTC,
		removalDelay: DefaultRemovalDelay,
		logger:       zap.NewNop(),
		timers:       make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Identity() *authsvc.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Login checks credentials and loads the active list. A failed credential
// check leaves the session logged out. A failed initial fetch is logged and
// retried by the next Orders call.
func (s *Session) Login(ctx context.Context, email, password string) (*authsvc.Session, error) {
	identity, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.Resume(identity)
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial order fetch failed", zap.Error(err))
	}
	return identity, nil
}

// Resume marks the session logged in for an identity verified elsewhere.
func (s *Session) Resume(identity *authsvc.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateLoggedIn
	s.identity = identity
}

// Refresh replaces the list with every non-delivered order, newest first.
func (s *Session) Refresh(ctx context.Context) error {
	gen, err := s.requireLoggedIn()
	if err != nil {
		return err
	}

	orders, err := s.backend.ListActive(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateLoggedIn {
		return apperrors.NewUnauthorizedError(msgNotLoggedIn)
	}
	s.orders = orders
	s.loaded = true
	return nil
}

// Orders returns a copy of the list, fetching first when it was never loaded
// or when refresh is set.
func (s *Session) Orders(ctx context.Context, refresh bool) ([]domain.Order, error) {
	if _, err := s.requireLoggedIn(); err != nil {
		return nil, err
	}
	if refresh || !s.isLoaded() {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrders(s.orders), nil
}

// CreateOrder registers the order and then reloads the list.
func (s *Session) CreateOrder(ctx context.Context, input domain.NewOrder) (int64, error) {
	if _, err := s.requireLoggedIn(); err != nil {
		return 0, err
	}

	id, err := s.backend.CreateOrder(ctx, input)
	if err != nil {
		return 0, err
	}
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("order list refresh after create failed", zap.Int64("orderId", id), zap.Error(err))
		s.markStale()
	}
	return id, nil
}

// UpdateStatus appends {status, now} to the order history and overwrites its
// current status locally, then persists both. A delivered order leaves the
// list after the removal delay whether or not the backend has answered.
func (s *Session) UpdateStatus(ctx context.Context, id int64, status domain.Stage) error {
	if _, ok := domain.ParseStage(string(status)); !ok {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "status must be one of the known stages",
		})
	}

	if !s.isLoaded() {
		if err := s.Refresh(ctx); err != nil {
			return err
		}
	}

	key := strconv.FormatInt(id, 10)
	date := domain.FormatHistoryDate(s.now(), s.loc)

	s.mu.Lock()
	if s.state != StateLoggedIn {
		s.mu.Unlock()
		return apperrors.NewUnauthorizedError(msgNotLoggedIn)
	}
	idx := s.indexOf(key)
	if idx < 0 {
		s.mu.Unlock()
		return apperrors.NewNotFoundError(msgOrderNotFound)
	}
	history := domain.AppendHistory(s.orders[idx].History, status, date)
	s.orders[idx].History = history
	s.orders[idx].CurrentStatus = status
	if status.IsTerminal() {
		s.scheduleRemovalLocked(key)
	}
	s.mu.Unlock()

	if err := s.backend.UpdateStatus(ctx, id, status, history); err != nil {
		s.record(string(status), false)
		s.cancelRemoval(key)
		s.reconcile(ctx, err)
		return err
	}
	s.record(string(status), true)
	return nil
}

// DeleteOrder removes the order locally and then from the backend.
func (s *Session) DeleteOrder(ctx context.Context, id int64) error {
	key := strconv.FormatInt(id, 10)

	s.mu.Lock()
	if s.state != StateLoggedIn {
		s.mu.Unlock()
		return apperrors.NewUnauthorizedError(msgNotLoggedIn)
	}
	s.removeLocked(key)
	s.mu.Unlock()

	if err := s.backend.DeleteOrder(ctx, id); err != nil {
		s.reconcile(ctx, err)
		return err
	}
	return nil
}

// Logout revokes the identity and clears all local state.
func (s *Session) Logout(ctx context.Context) error {
	identity := s.reset()
	if identity == nil {
		return nil
	}
	return s.auth.Revoke(ctx, identity)
}

// Close clears local state without revoking the identity.
func (s *Session) Close() {
	s.reset()
}

func (s *Session) reset() *authsvc.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
	identity := s.identity
	s.identity = nil
	s.orders = nil
	s.loaded = false
	s.state = StateLoggedOut
	s.generation++
	return identity
}

func (s *Session) reconcile(ctx context.Context, cause error) {
	if s.recorder != nil {
		s.recorder.RecordReconciliation()
	}
	s.logger.Warn("backend write failed, reloading orders", zap.Error(cause))
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("order list reload failed", zap.Error(err))
		s.markStale()
	}
}

func (s *Session) record(stage string, ok bool) {
	if s.recorder != nil {
		s.recorder.RecordStatusUpdate(stage, ok)
	}
}

func (s *Session) scheduleRemovalLocked(key string) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	gen := s.generation
	s.timers[key] = time.AfterFunc(s.removalDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != gen {
			return
		}
		delete(s.timers, key)
		if i := s.indexOf(key); i >= 0 {
			s.orders = append(s.orders[:i:i], s.orders[i+1:]...)
		}
	})
}

func (s *Session) cancelRemoval(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

func (s *Session) removeLocked(key string) {
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	if i := s.indexOf(key); i >= 0 {
		s.orders = append(s.orders[:i:i], s.orders[i+1:]...)
	}
}

func (s *Session) indexOf(key string) int {
	for i := range s.orders {
		if s.orders[i].ID == key {
			return i
		}
	}
	return -1
}

func (s *Session) requireLoggedIn() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoggedIn {
		return 0, apperrors.NewUnauthorizedError(msgNotLoggedIn)
	}
	return s.generation, nil
}

func (s *Session) isLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Session) markStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
}

// PendingRemovals reports how many delivered orders are waiting to leave the list.
func (s *Session) PendingRemovals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func cloneOrders(in []domain.Order) []domain.Order {
	out := make([]domain.Order, len(in))
	for i, o := range in {
		o.History = append([]domain.HistoryEntry(nil), o.History...)
		out[i] = o
	}
	return out
}
