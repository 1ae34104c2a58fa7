package proctor_service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/app_errors"
	"github.com/tcp_snm/deepshift/internal/metrics"
	"github.com/tcp_snm/deepshift/internal/service/submission_service"
)

const (
	defaultTickInterval = time.Second
	pushBufferSize      = 32
)

// Submitter grades a finished session.
type Submitter interface {
	SubmitAs(
		ctx context.Context,
		userID uuid.UUID,
		contestID uuid.UUID,
		req submission_service.SubmissionRequest,
	) (submission_service.SubmissionResponse, error)
}

// Manager runs the live proctoring sessions, at most one per user and
// contest.
type Manager struct {
	Submitter       Submitter
	Metrics         *metrics.Metrics
	Now             func() time.Time
	WarningDuration time.Duration
	TickInterval    time.Duration

	logger   *log.Entry
	mu       sync.Mutex
	sessions map[sessionKey]*LiveSession
}

func (m *Manager) Start() {
	if m.Submitter == nil {
		panic("proctor manager expects non-nil submitter")
	}
	if m.Now == nil {
		m.Now = time.Now
	}
	if m.TickInterval <= 0 {
		m.TickInterval = defaultTickInterval
	}
	m.logger = log.WithField("from", "proctor manager")
	m.sessions = make(map[sessionKey]*LiveSession)
	m.logger.Info("started")
}

// Open starts a session that runs until submission or Close. The ticker
// stops when either happens.
func (m *Manager) Open(userID, contestID uuid.UUID, endTime time.Time) (*LiveSession, error) {
	key := sessionKey{userID: userID, contestID: contestID}

	m.mu.Lock()
	if _, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		err := fmt.Errorf("%w, a proctoring session is already open for this contest", app_errors.ErrEntityAlreadyExist)
		m.logger.Warnf("user %s opened a second session for contest %s", userID, contestID)
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	ls := &LiveSession{
		mgr:     m,
		key:     key,
		session: NewSession(endTime, m.WarningDuration, m.Now),
		pushes:  make(chan Push, pushBufferSize),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
		logger:  m.logger.WithFields(log.Fields{"user": userID, "contest": contestID}),
	}
	m.sessions[key] = ls
	m.mu.Unlock()

	m.Metrics.IncSessions()
	ls.logger.Info("session opened")
	ls.send(ls.session.statePush())
	go ls.tickLoop(m.TickInterval)
	return ls, nil
}

func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) release(key sessionKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// LiveSession couples a Session with its timer and outbound pushes.
type LiveSession struct {
	mgr     *Manager
	key     sessionKey
	mu      sync.Mutex
	session *Session

	pushes    chan Push
	done      chan struct{}
	doneOnce  sync.Once
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *log.Entry
}

// Pushes delivers messages for the client. Drain it until Done is closed.
func (ls *LiveSession) Pushes() <-chan Push {
	return ls.pushes
}

// Done is closed once the session reached a terminal state and its final
// push is queued.
func (ls *LiveSession) Done() <-chan struct{} {
	return ls.done
}

func (ls *LiveSession) State() State {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.session.State()
}

func (ls *LiveSession) send(p Push) {
	select {
	case ls.pushes <- p:
	case <-ls.ctx.Done():
	}
}

func (ls *LiveSession) finish() {
	ls.doneOnce.Do(func() { close(ls.done) })
}

// Dispatch applies one client event.
func (ls *LiveSession) Dispatch(ev Event) {
	ls.mu.Lock()
	before := ls.session.State()
	pushes, submit := ls.session.Handle(ev)
	var (
		req submission_service.SubmissionRequest
		ok  bool
	)
	if submit {
		req, ok = ls.session.BeginSubmit(false)
	}
	after := ls.session.State()
	ls.mu.Unlock()

	switch ev.Type {
	case EventFullscreenExit, EventVisibilityHidden:
		if before == StateActive && after == StateSuspended {
			ls.mgr.Metrics.IncViolation(string(ev.Type))
			ls.logger.Warnf("violation %s", ev.Type)
		}
	case EventClipboard:
		if hasPush(pushes, PushSuppressed) {
			ls.mgr.Metrics.IncViolation("clipboard")
		}
	}

	for _, p := range pushes {
		ls.send(p)
	}
	if ok {
		ls.submit(req)
		return
	}
	if after == StateAbandoned {
		ls.finish()
	}
}

func hasPush(pushes []Push, typ PushType) bool {
	for _, p := range pushes {
		if p.Type == typ {
			return true
		}
	}
	return false
}

func (ls *LiveSession) tickLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ls.ctx.Done():
			return
		case <-ls.done:
			return
		case <-ticker.C:
		}

		ls.mu.Lock()
		remaining, expired := ls.session.Tick()
		var (
			req submission_service.SubmissionRequest
			ok  bool
		)
		if expired {
			req, ok = ls.session.BeginSubmit(true)
		}
		state := ls.session.State()
		ls.mu.Unlock()

		ls.send(Push{Type: PushTick, RemainingSeconds: &remaining})
		if ok {
			ls.logger.Info("time is up, auto submitting")
			ls.submit(req)
			return
		}
		if state.Terminal() {
			ls.finish()
			return
		}
	}
}

// submit runs at most once per session, guarded by BeginSubmit. Grading is
// not cancelled by a disconnect.
func (ls *LiveSession) submit(req submission_service.SubmissionRequest) {
	defer ls.finish()

	ctx := context.WithoutCancel(ls.ctx)
	resp, err := ls.mgr.Submitter.SubmitAs(ctx, ls.key.userID, ls.key.contestID, req)
	if err != nil {
		ls.logger.Errorf("submission failed, %v", err)
		msg := err.Error()
		if errors.Is(err, app_errors.ErrInternal) {
			msg = app_errors.ErrInternal.Error()
		}
		ls.send(Push{Type: PushError, Message: msg})
		return
	}

	result := resp.Result
	ls.send(Push{
		Type:            PushSubmitted,
		State:           ls.State(),
		Result:          &result,
		QuestionResults: resp.QuestionResults,
		Message:         resp.Message,
	})
}

// Close ends the session. An attempt that was not submitted is abandoned
// and produces no result.
func (ls *LiveSession) Close() {
	ls.closeOnce.Do(func() {
		ls.mu.Lock()
		abandoned := ls.session.Abandon()
		ls.mu.Unlock()
		if abandoned {
			ls.logger.Warn("session abandoned before submission")
		}

		ls.cancel()
		ls.finish()
		ls.mgr.release(ls.key)
		ls.mgr.Metrics.DecSessions()
		ls.logger.Info("session closed")
	})
}
