package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/logging"
	"github.com/danielpatrickdp/emotion-geometry/internal/orchestrator"
	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/store"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// ErrEmptyMessage is returned by Chat when the turn carries no user text.
var ErrEmptyMessage = errors.New("message is required")

// #region manager
// Manager runs turns against stored sessions: load, analyze, persist, log,
// and optionally reply. It is safe for concurrent use across sessions;
// concurrent turns on the same session are last-writer-wins.
type Manager struct {
	engine  *engine.Engine
	store   store.SessionStore
	audit   *sql.DB
	replies *orchestrator.Orchestrator
	logger  *zap.Logger
}

// NewManager wires a Manager. audit may be nil to disable the assessment log.
// replies may be nil, in which case chat turns always use the fallback.
func NewManager(eng *engine.Engine, st store.SessionStore, audit *sql.DB, replies *orchestrator.Orchestrator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if replies == nil {
		replies = orchestrator.New(nil, logger)
	}
	return &Manager{engine: eng, store: st, audit: audit, replies: replies, logger: logger}
}

// Engine returns the engine used for every turn.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// Create starts a new session.
func (m *Manager) Create(ctx context.Context, settings prompt.TherapySettings) (store.Session, error) {
	return m.store.CreateSession(ctx, settings)
}

// Load returns the stored session.
func (m *Manager) Load(ctx context.Context, id string) (store.Session, error) {
	return m.store.LoadSession(ctx, id)
}

// Assessments returns the newest assessment log entries for id.
func (m *Manager) Assessments(id string, limit int) ([]logging.AssessmentEntry, error) {
	if m.audit == nil {
		return []logging.AssessmentEntry{}, nil
	}
	return logging.ListAssessments(m.audit, id, limit)
}
// #endregion manager

// #region analyze
// Analyze runs one analysis-only turn on session id.
func (m *Manager) Analyze(ctx context.Context, id string, in TurnInput) (Result, error) {
	t, err := m.prepare(ctx, id, in)
	if err != nil {
		return Result{}, err
	}
	if err := m.commit(ctx, t, nil); err != nil {
		return Result{}, err
	}
	return t.result(nil), nil
}
// #endregion analyze

// #region chat
// Chat runs one turn and produces the assistant reply. A failing completion
// service degrades to the fallback reply; only store errors are returned.
func (m *Manager) Chat(ctx context.Context, id string, in TurnInput) (Result, error) {
	if strings.TrimSpace(in.Message) == "" {
		return Result{}, ErrEmptyMessage
	}
	t, err := m.prepare(ctx, id, in)
	if err != nil {
		return Result{}, err
	}
	reply := m.replies.Respond(ctx, t.orchestratorTurn())
	if err := m.commit(ctx, t, &reply); err != nil {
		return Result{}, err
	}
	return t.result(&reply), nil
}

// ChatStream is Chat with the reply delivered through onDelta as it is
// generated. The turn is persisted even when onDelta fails part way.
func (m *Manager) ChatStream(ctx context.Context, id string, in TurnInput, onDelta func(string) error) (Result, error) {
	if strings.TrimSpace(in.Message) == "" {
		return Result{}, ErrEmptyMessage
	}
	t, err := m.prepare(ctx, id, in)
	if err != nil {
		return Result{}, err
	}
	reply, streamErr := m.replies.RespondStream(ctx, t.orchestratorTurn(), onDelta)
	if streamErr != nil {
		m.logger.Warn("reply stream interrupted", zap.String("session", id), zap.Error(streamErr))
	}
	if err := m.commit(ctx, t, &reply); err != nil {
		return Result{}, err
	}
	return t.result(&reply), streamErr
}
// #endregion chat

// #region turn
type turn struct {
	session  store.Session
	turnID   string
	userMsg  *textsignal.Message
	messages []textsignal.Message
	response engine.Response
}

func (m *Manager) prepare(ctx context.Context, id string, in TurnInput) (*turn, error) {
	sess, err := m.store.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	t := &turn{session: sess, turnID: uuid.NewString()}
	t.messages = append(t.messages, sess.Messages...)
	if strings.TrimSpace(in.Message) != "" {
		t.userMsg = &textsignal.Message{Role: textsignal.RoleUser, Content: in.Message}
		t.messages = append(t.messages, *t.userMsg)
	}

	pc := sess.PersonalContext
	t.response = m.engine.Analyze(engine.Request{
		Emotions:        in.Emotions,
		Biometrics:      in.Biometrics,
		History:         sess.History,
		PersonalContext: &pc,
		Messages:        t.messages,
		PreviousMode:    sess.Mode,
		Timestamp:       in.Timestamp,
	})
	return t, nil
}

func (t *turn) orchestratorTurn() orchestrator.Turn {
	return orchestrator.Turn{
		Response: t.response,
		Messages: t.messages,
		Settings: t.session.Settings,
		Number:   t.session.Turns + 1,
	}
}

func (t *turn) result(reply *orchestrator.Reply) Result {
	return Result{SessionID: t.session.ID, TurnID: t.turnID, Response: t.response, Reply: reply}
}

// commit persists the carry-over state of t and logs the assessment.
func (m *Manager) commit(ctx context.Context, t *turn, reply *orchestrator.Reply) error {
	id := t.session.ID
	resp := t.response

	if err := m.store.SaveContext(ctx, id, resp.PersonalContext); err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	if resp.Recorded && len(resp.History) > 0 {
		if err := m.store.AppendHistory(ctx, id, resp.History[len(resp.History)-1]); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}
	if err := m.store.SetMode(ctx, id, resp.Directive.Mode); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}

	var msgs []textsignal.Message
	if t.userMsg != nil {
		msgs = append(msgs, *t.userMsg)
	}
	source := ""
	if reply != nil {
		msgs = append(msgs, textsignal.Message{Role: textsignal.RoleAssistant, Content: reply.Text})
		source = string(reply.Source)
	}
	if err := m.store.AppendMessages(ctx, id, msgs...); err != nil {
		return fmt.Errorf("append messages: %w", err)
	}

	m.logAssessment(id, t.turnID, source, resp)
	return nil
}

func (m *Manager) logAssessment(sessionID, turnID, source string, resp engine.Response) {
	if m.audit == nil {
		return
	}
	entry, err := logging.EntryFromRecord(sessionID, string(resp.Directive.Mode), logging.NewAssessmentRecord(turnID, resp))
	if err == nil {
		entry.ReplySource = source
		err = logging.LogAssessment(m.audit, entry)
	}
	if err != nil {
		m.logger.Error("logging error", zap.String("session", sessionID), zap.Error(err))
		return
	}
	m.logger.Debug("turn recorded",
		zap.String("session", sessionID),
		zap.String("turn", turnID),
		zap.String("crisis_level", entry.CrisisLevel),
		zap.String("mode", entry.Mode))
}
// #endregion turn
