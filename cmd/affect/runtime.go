package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/emotion-geometry/internal/completion"
	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/logging"
	"github.com/danielpatrickdp/emotion-geometry/internal/orchestrator"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
	"github.com/danielpatrickdp/emotion-geometry/internal/store"
)

// #region runtime
// runtime holds the collaborators shared by every command.
type runtime struct {
	store    store.SessionStore
	audit    *sql.DB
	ownAudit bool
	sessions *session.Manager
	replies  *orchestrator.Orchestrator
}

// openRuntime wires store, assessment log, completion client and session
// manager from the loaded config.
func openRuntime(ctx context.Context) (*runtime, error) {
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	rt := &runtime{store: st}

	if path := cfg.AuditPath(); path != "" {
		if sq, ok := st.(*store.SQLiteStore); ok && path == cfg.Store.SQLitePath {
			if err := logging.Migrate(sq.DB()); err != nil {
				rt.Close()
				return nil, err
			}
			rt.audit = sq.DB()
		} else {
			db, err := logging.Open(path)
			if err != nil {
				rt.Close()
				return nil, fmt.Errorf("failed to open assessment log: %w", err)
			}
			rt.audit, rt.ownAudit = db, true
		}
	}

	var completer completion.Completer
	if cfg.Completion.APIKey != "" {
		client, err := completion.NewOpenAIClient(cfg.CompletionConfig())
		if err != nil {
			rt.Close()
			return nil, err
		}
		completer = client
		logger.Info("completion service configured", zap.String("model", client.Model()))
	} else {
		logger.Info("no completion API key, replies use the fallback set")
	}
	rt.replies = orchestrator.New(completer, logger)

	rt.sessions = session.NewManager(engine.New(cfg.EngineConfig()), st, rt.audit, rt.replies, logger)
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.ownAudit && rt.audit != nil {
		rt.audit.Close()
	}
	if rt.store != nil {
		rt.store.Close()
	}
}
// #endregion runtime
