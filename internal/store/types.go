package store

import (
	"context"
	"errors"
	"time"

	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/protocol"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
	"github.com/danielpatrickdp/emotion-geometry/internal/trend"
)

// #region constants

const (
	MaxHistory  = trend.HistoryCap // session entries kept per session
	MaxMessages = 20               // conversation messages kept per session
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// #endregion constants

// #region session

// Session is the carry-over state of one conversation between requests.
type Session struct {
	ID              string                     `json:"id"`
	PersonalContext textsignal.PersonalContext `json:"personalContext"`
	History         []trend.Entry              `json:"history"`
	Messages        []textsignal.Message       `json:"messages"`
	Mode            protocol.Mode              `json:"mode"`
	Settings        prompt.TherapySettings     `json:"settings"`
	Turns           int                        `json:"turns"` // user messages ever appended, not capped
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

// UserTurns counts the user messages currently retained.
func (s Session) UserTurns() int {
	n := 0
	for _, m := range s.Messages {
		if m.FromUser() {
			n++
		}
	}
	return n
}

// countUserMessages is the Turns increment for an AppendMessages batch.
func countUserMessages(msgs []textsignal.Message) int {
	n := 0
	for _, m := range msgs {
		if m.FromUser() {
			n++
		}
	}
	return n
}

// #endregion session

// #region interface

// SessionStore persists sessions. History and messages are capped at
// MaxHistory and MaxMessages, oldest dropped first.
type SessionStore interface {
	CreateSession(ctx context.Context, settings prompt.TherapySettings) (Session, error)
	LoadSession(ctx context.Context, id string) (Session, error)
	SaveContext(ctx context.Context, id string, pc textsignal.PersonalContext) error
	AppendHistory(ctx context.Context, id string, entries ...trend.Entry) error
	AppendMessages(ctx context.Context, id string, msgs ...textsignal.Message) error
	SetMode(ctx context.Context, id string, mode protocol.Mode) error
	Close() error
}

// #endregion interface

// #region kind

// Kind selects a SessionStore implementation.
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindRedis  Kind = "redis"
)

// #endregion kind
