// Package storage defines the interface of the benchmark results store.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

var (
	// ErrCollision is returned when a session with the same ID exists.
	ErrCollision = errors.New("item already exists")

	// ErrInvalidResult is returned when a result cannot be recorded.
	ErrInvalidResult = errors.New("invalid result")
)

// A Session groups the results of one benchmark run of one task on one
// machine.
type Session struct {
	ID          string
	Task        string
	Description string
	Host        string
	OS          string
	Arch        string
	Cores       int
	GoVersion   string
	RunAt       time.Time
}

// A Result is the timing of one strategy within a session.
type Result struct {
	Method   string
	MeanMs   float64
	StdDevMs float64
	N        int
	Comment  string
}

// A Store records benchmark sessions and their results. Implementations
// are safe for concurrent use.
type Store interface {
	// CreateSession records a new session. A missing ID is generated
	// and a zero RunAt is set to the current time; the recorded session
	// is returned.
	CreateSession(ctx context.Context, session Session) (Session, error)

	// WriteResults records results for an existing session.
	WriteResults(ctx context.Context, sessionID string, results []Result) error

	// ListSessions returns at most limit sessions, most recent first. A
	// limit <= 0 returns all sessions.
	ListSessions(ctx context.Context, limit int) ([]Session, error)

	// ReadResults returns the results of a session in recording order.
	ReadResults(ctx context.Context, sessionID string) ([]Result, error)

	// Close releases the resources of the store.
	Close() error
}
