// Package store persists generation sessions: one JSON snapshot per session,
// keyed by a uuid.
package store

import (
	"context"
	"embed"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
)

//go:embed migrations
var migrationFS embed.FS

var (
	// ErrNotFound is returned for a well-formed id with no session.
	ErrNotFound = eris.New("store: session not found")
	// ErrInvalidID is returned for an id that is not a uuid.
	ErrInvalidID = eris.New("store: malformed session id")
)

const defaultListLimit = 100

// Store is the session persistence interface.
type Store interface {
	CreateSession(ctx context.Context, snap model.Snapshot) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, filter model.SessionFilter) ([]model.SessionSummary, error)
	SaveSnapshot(ctx context.Context, id string, snap model.Snapshot) error
	DeleteSession(ctx context.Context, id string) error

	// UpdateSection replaces one narrative section and rebuilds the joined
	// narrative. UpdateRecommendation replaces one recommendation section.
	UpdateSection(ctx context.Context, id, section, content string) (*model.Session, error)
	UpdateRecommendation(ctx context.Context, id, section, content string) (*model.Session, error)

	Migrate(ctx context.Context) error
	Close() error
}

// ParseID validates a session id.
func ParseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", eris.Wrapf(ErrInvalidID, "%q", id)
	}
	return u.String(), nil
}

// newSession builds the row for a fresh snapshot.
func newSession(snap model.Snapshot, now time.Time) *model.Session {
	return &model.Session{
		ID:            uuid.New().String(),
		CaseNumber:    caseNumber(snap),
		AccountNumber: accountNumber(snap),
		Snapshot:      snap,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func caseNumber(snap model.Snapshot) string {
	if snap.Combined.CaseNumber != "" {
		return snap.Combined.CaseNumber
	}
	return snap.Case.CaseNumber
}

func accountNumber(snap model.Snapshot) string {
	if snap.Combined.AccountInfo.AccountNumber != "" {
		return snap.Combined.AccountInfo.AccountNumber
	}
	if len(snap.Case.Accounts) > 0 {
		return snap.Case.Accounts[0].AccountNumber
	}
	return ""
}

func listLimit(f model.SessionFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// snapshotter is the read/write pair both backends share for section edits.
type snapshotter interface {
	GetSession(ctx context.Context, id string) (*model.Session, error)
	SaveSnapshot(ctx context.Context, id string, snap model.Snapshot) error
}

// editSection is a read-modify-write without locking; the last write wins.
func editSection(ctx context.Context, s snapshotter, id, section, content string, recommendation bool) (*model.Session, error) {
	known := narrative.IsNarrativeSection
	if recommendation {
		known = narrative.IsRecommendationSection
	}
	if !known(section) {
		return nil, eris.Wrapf(narrative.ErrUnknownSection, "%q", section)
	}

	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := &sess.Snapshot
	if recommendation {
		snap.Recommendation = narrative.Replace(snap.Recommendation, section, content)
	} else {
		if len(snap.Sections) == 0 && snap.Narrative != "" {
			snap.Sections = narrative.Split(snap.Narrative)
		}
		snap.Sections = narrative.Replace(snap.Sections, section, content)
		snap.Narrative = narrative.Join(snap.Sections)
	}

	if err := s.SaveSnapshot(ctx, sess.ID, *snap); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, sess.ID)
}
