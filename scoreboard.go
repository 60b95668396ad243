package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

const (
	sessionKeyPrefix = "session:"
	scoresKey        = "scores"
)

// Rejection reasons returned to clients. These are part of the API surface;
// the frontend matches on them.
const (
	ReasonMissingSession = "missing session_id"
	ReasonInvalidSession = "invalid session"
	ReasonSessionUsed    = "session already used"
	ReasonScoreMismatch  = "score/time mismatch"
	ReasonViewportShrink = "viewport shrink / zoom detected"
	ReasonDPRShrink      = "devicePixelRatio shrink detected"
)

type SessionInfo struct {
	StartTS int64    `json:"start_ts"`
	Used    bool     `json:"used"`
	StartW  *uint    `json:"start_w,omitempty"`
	StartH  *uint    `json:"start_h,omitempty"`
	DPR     *float64 `json:"dpr,omitempty"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
	TS    int64  `json:"ts"`
}

type RankedScore struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// ViewportHints are the optional display metrics a client reports when a
// session opens. Absent hints disable the matching shrink check later.
type ViewportHints struct {
	Width  *uint
	Height *uint
	DPR    *float64
}

// Submission carries one score submission. ViewportW/ViewportH of zero and a
// nil DPR mean the client did not report current display metrics.
type Submission struct {
	SessionID string
	Name      string
	Score     int64
	ViewportW uint
	ViewportH uint
	DPR       *float64
}

// SubmitResult distinguishes acceptance from the policy rejections. A
// rejection carries enough numeric context for the client to render a
// diagnostic message.
type SubmitResult struct {
	Accepted        bool            `json:"accepted"`
	Reason          string          `json:"reason,omitempty"`
	ElapsedSec      float64         `json:"elapsed_sec,omitempty"`
	ExpectedScore   int64           `json:"expected_score,omitempty"`
	ToleranceFrames int64           `json:"tolerance_frames,omitempty"`
	ActualScore     int64           `json:"actual_score,omitempty"`
	Viewport        *ViewportDetail `json:"viewport,omitempty"`
}

type ViewportDetail struct {
	VW  uint    `json:"vw"`
	VH  uint    `json:"vh"`
	DPR float64 `json:"dpr"`
}

type ScoringRules struct {
	RatePerSecond    float64
	ToleranceSeconds float64
	ShrinkThreshold  float64
	MaxEntries       int
	TopN             int
}

// ScoreBoard owns the session table and the ranked score list. Every
// operation takes the mutex for its full duration, store calls included, so
// the read-modify-write sequences in SubmitScore never interleave.
type ScoreBoard struct {
	mu    sync.Mutex
	store Store
	rules ScoringRules

	now         func() time.Time
	tokenSuffix func() (string, error)
}

func NewScoreBoard(store Store, rules ScoringRules) *ScoreBoard {
	return &ScoreBoard{
		store:       store,
		rules:       rules,
		now:         time.Now,
		tokenSuffix: func() (string, error) { return randomToken(8) },
	}
}

// OpenSession issues a fresh one-shot session token and persists its record.
func (sb *ScoreBoard) OpenSession(ctx context.Context, hints ViewportHints) (string, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	suffix, err := sb.tokenSuffix()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	nowMS := sb.now().UnixMilli()
	sessionID := fmt.Sprintf("sess_%d_%s", nowMS, suffix)

	info := SessionInfo{
		StartTS: nowMS,
		StartW:  hints.Width,
		StartH:  hints.Height,
		DPR:     hints.DPR,
	}
	if err := sb.store.Put(ctx, sessionKeyPrefix+sessionID, info); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	return sessionID, nil
}

// SubmitScore validates a submission against its session and, on acceptance,
// consumes the session and ranks the entry. Policy rejections come back as a
// result, not an error; errors are storage failures and leave state as it was
// before the failing write.
func (sb *ScoreBoard) SubmitScore(ctx context.Context, sub Submission) (SubmitResult, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sub.SessionID == "" {
		return SubmitResult{Reason: ReasonMissingSession}, nil
	}

	key := sessionKeyPrefix + sub.SessionID
	var info SessionInfo
	found, err := sb.store.Get(ctx, key, &info)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return SubmitResult{Reason: ReasonInvalidSession}, nil
	}
	if info.Used {
		return SubmitResult{Reason: ReasonSessionUsed}, nil
	}

	nowMS := sb.now().UnixMilli()
	elapsedSec := float64(nowMS-info.StartTS) / 1000.0
	expected := elapsedSec * sb.rules.RatePerSecond
	tolerance := sb.rules.ToleranceSeconds * sb.rules.RatePerSecond
	if math.Abs(float64(sub.Score)-expected) > tolerance {
		return SubmitResult{
			Reason:          ReasonScoreMismatch,
			ElapsedSec:      elapsedSec,
			ExpectedScore:   int64(expected),
			ToleranceFrames: int64(tolerance),
			ActualScore:     sub.Score,
		}, nil
	}

	if reason := sb.viewportViolation(info, sub); reason != "" {
		dpr := 1.0
		if sub.DPR != nil {
			dpr = *sub.DPR
		}
		return SubmitResult{
			Reason:   reason,
			Viewport: &ViewportDetail{VW: sub.ViewportW, VH: sub.ViewportH, DPR: dpr},
		}, nil
	}

	info.Used = true
	if err := sb.store.Put(ctx, key, info); err != nil {
		return SubmitResult{}, fmt.Errorf("consume session: %w", err)
	}

	var scores []ScoreEntry
	if _, err := sb.store.Get(ctx, scoresKey, &scores); err != nil {
		return SubmitResult{}, fmt.Errorf("load scores: %w", err)
	}
	scores = append(scores, ScoreEntry{
		Name:  sanitizeName(sub.Name),
		Score: sub.Score,
		TS:    nowMS,
	})
	// Stable sort: ties keep their original insertion order.
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > sb.rules.MaxEntries {
		scores = scores[:sb.rules.MaxEntries]
	}
	if err := sb.store.Put(ctx, scoresKey, scores); err != nil {
		return SubmitResult{}, fmt.Errorf("persist scores: %w", err)
	}

	return SubmitResult{Accepted: true}, nil
}

// viewportViolation applies the shrink heuristics. Either side of a
// comparison being absent skips that comparison (fail-open; older clients
// send no viewport data at all).
func (sb *ScoreBoard) viewportViolation(info SessionInfo, sub Submission) string {
	if info.StartW == nil || info.StartH == nil {
		return ""
	}
	threshold := sb.rules.ShrinkThreshold
	if sub.ViewportW > 0 && sub.ViewportH > 0 {
		if float64(sub.ViewportW) < float64(*info.StartW)*threshold ||
			float64(sub.ViewportH) < float64(*info.StartH)*threshold {
			return ReasonViewportShrink
		}
	}
	if info.DPR != nil && sub.DPR != nil && *sub.DPR < *info.DPR*threshold {
		return ReasonDPRShrink
	}
	return ""
}

// TopScores returns the leading entries of the ranked list, at most TopN.
// Read-only; never mutates state.
func (sb *ScoreBoard) TopScores(ctx context.Context) ([]RankedScore, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	var scores []ScoreEntry
	if _, err := sb.store.Get(ctx, scoresKey, &scores); err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	top := make([]RankedScore, 0, sb.rules.TopN)
	for _, entry := range scores {
		if len(top) >= sb.rules.TopN {
			break
		}
		top = append(top, RankedScore{Name: entry.Name, Score: entry.Score})
	}
	return top, nil
}

func randomToken(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
