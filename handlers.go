package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
)

// pinger is satisfied by stores that can report backend reachability.
type pinger interface {
	Ping(ctx context.Context) error
}

/* ======================
   Request / Response Types
   ====================== */

type StartRequest struct {
	W   *uint    `json:"w,omitempty"`
	H   *uint    `json:"h,omitempty"`
	DPR *float64 `json:"dpr,omitempty"`
}

type StartResponse struct {
	SessionID string `json:"session_id"`
}

type ScoreRequest struct {
	SessionID string   `json:"session_id"`
	Name      string   `json:"name,omitempty"`
	Score     int64    `json:"score"`
	ViewportW uint     `json:"viewport_w,omitempty"`
	ViewportH uint     `json:"viewport_h,omitempty"`
	DPR       *float64 `json:"dpr,omitempty"`
}

type AIRequest struct {
	Prompt string `json:"prompt"`
}

type AIResponse struct {
	Result string `json:"result"`
}

type SimpleResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

/* ======================
   Handlers
   ====================== */

func startHandler(board *ScoreBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// The viewport hints are optional; a missing or malformed body just
		// opens a session without them.
		var req StartRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		sessionID, err := board.OpenSession(r.Context(), ViewportHints{
			Width:  req.W,
			Height: req.H,
			DPR:    req.DPR,
		})
		if err != nil {
			log.Println("open session:", err)
			writeJSON(w, http.StatusInternalServerError, SimpleResponse{Error: "STORAGE_ERROR"})
			return
		}
		writeJSON(w, http.StatusOK, StartResponse{SessionID: sessionID})
	}
}

func scoreHandler(board *ScoreBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req ScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, SimpleResponse{Error: "INVALID_BODY"})
			return
		}

		result, err := board.SubmitScore(r.Context(), Submission{
			SessionID: req.SessionID,
			Name:      req.Name,
			Score:     req.Score,
			ViewportW: req.ViewportW,
			ViewportH: req.ViewportH,
			DPR:       req.DPR,
		})
		if err != nil {
			log.Println("submit score:", err)
			writeJSON(w, http.StatusInternalServerError, SimpleResponse{Error: "STORAGE_ERROR"})
			return
		}

		status := http.StatusOK
		if !result.Accepted {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, result)
	}
}

func leaderboardHandler(board *ScoreBoard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		top, err := board.TopScores(r.Context())
		if err != nil {
			log.Println("top scores:", err)
			writeJSON(w, http.StatusInternalServerError, SimpleResponse{Error: "STORAGE_ERROR"})
			return
		}
		writeJSON(w, http.StatusOK, top)
	}
}

func aiHandler(ai *AIClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !ai.Configured() {
			writeJSON(w, http.StatusServiceUnavailable, SimpleResponse{Error: "AI_NOT_CONFIGURED"})
			return
		}

		var req AIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, SimpleResponse{Error: "INVALID_BODY"})
			return
		}

		result, err := ai.Generate(r.Context(), req.Prompt)
		if err != nil {
			log.Println("ai upstream:", err)
			writeJSON(w, http.StatusBadGateway, SimpleResponse{Error: "AI_UPSTREAM_ERROR"})
			return
		}
		writeJSON(w, http.StatusOK, AIResponse{Result: result})
	}
}

func healthHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if p, ok := store.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusInternalServerError, SimpleResponse{Error: "STORAGE_ERROR"})
				return
			}
		}
		writeJSON(w, http.StatusOK, SimpleResponse{OK: true})
	}
}

/* ======================
   Static assets
   ====================== */

func serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	serveAsset(w, r, "index.html")
}

func staticHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		serveAsset(w, r, strings.TrimPrefix(r.URL.Path, "/static/"))
	}
}

func serveAsset(w http.ResponseWriter, r *http.Request, name string) {
	// game.js is never cached so anti-cheat tweaks ship immediately; the rest
	// of the assets are fine to cache for a day.
	if strings.HasSuffix(name, "game.js") {
		w.Header().Set("Cache-Control", "no-store, max-age=0")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=86400")
	}
	http.ServeFileFS(w, r, publicFS, name)
}
