package main

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
)

//go:embed public/*
var content embed.FS

var publicFS = mustSubFS(content, "public")

func mustSubFS(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("failed to load configuration:", err)
	}

	var store Store
	if cfg.DatabaseURL != "" {
		pg, err := openPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to open database:", err)
		}
		defer pg.Close()
		store = pg
		log.Println("Connected to PostgreSQL")
	} else {
		files, err := openFileStore(cfg.DataDir)
		if err != nil {
			log.Fatal("failed to open data dir:", err)
		}
		store = files
		log.Println("DATABASE_URL not set; using file store at", cfg.DataDir)
	}

	board := NewScoreBoard(store, cfg.ScoringRules())

	ai := NewAIClient(cfg.AIURL, cfg.AIToken)
	if !ai.Configured() {
		log.Println("AI upstream not configured; /api/ai disabled")
	}

	mux := http.NewServeMux()
	registerRoutes(mux, board, ai, store)

	addr := "0.0.0.0:" + cfg.Port
	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal("server failed:", err)
	}
}

/* ======================
   Routes
   ====================== */

func registerRoutes(mux *http.ServeMux, board *ScoreBoard, ai *AIClient, store Store) {
	mux.HandleFunc("/", serveIndex)
	mux.HandleFunc("/health", healthHandler(store))
	mux.HandleFunc("/api/start", startHandler(board))
	mux.HandleFunc("/api/score", scoreHandler(board))
	mux.HandleFunc("/api/leaderboard", leaderboardHandler(board))
	mux.HandleFunc("/api/ai", aiHandler(ai))
	mux.HandleFunc("/static/", staticHandler())
}
