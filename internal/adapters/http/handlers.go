// Package httpadapter exposes the puzzle Service as a small JSON API.
package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/usecase"
)

type Handler struct {
	UC  *usecase.Service
	Log *slog.Logger
}

func New(uc *usecase.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{UC: uc, Log: log.With("component", "http")}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/generate", h.post(h.handleGenerate))
	mux.HandleFunc("/api/solve", h.post(h.handleSolve))
	mux.HandleFunc("/api/validate", h.post(h.handleValidate))
	mux.HandleFunc("/api/hint", h.post(h.handleHint))
	mux.HandleFunc("/api/save", h.post(h.handleSave))
	mux.HandleFunc("/api/load", h.post(h.handleLoad))
	mux.HandleFunc("/api/list", h.handleList)
}

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}

func (h *Handler) post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// allowEmpty is set.
func decode(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// boardFrom turns a raw grid into a Board, rejecting shapes that are not
// one of the supported variants. Non-zero cells count as givens.
func boardFrom(values [][]uint8) (*domain.Board, error) {
	n := len(values)
	if _, ok := domain.VariantForSize(n); !ok {
		return nil, fmt.Errorf("unsupported board size %d", n)
	}
	b := domain.NewBoard(n)
	for r, row := range values {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", r, len(row), n)
		}
		for c, v := range row {
			if int(v) > n {
				return nil, fmt.Errorf("cell (%d,%d) holds %d, max is %d", r, c, v, n)
			}
			b.Values[r][c] = v
			b.Fixed[r][c] = v != 0
		}
	}
	return b, nil
}

// ---- Generate ----

type generateReq struct {
	Variant    string `json:"variant,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Seed       int64  `json:"seed,omitempty"`
}

type generateResp struct {
	Board      domain.Board  `json:"board"`
	Solution   *domain.Board `json:"solution,omitempty"`
	Variant    string        `json:"variant"`
	Seed       int64         `json:"seed,omitempty"`
	Difficulty string        `json:"difficulty"`
	DurationMs int64         `json:"durationMs"`
	Nodes      int           `json:"nodes,omitempty"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := decode(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v := domain.Classic9
	if req.Variant != "" {
		var ok bool
		if v, ok = domain.ParseVariant(req.Variant); !ok {
			writeError(w, http.StatusBadRequest, "unknown variant "+req.Variant)
			return
		}
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	diff, _ := domain.ParseDifficulty(req.Difficulty)
	p, st, err := h.UC.Generate(r.Context(), seed, v, diff)
	if err != nil {
		h.Log.Error("generate", "variant", v, "difficulty", diff, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generateResp{
		Board:      p.Board,
		Solution:   p.Solution,
		Variant:    v.Key(),
		Seed:       seed,
		Difficulty: diff.String(),
		DurationMs: st.Duration.Milliseconds(),
		Nodes:      st.Nodes,
	})
}

// ---- Validate ----

type boardReq struct {
	Board   [][]uint8 `json:"board"`
	MaxTier string    `json:"maxTier,omitempty"`
}

type validateResp struct {
	OK        bool               `json:"ok"`
	Conflicts []domain.CellCoord `json:"conflicts,omitempty"`
}

// readBoard decodes a boardReq and converts its grid.
func readBoard(w http.ResponseWriter, r *http.Request) (*domain.Board, boardReq, bool) {
	var req boardReq
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, req, false
	}
	b, err := boardFrom(req.Board)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, req, false
	}
	return b, req, true
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	b, _, ok := readBoard(w, r)
	if !ok {
		return
	}
	valid, conflicts, err := h.UC.Validate(r.Context(), b)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, validateResp{OK: valid, Conflicts: conflicts})
}

// ---- Solve ----

type solveResp struct {
	Board      *domain.Board `json:"board,omitempty"`
	DurationMs int64         `json:"durationMs"`
	Nodes      int           `json:"nodes,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	in, _, ok := readBoard(w, r)
	if !ok {
		return
	}
	out, st, err := h.UC.Solve(r.Context(), in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, solveResp{Error: err.Error(), DurationMs: st.Duration.Milliseconds(), Nodes: st.Nodes})
		return
	}
	writeJSON(w, http.StatusOK, solveResp{Board: out, DurationMs: st.Duration.Milliseconds(), Nodes: st.Nodes})
}

// ---- Hint ----

type hintResp struct {
	Found bool        `json:"found"`
	Hint  domain.Hint `json:"hint"`
}

func (h *Handler) handleHint(w http.ResponseWriter, r *http.Request) {
	b, req, ok := readBoard(w, r)
	if !ok {
		return
	}
	hh, found, err := h.UC.Hint(r.Context(), b, domain.ParseStrategyTier(req.MaxTier))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, hintResp{Found: found, Hint: hh})
}

// ---- Save / Load / List ----

type saveResp struct {
	ID string `json:"id"`
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var p domain.Puzzle
	if err := decode(r, &p, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := boardFrom(p.Board.Values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fixedFits(p.Board.Fixed, b.N) {
		b.Fixed = p.Board.Fixed
	}
	p.Board = *b
	p.Variant, _ = domain.VariantForSize(b.N)
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UnixNano()
	}
	if err := h.UC.Save(r.Context(), &p); err != nil {
		h.Log.Error("save", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saveResp{ID: p.ID})
}

func fixedFits(fixed [][]bool, n int) bool {
	if len(fixed) != n {
		return false
	}
	for _, row := range fixed {
		if len(row) != n {
			return false
		}
	}
	return true
}

type loadReq struct {
	ID string `json:"id"`
}

type loadResp struct {
	Puzzle *domain.Puzzle `json:"puzzle"`
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadReq
	if err := decode(r, &req, false); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid JSON or missing id")
		return
	}
	p, err := h.UC.Load(r.Context(), req.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, loadResp{Puzzle: p})
}

type listResp struct {
	Puzzles []domain.PuzzleMeta `json:"puzzles"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ps, err := h.UC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if ps == nil {
		ps = []domain.PuzzleMeta{}
	}
	writeJSON(w, http.StatusOK, listResp{Puzzles: ps})
}
