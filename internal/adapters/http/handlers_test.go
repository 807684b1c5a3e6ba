package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"svw.info/sudokucoach/internal/generator"
	"svw.info/sudokucoach/internal/hint"
	"svw.info/sudokucoach/internal/infrastructure/storage"
	"svw.info/sudokucoach/internal/solver"
	"svw.info/sudokucoach/internal/usecase"
	"svw.info/sudokucoach/internal/validator"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := solver.NewDLXSolver()
	uc := usecase.NewService(s, generator.NewUniqueGenerator(s), validator.New(), hint.NewSingles(), storage.NewFS(t.TempDir()))
	mux := http.NewServeMux()
	New(uc, nil).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string, out any) int {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestGenerateVariant(t *testing.T) {
	srv := newServer(t)
	var got generateResp
	if code := post(t, srv, "/api/generate", `{"variant":"mini4","difficulty":"easy","seed":7}`, &got); code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if got.Board.N != 4 || len(got.Board.Values) != 4 || got.Variant != "mini4" || got.Seed != 7 {
		t.Fatalf("unexpected response %+v", got)
	}
	if got.Solution == nil || got.Solution.Filled() != 16 {
		t.Fatalf("generate should return the full solution")
	}
}

func TestGenerateRejectsUnknownVariant(t *testing.T) {
	srv := newServer(t)
	var got errorResp
	if code := post(t, srv, "/api/generate", `{"variant":"huge25"}`, &got); code != http.StatusBadRequest || got.Error == "" {
		t.Fatalf("status %d err %q", code, got.Error)
	}
}

func TestBoardShapeChecked(t *testing.T) {
	srv := newServer(t)
	cases := map[string]string{
		"size":   `{"board":[[1,2,3],[0,0,0],[0,0,0]]}`,
		"ragged": `{"board":[[1,2,3,4],[0,0],[0,0,0,0],[0,0,0,0]]}`,
		"digit":  `{"board":[[5,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`,
		"json":   `{"board":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if code := post(t, srv, "/api/validate", body, nil); code != http.StatusBadRequest {
				t.Fatalf("status %d", code)
			}
		})
	}
}

func TestValidateAndSolveMini(t *testing.T) {
	srv := newServer(t)
	var v validateResp
	post(t, srv, "/api/validate", `{"board":[[1,1,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}`, &v)
	if v.OK || len(v.Conflicts) == 0 {
		t.Fatalf("duplicate in row should conflict: %+v", v)
	}

	var s solveResp
	if code := post(t, srv, "/api/solve", `{"board":[[1,2,0,0],[0,0,1,2],[0,0,0,0],[0,0,0,0]]}`, &s); code != http.StatusOK {
		t.Fatalf("solve status %d: %s", code, s.Error)
	}
	if s.Board == nil || s.Board.N != 4 || s.Board.Values[0][0] != 1 || s.Board.Values[1][3] != 2 {
		t.Fatalf("solution should keep givens: %+v", s.Board)
	}
	if s.Board.Filled() != 16 {
		t.Fatalf("solution has holes: %v", s.Board.Values)
	}
}

func TestHintNakedSingle(t *testing.T) {
	srv := newServer(t)
	var h hintResp
	post(t, srv, "/api/hint", `{"board":[[1,2,3,0],[3,4,1,2],[2,1,4,3],[4,3,2,1]],"maxTier":"singles"}`, &h)
	if !h.Found || h.Hint.Value != 4 || len(h.Hint.Cells) != 1 || h.Hint.Cells[0].Col != 3 {
		t.Fatalf("unexpected hint %+v", h)
	}
}

func TestSaveLoadList(t *testing.T) {
	srv := newServer(t)
	var saved saveResp
	body := `{"name":"warmup","difficulty":0,"board":{"n":4,"board":[[1,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]]}}`
	if code := post(t, srv, "/api/save", body, &saved); code != http.StatusOK || saved.ID == "" {
		t.Fatalf("save status %d id %q", code, saved.ID)
	}

	var loaded loadResp
	if code := post(t, srv, "/api/load", `{"id":"`+saved.ID+`"}`, &loaded); code != http.StatusOK {
		t.Fatalf("load status %d", code)
	}
	if loaded.Puzzle == nil || loaded.Puzzle.Name != "warmup" || loaded.Puzzle.Board.N != 4 || !loaded.Puzzle.Board.Fixed[0][0] {
		t.Fatalf("unexpected puzzle %+v", loaded.Puzzle)
	}

	resp, err := http.Get(srv.URL + "/api/list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	var list listResp
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Puzzles) != 1 || list.Puzzles[0].ID != saved.ID {
		t.Fatalf("unexpected list %+v", list.Puzzles)
	}

	if code := post(t, srv, "/api/load", `{"id":"missing"}`, nil); code != http.StatusNotFound {
		t.Fatalf("missing id status %d", code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/api/generate")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
