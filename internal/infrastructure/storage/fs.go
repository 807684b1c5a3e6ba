package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"svw.info/sudokucoach/internal/domain"
)

type FS struct{ dir string }

func NewFS(dir string) *FS { return &FS{dir: dir} }

func diffDir(d domain.Difficulty) string { return d.String() }

var buckets = []domain.Difficulty{domain.Easy, domain.Medium, domain.Hard, domain.Expert}

func (s *FS) pathFor(id string, d domain.Difficulty) string {
	return filepath.Join(s.dir, diffDir(d), strings.TrimSpace(id)+".json")
}

// Save writes p as indented JSON, assigning a fresh id when p has none.
func (s *FS) Save(ctx context.Context, p *domain.Puzzle) error {
	if p == nil {
		return errors.New("invalid puzzle: nil")
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if strings.ContainsAny(p.ID, `/\`) {
		return errors.New("invalid puzzle: id contains a path separator")
	}
	// Ensure directory ./data/{difficulty} exists
	target := s.pathFor(p.ID, p.Difficulty)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func (s *FS) Load(ctx context.Context, id string) (*domain.Puzzle, error) {
	if strings.ContainsAny(id, `/\`) {
		return nil, os.ErrNotExist
	}
	type cand struct {
		path   string
		diff   domain.Difficulty
		legacy bool
	}
	var candidates []cand
	for _, d := range buckets {
		candidates = append(candidates, cand{s.pathFor(id, d), d, false})
	}
	candidates = append(candidates, cand{filepath.Join(s.dir, id+".json"), 0, true}) // legacy flat layout

	var chosen *cand
	var data []byte
	for i := range candidates {
		c := candidates[i]
		if _, statErr := os.Stat(c.path); statErr == nil {
			b, err := os.ReadFile(c.path)
			if err != nil {
				return nil, err
			}
			data = b
			chosen = &c
			break
		}
	}
	if data == nil {
		return nil, os.ErrNotExist
	}
	var out domain.Puzzle
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	// If difficulty missing, infer from the folder we loaded from (legacy defaults to Medium)
	if out.Difficulty == 0 {
		if chosen != nil && !chosen.legacy {
			out.Difficulty = chosen.diff
		} else {
			out.Difficulty = domain.Medium
		}
	}
	// boards saved before variants existed carry no size
	if out.Board.N == 0 {
		out.Board.N = len(out.Board.Values)
	}
	return &out, nil
}

type metaFile struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Variant    domain.Variant    `json:"variant"`
	Difficulty domain.Difficulty `json:"difficulty"`
	CreatedAt  int64             `json:"createdAt"`
}

func readMetas(dir string, fallback domain.Difficulty) ([]domain.PuzzleMeta, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []domain.PuzzleMeta
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var mm metaFile
		if err := json.Unmarshal(data, &mm); err != nil || mm.ID == "" {
			continue
		}
		dd := mm.Difficulty
		if dd == 0 {
			dd = fallback // infer from folder if absent
		}
		out = append(out, domain.PuzzleMeta{
			ID:         mm.ID,
			Name:       mm.Name,
			Variant:    mm.Variant,
			Difficulty: dd,
			CreatedAt:  mm.CreatedAt,
		})
	}
	return out, nil
}

func (s *FS) List(ctx context.Context) ([]domain.PuzzleMeta, error) {
	var out []domain.PuzzleMeta
	// scan subfolders by difficulty
	for _, d := range buckets {
		ms, err := readMetas(filepath.Join(s.dir, diffDir(d)), d)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		out = append(out, ms...)
	}
	// Also include legacy flat files in s.dir
	if ms, err := readMetas(s.dir, domain.Medium); err == nil {
		out = append(out, ms...)
	}
	return out, nil
}
