package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVariantGeometry(t *testing.T) {
	for _, v := range Variants {
		br, bc := v.Box()
		if br*bc != v.Size() {
			t.Fatalf("%s: box %dx%d does not multiply to %d", v, br, bc, v.Size())
		}
		got, ok := ParseVariant(v.Key())
		if !ok || got != v {
			t.Fatalf("ParseVariant(%q) = %v,%v", v.Key(), got, ok)
		}
	}
	if _, ok := ParseVariant("hex25"); ok {
		t.Fatalf("unknown key accepted")
	}
}

func TestBoxOrigin(t *testing.T) {
	cases := []struct {
		n, r, c, wr, wc int
	}{
		{9, 4, 7, 3, 6},
		{9, 0, 0, 0, 0},
		{4, 3, 1, 2, 0},
		{16, 15, 5, 12, 4},
	}
	for _, tc := range cases {
		b := NewBoard(tc.n)
		r, c := b.BoxOrigin(tc.r, tc.c)
		if r != tc.wr || c != tc.wc {
			t.Fatalf("BoxOrigin(%d,%d) on %d = %d,%d want %d,%d", tc.r, tc.c, tc.n, r, c, tc.wr, tc.wc)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	b := NewBoard(4)
	b.Values[0][0] = 1
	b.Fixed[0][0] = true
	cp := b.Clone()
	cp.Values[0][0] = 2
	cp.Fixed[0][0] = false
	if b.Values[0][0] != 1 || !b.Fixed[0][0] {
		t.Fatalf("clone shares storage")
	}
	if cp.Filled() != 1 {
		t.Fatalf("Filled = %d", cp.Filled())
	}
}

func TestBoardJSONUsesNumbers(t *testing.T) {
	b := NewBoard(4)
	b.Values[0][1], b.Fixed[0][1] = 3, true
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"board":[[0,3,0,0],`) {
		t.Fatalf("rows should be number arrays: %s", data)
	}
	var back Board
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.N != 4 || back.Values[0][1] != 3 || !back.Fixed[0][1] {
		t.Fatalf("unexpected board %+v", back)
	}
}
