package world

import "testing"

func TestQuadInsertQuery(t *testing.T) {
	qt := NewQuadIndex()
	for x := -5; x <= 5; x++ {
		for y := -5; y <= 5; y++ {
			qt.Insert(ChunkKey{X: x, Y: y})
		}
	}
	if got := qt.Len(); got != 121 {
		t.Fatalf("Len = %d, want 121", got)
	}

	hits := qt.Query(Rect{X0: -1, Y0: -1, X1: 2, Y1: 2}, nil)
	if len(hits) != 9 {
		t.Errorf("query returned %d keys, want 9", len(hits))
	}
	for _, k := range hits {
		if k.X < -1 || k.X > 1 || k.Y < -1 || k.Y > 1 {
			t.Errorf("query returned out-of-rect key %v", k)
		}
	}
}

func TestQuadRemove(t *testing.T) {
	qt := NewQuadIndex()
	for x := 0; x < 40; x++ {
		qt.Insert(ChunkKey{X: x, Y: 0})
	}

	if !qt.Remove(ChunkKey{X: 17, Y: 0}) {
		t.Fatal("remove of existing key failed")
	}
	if qt.Remove(ChunkKey{X: 17, Y: 0}) {
		t.Error("second remove of same key succeeded")
	}
	if got := qt.Len(); got != 39 {
		t.Errorf("Len after remove = %d, want 39", got)
	}

	hits := qt.Query(Rect{X0: 17, Y0: 0, X1: 18, Y1: 1}, nil)
	if len(hits) != 0 {
		t.Errorf("removed key still queryable: %v", hits)
	}
}

func TestQuadWalk(t *testing.T) {
	qt := NewQuadIndex()
	want := map[ChunkKey]bool{}
	for x := -100; x < 100; x += 7 {
		key := ChunkKey{X: x, Y: -x}
		qt.Insert(key)
		want[key] = true
	}

	seen := map[ChunkKey]bool{}
	qt.Walk(func(k ChunkKey) { seen[k] = true })
	if len(seen) != len(want) {
		t.Fatalf("walk visited %d keys, want %d", len(seen), len(want))
	}
	for k := range want {
		if !seen[k] {
			t.Errorf("walk missed %v", k)
		}
	}
}

func TestQuadSubdivision(t *testing.T) {
	qt := NewQuadIndex()
	// Enough keys in one region to force several subdivisions.
	for x := 0; x < 50; x++ {
		for y := 0; y < 50; y++ {
			qt.Insert(ChunkKey{X: x, Y: y})
		}
	}
	if got := qt.Len(); got != 2500 {
		t.Fatalf("Len = %d, want 2500", got)
	}
	hits := qt.Query(Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}, nil)
	if len(hits) != 100 {
		t.Errorf("query after subdivision returned %d, want 100", len(hits))
	}
}
