package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// words builds "w0 w1 ... w(n-1)".
func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ChunkSize() != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.ChunkSize())
		}
		if p.Overlap() != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.Overlap())
		}
	})

	t.Run("custom values", func(t *testing.T) {
		p, err := New(WithChunkSize(100), WithOverlap(10))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ChunkSize() != 100 || p.Overlap() != 10 {
			t.Errorf("expected 100/10, got %d/%d", p.ChunkSize(), p.Overlap())
		}
	})

	t.Run("invalid configurations", func(t *testing.T) {
		cases := []struct {
			name string
			opts []Option
		}{
			{"overlap equals size", []Option{WithChunkSize(10), WithOverlap(10)}},
			{"overlap exceeds size", []Option{WithChunkSize(10), WithOverlap(15)}},
			{"negative overlap", []Option{WithOverlap(-1)}},
			{"zero size", []Option{WithChunkSize(0), WithOverlap(0)}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				p, err := New(tc.opts...)
				if !errors.Is(err, domain.ErrInvalidConfiguration) {
					t.Errorf("expected ErrInvalidConfiguration, got %v", err)
				}
				if p != nil {
					t.Error("expected nil processor")
				}
			})
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p, _ := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  \n"} {
		chunks, err := Chunk(text, 10, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestChunk_SingleWindow(t *testing.T) {
	chunks, err := Chunk("one  two\tthree\nfour", 10, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "one two three four" {
		t.Errorf("unexpected content %q", chunks[0])
	}
}

func TestChunk_WindowBoundaries(t *testing.T) {
	// 1200 words with 500/50 gives windows [0,500) [450,950) [900,1200).
	chunks, err := Chunk(words(1200), 500, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantStarts := []string{"w0", "w450", "w900"}
	wantEnds := []string{"w499", "w949", "w1199"}
	wantLens := []int{500, 500, 300}

	for i, c := range chunks {
		fields := strings.Fields(c)
		if len(fields) != wantLens[i] {
			t.Errorf("chunk %d: expected %d words, got %d", i, wantLens[i], len(fields))
		}
		if fields[0] != wantStarts[i] {
			t.Errorf("chunk %d: expected first word %s, got %s", i, wantStarts[i], fields[0])
		}
		if fields[len(fields)-1] != wantEnds[i] {
			t.Errorf("chunk %d: expected last word %s, got %s", i, wantEnds[i], fields[len(fields)-1])
		}
	}
}

func TestChunk_OverlapShared(t *testing.T) {
	chunks, err := Chunk(words(25), 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i+1 < len(chunks); i++ {
		cur := strings.Fields(chunks[i])
		next := strings.Fields(chunks[i+1])
		if len(cur) < 10 {
			continue
		}
		for j := 0; j < 3; j++ {
			if cur[len(cur)-3+j] != next[j] {
				t.Errorf("chunk %d/%d: overlap word %d differs: %s vs %s", i, i+1, j, cur[len(cur)-3+j], next[j])
			}
		}
	}
}

func TestChunk_CoversEveryWord(t *testing.T) {
	text := words(97)
	chunks, err := Chunk(text, 20, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for _, c := range chunks {
		fields := strings.Fields(c)
		if len(fields) > 20 {
			t.Errorf("chunk exceeds size: %d words", len(fields))
		}
		for _, w := range fields {
			seen[w] = true
		}
	}
	for _, w := range strings.Fields(text) {
		if !seen[w] {
			t.Errorf("word %s missing from chunks", w)
		}
	}
}

func TestChunk_NoOverlap(t *testing.T) {
	chunks, err := Chunk(words(30), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if strings.Fields(chunks[1])[0] != "w10" {
		t.Errorf("expected second chunk to start at w10, got %s", chunks[1])
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := words(333)
	a, _ := Chunk(text, 40, 7)
	b, _ := Chunk(text, 40, 7)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs", i)
		}
	}
}

func TestChunk_InvalidConfiguration(t *testing.T) {
	if _, err := Chunk("a b c", 5, 5); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestProcessor_Chunk(t *testing.T) {
	p, err := New(WithChunkSize(4), WithOverlap(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks, err := p.Chunk("a b c d e f g")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a b c d", "d e f g", "g"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %v", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}
