package lang

import (
	"strconv"
	"sync"
	"testing"
)

func TestCache_Parse(t *testing.T) {
	var c Cache

	a := c.Parse(t.Context(), "a.polly", "&x{1}")
	b := c.Parse(t.Context(), "a.polly", "&x{1}")

	if a != b {
		t.Error("expected identical sources to share a document")
	}

	if c.Parse(t.Context(), "b.polly", "&x{1}") == a {
		t.Error("expected a different label to parse again")
	}

	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestCache_ReplacesChangedText(t *testing.T) {
	c := NewCache()

	first := c.Parse(t.Context(), "page.polly", "/p{0}")

	var last *Document

	for i := range 5 {
		last = c.Parse(t.Context(), "page.polly", "/p{"+strconv.Itoa(i+1)+"}")
	}

	if last == first {
		t.Error("expected changed text to parse again")
	}

	if c.Len() != 1 {
		t.Errorf("expected one entry per label, got %d", c.Len())
	}

	if c.Parse(t.Context(), "page.polly", "/p{5}") != last {
		t.Error("expected unchanged text to hit the cache")
	}

	if c.Parse(t.Context(), "page.polly", "/p{0}") == first {
		t.Error("expected replaced text to parse again")
	}
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache()

	var (
		wg   sync.WaitGroup
		docs = make([]*Document, 8)
	)

	for i := range docs {
		wg.Go(func() {
			docs[i] = c.Parse(t.Context(), "same.polly", "/p{same}")
		})
	}

	wg.Wait()

	for i, d := range docs {
		if d != docs[0] {
			t.Errorf("goroutine %d parsed its own document", i)
		}
	}
}

func TestTemplate_WithCache(t *testing.T) {
	c := NewCache()

	for range 2 {
		tmpl, err := NewTemplate(t.Context(), "page.polly", "&a{A}&a", WithCache(c))
		if err != nil {
			t.Fatalf("template error: %v", err)
		}

		if got, err := tmpl.Render(t.Context(), Null()); err != nil || got != "A" {
			t.Fatalf("expected A, got %q (%v)", got, err)
		}
	}

	if c.Len() != 1 {
		t.Errorf("expected one cached document, got %d", c.Len())
	}
}
