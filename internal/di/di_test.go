package di

import (
	"sync"
	"sync/atomic"
	"testing"
)

type widget struct{ n int }

func TestToken_LazySingleton(t *testing.T) {
	c := NewContainer()
	tok := NewToken[*widget]("test.widget")

	var built atomic.Int32
	RegisterToken(c, tok, func(sr ServiceRegistry) *widget {
		built.Add(1)
		return &widget{n: 7}
	})

	if built.Load() != 0 {
		t.Fatal("factory should not run before first Get")
	}

	var wg sync.WaitGroup
	results := make([]*widget, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = GetToken(c, tok)
		}(i)
	}
	wg.Wait()

	if built.Load() != 1 {
		t.Errorf("expected factory to run once, ran %d times", built.Load())
	}
	for i, w := range results {
		if w != results[0] {
			t.Errorf("result %d is a different instance", i)
		}
	}
}

func TestContainer_FactoryResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("base", 40)

	tok := NewToken[*widget]("test.widget")
	RegisterToken(c, tok, func(sr ServiceRegistry) *widget {
		return &widget{n: sr.Get("base").(int) + 2}
	})

	if got := GetToken(c, tok).n; got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestContainer_MissingPanics(t *testing.T) {
	c := NewContainer()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered service")
		}
	}()
	c.Get("nope")
}

func TestContainer_Has(t *testing.T) {
	c := NewContainer()
	c.Register("a", 1)

	if !c.Has("a") {
		t.Error("expected Has(a)")
	}
	if c.Has("b") {
		t.Error("did not expect Has(b)")
	}
}
