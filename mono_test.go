package mono_test

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/b97tsk/mono"
)

func TestMapComposition(t *testing.T) {
	g1 := func(v int) int { return v + 3 }
	g2 := func(v int) string { return strconv.Itoa(v * 2) }

	chained := mono.Map(mono.Map(mono.FromFunc(func() (int, error) { return 7, nil }), g1), g2)
	fused := mono.FromFunc(func() (string, error) { return g2(g1(7)), nil })

	a, err := chained.Block()
	if err != nil {
		t.Fatal(err)
	}
	b, err := fused.Block()
	if err != nil {
		t.Fatal(err)
	}
	if a != b || a != "20" {
		t.Errorf("got %q and %q, want %q", a, b, "20")
	}
}

func TestShortCircuit(t *testing.T) {
	boom := errors.New("boom")

	var mapped, observed atomic.Bool

	m := mono.Map(
		mono.FromFunc(func() (int, error) { return 0, boom }),
		func(v int) int { mapped.Store(true); return v },
	).DoOnSuccess(func(int) { observed.Store(true) })

	if _, ok := m.BlockOptional(); ok {
		t.Error("BlockOptional reported a value for a failed pipeline")
	}
	if mapped.Load() {
		t.Error("Map ran after a failure")
	}
	if observed.Load() {
		t.Error("DoOnSuccess ran after a failure")
	}

	if _, err := m.Block(); !errors.Is(err, boom) {
		t.Errorf("Block error = %v, want cause %v", err, boom)
	}
}

func TestOnErrorResume(t *testing.T) {
	boom := errors.New("boom")

	m := mono.Error[int](boom).OnErrorResume(func(err error) *mono.Mono[int] {
		if !errors.Is(err, boom) {
			t.Errorf("handler got %v, want cause %v", err, boom)
		}
		return mono.Just(42)
	})

	v, err := m.Block()
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("got %d, want 42", v)
	}
}

func TestOnErrorResumeSkippedOnSuccess(t *testing.T) {
	m := mono.Just(1).OnErrorResume(func(error) *mono.Mono[int] {
		t.Error("handler ran for a successful pipeline")
		return mono.Just(0)
	})
	if v, _ := m.Block(); v != 1 {
		t.Errorf("got %d, want 1", v)
	}
}

func TestOnErrorResumeFailing(t *testing.T) {
	boom := errors.New("boom")
	worse := errors.New("worse")

	m := mono.Error[int](boom).OnErrorResume(func(error) *mono.Mono[int] {
		return mono.Error[int](worse)
	})

	_, err := m.Block()
	if !errors.Is(err, worse) {
		t.Errorf("error = %v, want cause %v", err, worse)
	}
	var se *mono.StageError
	if !errors.As(err, &se) || se.Stage != mono.StageRecover {
		t.Errorf("error = %v, want recover-stage tag", err)
	}
}

func TestOnErrorResumeReusesSettledFallback(t *testing.T) {
	var runs atomic.Int32

	fallback := mono.FromFunc(func() (int, error) {
		return int(runs.Add(1)) + 41, nil
	})

	// Settle the fallback before the failing pipeline resumes with it.
	if v, err := fallback.Block(); err != nil || v != 42 {
		t.Fatalf("fallback Block = (%d, %v), want (42, nil)", v, err)
	}

	m := mono.Error[int](errors.New("boom")).
		OnErrorResume(func(error) *mono.Mono[int] { return fallback })

	v, err := m.Block()
	if err != nil {
		t.Fatal(err)
	}
	if v != 42 {
		t.Errorf("got %d, want the fallback's cached 42", v)
	}
	if n := runs.Load(); n != 1 {
		t.Errorf("fallback computation ran %d times, want 1", n)
	}
}

func TestOnErrorResumeNil(t *testing.T) {
	m := mono.Error[int](errors.New("boom")).
		OnErrorResume(func(error) *mono.Mono[int] { return nil })
	if _, err := m.Block(); err == nil {
		t.Error("nil resume did not fail the pipeline")
	}
}

func TestThen(t *testing.T) {
	if _, err := mono.Just("payload").Then().Block(); err != nil {
		t.Errorf("Then on success failed: %v", err)
	}

	boom := errors.New("boom")
	if _, err := mono.Error[string](boom).Then().Block(); !errors.Is(err, boom) {
		t.Errorf("Then error = %v, want cause %v", err, boom)
	}
}

func TestBlockIdempotent(t *testing.T) {
	var runs atomic.Int32

	m := mono.FromFunc(func() (int, error) {
		return int(runs.Add(1)), nil
	}).SubscribeOn(mono.Single())

	v1, ok1 := m.BlockOptional()
	v2, ok2 := m.BlockOptional()

	if !ok1 || !ok2 || v1 != v2 {
		t.Errorf("got (%d,%t) then (%d,%t), want identical present values", v1, ok1, v2, ok2)
	}
	if n := runs.Load(); n != 1 {
		t.Errorf("computation ran %d times, want 1", n)
	}
	if !m.Settled() {
		t.Error("Settled reported false after Block returned")
	}
}

func TestStartThenBlock(t *testing.T) {
	var runs atomic.Int32

	m := mono.FromFunc(func() (int, error) {
		runs.Add(1)
		return 9, nil
	}).SubscribeOn(mono.NewPool(2))

	m.Start()
	m.Start()

	if v, err := m.Block(); err != nil || v != 9 {
		t.Errorf("Block = (%d, %v), want (9, nil)", v, err)
	}
	if n := runs.Load(); n != 1 {
		t.Errorf("computation ran %d times, want 1", n)
	}
}

func TestSubscribe(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		done := make(chan int, 1)
		mono.Just(5).SubscribeOn(mono.Single()).Subscribe(
			func(v int) { done <- v },
			func(err error) { t.Error(err) },
		)
		if v := <-done; v != 5 {
			t.Errorf("got %d, want 5", v)
		}
	})
	t.Run("Failure", func(t *testing.T) {
		boom := errors.New("boom")
		done := make(chan error, 1)
		mono.Error[int](boom).SubscribeOn(mono.Single()).Subscribe(
			func(int) { t.Error("value delivered for a failed pipeline") },
			func(err error) { done <- err },
		)
		if err := <-done; !errors.Is(err, boom) {
			t.Errorf("got %v, want cause %v", err, boom)
		}
	})
	t.Run("AfterSettled", func(t *testing.T) {
		var runs atomic.Int32
		m := mono.FromFunc(func() (int, error) { return int(runs.Add(1)), nil })

		if v, err := m.Block(); err != nil || v != 1 {
			t.Fatalf("Block = (%d, %v)", v, err)
		}

		var got int
		m.Subscribe(func(v int) { got = v }, nil)
		if got != 1 {
			t.Errorf("cached delivery got %d, want 1", got)
		}
		if n := runs.Load(); n != 1 {
			t.Errorf("computation ran %d times, want 1", n)
		}
	})
	t.Run("AfterSettledOnPool", func(t *testing.T) {
		var runs atomic.Int32
		m := mono.FromFunc(func() (int, error) {
			return int(runs.Add(1)) + 6, nil
		}).SubscribeOn(mono.NewPool(1))

		if v, err := m.Block(); err != nil || v != 7 {
			t.Fatalf("Block = (%d, %v)", v, err)
		}

		// The cached result is delivered through the scheduler;
		// Subscribe itself must not wait for it.
		done := make(chan int, 1)
		m.Subscribe(func(v int) { done <- v }, nil)
		if v := <-done; v != 7 {
			t.Errorf("cached delivery got %d, want 7", v)
		}
		if n := runs.Load(); n != 1 {
			t.Errorf("computation ran %d times, want 1", n)
		}
	})
}

func TestStageTags(t *testing.T) {
	boom := errors.New("boom")

	assertStage := func(t *testing.T, err error, want mono.Stage) {
		t.Helper()
		var se *mono.StageError
		if !errors.As(err, &se) {
			t.Fatalf("error %v carries no stage", err)
		}
		if se.Stage != want {
			t.Errorf("stage = %v, want %v", se.Stage, want)
		}
	}

	t.Run("Compute", func(t *testing.T) {
		_, err := mono.FromFunc(func() (int, error) { return 0, boom }).Block()
		assertStage(t, err, mono.StageCompute)
		if !errors.Is(err, boom) {
			t.Errorf("cause lost: %v", err)
		}
	})
	t.Run("Transform", func(t *testing.T) {
		m := mono.MapE(mono.Just(1), func(int) (int, error) { return 0, boom })
		_, err := m.Block()
		assertStage(t, err, mono.StageTransform)
	})
	t.Run("TransformPanic", func(t *testing.T) {
		m := mono.Map(mono.Just(1), func(int) int { panic(boom) })
		_, err := m.Block()
		assertStage(t, err, mono.StageTransform)
		if !errors.Is(err, boom) {
			t.Errorf("panic value lost: %v", err)
		}
	})
	t.Run("ObserverPanic", func(t *testing.T) {
		m := mono.Just(1).DoOnSuccess(func(int) { panic("observer") })
		_, err := m.Block()
		assertStage(t, err, mono.StageTransform)
	})
	t.Run("ComputePanic", func(t *testing.T) {
		m := mono.FromFunc(func() (int, error) { panic("compute") })
		_, err := m.Block()
		assertStage(t, err, mono.StageCompute)
	})
}

func TestDerivedPipelinesAreIndependent(t *testing.T) {
	var runs atomic.Int32

	src := mono.FromFunc(func() (int, error) {
		runs.Add(1)
		return 10, nil
	})

	doubled := mono.Map(src, func(v int) int { return v * 2 })
	tripled := mono.Map(src, func(v int) int { return v * 3 })

	if v, _ := doubled.Block(); v != 20 {
		t.Errorf("doubled = %d, want 20", v)
	}
	if v, _ := tripled.Block(); v != 30 {
		t.Errorf("tripled = %d, want 30", v)
	}

	// Each derived Mono is its own instance with its own execution.
	if n := runs.Load(); n != 2 {
		t.Errorf("computation ran %d times, want 2", n)
	}
}

func TestConcurrentChains(t *testing.T) {
	pool := mono.NewPool(4)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := mono.Map(
				mono.FromFunc(func() (int, error) { return i, nil }).SubscribeOn(pool),
				func(v int) int { return v * v },
			)
			if v, err := m.Block(); err != nil || v != i*i {
				t.Errorf("chain %d = (%d, %v), want (%d, nil)", i, v, err, i*i)
			}
		}()
	}
	wg.Wait()
}

func TestAttachmentOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(s string) func(int) {
		return func(int) {
			mu.Lock()
			order = append(order, s)
			mu.Unlock()
		}
	}

	m := mono.Just(1).
		DoOnSuccess(record("first")).
		DoOnSuccess(record("second")).
		DoOnSuccess(record("third")).
		SubscribeOn(mono.Single())

	if _, err := m.Block(); err != nil {
		t.Fatal(err)
	}

	want := []string{"first", "second", "third"}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != len(want) {
		t.Fatalf("observed %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("observed %v, want %v", order, want)
		}
	}
}
