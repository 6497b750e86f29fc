package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testWork struct {
	name string
	deps []Work
}

func (w *testWork) Dependencies() []Work { return w.deps }
func (w *testWork) String() string       { return w.name }

func node(name string, deps ...Work) *testWork {
	return &testWork{name: name, deps: deps}
}

func TestNewInfo(t *testing.T) {
	t.Run("single node", func(t *testing.T) {
		a := node("a")
		info := NewInfo(a)

		require.Len(t, info.Nodes(), 1)
		assert.Equal(t, 0, info.Ordinal(a))
		assert.Empty(t, info.Dependents(a))
	})

	t.Run("chain records forward and reverse edges", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		c := node("c", b)
		info := NewInfo(c)

		require.Len(t, info.Nodes(), 3)
		assert.Equal(t, []Work{b}, info.Dependents(a))
		assert.Equal(t, []Work{c}, info.Dependents(b))
		assert.Empty(t, info.Dependents(c))
	})

	t.Run("diamond visits shared dependency once", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		c := node("c", a)
		d := node("d", b, c)
		info := NewInfo(d)

		require.Len(t, info.Nodes(), 4)
		assert.ElementsMatch(t, []Work{b, c}, info.Dependents(a))
	})

	t.Run("ordinals are distinct", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		c := node("c", a, b)
		info := NewInfo(c)

		seen := map[int]bool{}
		for _, w := range info.Nodes() {
			ord := info.Ordinal(w)
			assert.False(t, seen[ord], "duplicate ordinal %d", ord)
			seen[ord] = true
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("initial ready is the dependency-free set", func(t *testing.T) {
		a := node("a")
		b := node("b")
		c := node("c", a, b)
		run := NewInfo(c).NewRun()

		ready := run.TakeInitialReady()
		assert.ElementsMatch(t, []Work{a, b}, ready)
		// Taking again yields nothing: the keys were removed.
		assert.Empty(t, run.TakeInitialReady())
		assert.True(t, run.HasBlocked())
	})

	t.Run("satisfy readies a dependent after its last dependency", func(t *testing.T) {
		a := node("a")
		b := node("b")
		c := node("c", a, b)
		run := NewInfo(c).NewRun()
		run.TakeInitialReady()

		deps := run.PopDependents(a)
		require.Equal(t, []Work{c}, deps)
		assert.False(t, run.Satisfy(c, a), "c still waits on b")

		deps = run.PopDependents(b)
		require.Equal(t, []Work{c}, deps)
		assert.True(t, run.Satisfy(c, b))
		assert.False(t, run.HasBlocked())
	})

	t.Run("popped reverse entries observe absence", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		run := NewInfo(b).NewRun()
		run.TakeInitialReady()

		require.Len(t, run.PopDependents(a), 1)
		assert.Nil(t, run.PopDependents(a))
	})

	t.Run("clear cascades through transitive dependents", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		c := node("c", b)
		run := NewInfo(c).NewRun()
		run.TakeInitialReady()

		run.Clear(a)
		assert.False(t, run.HasBlocked())
		assert.True(t, run.Settled())
	})

	t.Run("clear leaves independent work alone", func(t *testing.T) {
		x := node("x")
		r1 := node("r1", x)
		y := node("y")
		r2 := node("r2", y)
		all := node("all", r1, r2)
		run := NewInfo(all).NewRun()
		run.TakeInitialReady()

		run.Clear(x)
		// all depends on both roots, so the cascade took it too, but y's
		// lineage up to r2 is untouched.
		deps := run.PopDependents(y)
		require.Equal(t, []Work{r2}, deps)
		assert.True(t, run.Satisfy(r2, y), "r2 only waited on y")
	})

	t.Run("runs are independent clones", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		info := NewInfo(b)

		run1 := info.NewRun()
		run2 := info.NewRun()
		run1.TakeInitialReady()
		run1.Clear(a)

		assert.ElementsMatch(t, []Work{a}, run2.TakeInitialReady())
		assert.True(t, run2.HasBlocked())
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("valid dag passes", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		c := node("c", a, b)
		assert.NoError(t, DetectCycles(c))
	})

	t.Run("self cycle is detected", func(t *testing.T) {
		a := node("a")
		a.deps = []Work{a}
		err := DetectCycles(a)
		assert.ErrorContains(t, err, "cycle detected")
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		a := node("a")
		b := node("b", a)
		c := node("c", b)
		a.deps = []Work{c}
		err := DetectCycles(c)
		assert.ErrorContains(t, err, "cycle detected")
	})
}
