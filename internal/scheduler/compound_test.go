package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskforge/internal/dag"
)

type compoundWork struct {
	testWork
	main    []dag.Work
	finally []dag.Work
}

func (c *compoundWork) SubWork() SubWork {
	return SubWork{
		Main:    subSchedulerFor(c.main),
		Finally: subSchedulerFor(c.finally),
	}
}

func subSchedulerFor(roots []dag.Work) Scheduler {
	if len(roots) == 0 {
		return nil
	}
	info := dag.NewInfo(roots...)
	return NewDag(info, NewMaxPath(info, 1))
}

func compound(name string, main, fin []dag.Work, deps ...dag.Work) *compoundWork {
	return &compoundWork{
		testWork: testWork{name: name, deps: deps},
		main:     main,
		finally:  fin,
	}
}

func newCompound(root dag.Work) *Compound {
	return NewCompound(newDag(root))
}

func TestCompound(t *testing.T) {
	t.Run("expansion substitutes the sub-graph in the same call", func(t *testing.T) {
		s1, s2 := node("s1"), node("s2")
		c := newCompound(compound("T", []dag.Work{s1, s2}, nil))

		// The compound item itself is intercepted and does not consume the
		// budget: both stage leaves surface immediately.
		got := c.Next(2)
		assert.ElementsMatch(t, []dag.Work{s1, s2}, got)
	})

	t.Run("compound item runs after its sub-graph succeeds", func(t *testing.T) {
		s1 := node("s1")
		s2 := node("s2", s1)
		T := compound("T", []dag.Work{s2}, nil)
		c := newCompound(T)

		require.Equal(t, []dag.Work{s1}, c.Next(10))
		c.Complete(s1, nil)
		require.Equal(t, []dag.Work{s2}, c.Next(10))
		c.Complete(s2, nil)

		got := c.Next(10)
		require.Equal(t, []dag.Work{dag.Work(T)}, got)
		c.Complete(T, nil)

		assert.True(t, c.IsComplete())
		assert.False(t, c.HasPending())
		assert.Empty(t, c.Failures())
	})

	t.Run("sub failure fails the compound item but still runs finally", func(t *testing.T) {
		setup := node("setup")
		run := node("run", setup)
		teardown := node("teardown")
		T := compound("T", []dag.Work{run}, []dag.Work{teardown})
		after := node("after", T)
		c := newCompound(after)

		require.Equal(t, []dag.Work{setup}, c.Next(10))
		c.Complete(setup, nil)
		require.Equal(t, []dag.Work{dag.Work(run)}, c.Next(10))
		c.Complete(run, errors.New("boom"))

		// The finally phase is now the only runnable work; T has already
		// failed and invalidated its outer dependent.
		got := c.Next(10)
		require.Equal(t, []dag.Work{dag.Work(teardown)}, got)
		c.Complete(teardown, nil)

		assert.True(t, c.IsComplete())
		fails := c.Failures()
		require.Len(t, fails, 2)
		messages := map[string]bool{}
		for _, f := range fails {
			messages[f.Message] = true
		}
		assert.True(t, messages["boom"])
		assert.True(t, messages[ErrSubtasksFailed.Error()])
	})

	t.Run("finally failures are absorbed without outer effect", func(t *testing.T) {
		s1 := node("s1")
		teardown := node("teardown")
		T := compound("T", []dag.Work{s1}, []dag.Work{teardown})
		after := node("after", T)
		c := newCompound(after)

		require.Equal(t, []dag.Work{s1}, c.Next(10))
		c.Complete(s1, nil)

		got := c.Next(10)
		assert.ElementsMatch(t, []dag.Work{T, teardown}, got)
		c.Complete(teardown, errors.New("cleanup failed"))
		c.Complete(T, nil)

		// The outer dependent still runs: finally failures never propagate.
		require.Equal(t, []dag.Work{dag.Work(after)}, c.Next(10))
		c.Complete(after, nil)

		assert.True(t, c.IsComplete())
		require.Len(t, c.Failures(), 1)
		assert.Equal(t, "cleanup failed", c.Failures()[0].Message)
	})

	t.Run("pending covers the deferred finally window", func(t *testing.T) {
		s1 := node("s1")
		T := compound("T", []dag.Work{s1}, []dag.Work{node("teardown")})
		c := newCompound(T)

		c.Next(10)
		assert.True(t, c.HasPending(), "stage in flight, finally deferred")
		assert.False(t, c.IsComplete())
	})

	t.Run("nested compound expands recursively", func(t *testing.T) {
		leaf := node("leaf")
		inner := compound("inner", []dag.Work{leaf}, nil)
		outer := compound("outer", []dag.Work{dag.Work(inner)}, nil)
		c := newCompound(outer)

		require.Equal(t, []dag.Work{leaf}, c.Next(10))
		c.Complete(leaf, nil)
		require.Equal(t, []dag.Work{dag.Work(inner)}, c.Next(10))
		c.Complete(inner, nil)
		require.Equal(t, []dag.Work{dag.Work(outer)}, c.Next(10))
		c.Complete(outer, nil)

		assert.True(t, c.IsComplete())
		assert.Empty(t, c.Failures())
	})
}
