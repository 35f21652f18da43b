package busy_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sitelog/sitelog/pkg/utils/busy"
)

func TestTryAcquire(t *testing.T) {
	s := busy.New()

	gt.Bool(t, s.TryAcquire("delete:1")).True()
	gt.Bool(t, s.TryAcquire("delete:1")).False()
	gt.Bool(t, s.TryAcquire("delete:2")).True()
	gt.Bool(t, s.Has("delete:1")).True()
	gt.Array(t, s.Keys()).Length(2)

	s.Release("delete:1")
	gt.Bool(t, s.Has("delete:1")).False()
	gt.Bool(t, s.TryAcquire("delete:1")).True()
}

func TestZeroValue(t *testing.T) {
	var s busy.Set
	gt.Bool(t, s.Has("x")).False()
	s.Release("x")
	gt.Bool(t, s.TryAcquire("x")).True()
}

func TestConcurrentAcquireAllowsOneWinner(t *testing.T) {
	s := busy.New()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.TryAcquire("generate") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	gt.Number(t, wins.Load()).Equal(int32(1))
}
