package passes_test

import (
	"reflect"
	"testing"

	"vecc/internal/passes"
)

func TestAcquire_ParsesCommandLine(t *testing.T) {
	g := passes.Acquire([]string{"-finalizer-opts='-nocompaction'", "-dump-after", "lowering", "-verify-each"})
	defer g.Release()

	if got := passes.OptionValues("finalizer-opts"); !reflect.DeepEqual(got, []string{"-nocompaction"}) {
		t.Errorf("finalizer-opts = %#v", got)
	}
	if got := passes.OptionValues("dump-after"); !reflect.DeepEqual(got, []string{"lowering"}) {
		t.Errorf("dump-after = %#v", got)
	}
	if !passes.ToggleSet("verify-each") {
		t.Error("bare toggle not recorded")
	}
}

func TestGuard_RestoresTimePasses(t *testing.T) {
	passes.TimePassesEnabled = false

	g := passes.Acquire([]string{"-time-passes"})
	if !passes.TimePassesEnabled {
		t.Fatal("-time-passes did not enable timing")
	}
	g.Release()

	if passes.TimePassesEnabled {
		t.Error("Release did not restore the timing toggle")
	}
}

func TestGuard_ReleaseIsIdempotent(t *testing.T) {
	g := passes.Acquire(nil)
	g.Release()
	g.Release() // second call must not unlock twice

	// The state must be reacquirable after release.
	g2 := passes.Acquire(nil)
	g2.Release()
}

func TestAcquire_ResetsPreviousState(t *testing.T) {
	g := passes.Acquire([]string{"-leftover=1"})
	g.Release()

	g2 := passes.Acquire(nil)
	defer g2.Release()
	if got := passes.OptionValues("leftover"); got != nil {
		t.Errorf("state leaked across invocations: %#v", got)
	}
}
