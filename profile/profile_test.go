package profile

import "testing"

func TestNew(t *testing.T) {
	p := New(WithMode("cpu"), WithDir("/tmp/pprof"), WithQuiet(true))

	want := Profiler{Mode: "cpu", Dir: "/tmp/pprof", Quiet: true}
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}
}

func TestStart_NoMode(t *testing.T) {
	s := New(WithDir(t.TempDir())).Start()

	if _, ok := s.(ignore); !ok {
		t.Errorf("expected no-op profiler, got %T", s)
	}

	s.Stop()
}

func TestStart_UnknownMode(t *testing.T) {
	s := New(WithMode("nope"), WithQuiet(true)).Start()

	if _, ok := s.(ignore); !ok {
		t.Errorf("expected no-op profiler, got %T", s)
	}

	s.Stop()
}
