package faketerm

import (
	"errors"
	"testing"
	"time"
)

func TestSession_WriteCaptures(t *testing.T) {
	s := New()

	n, err := s.Write([]byte("echo hi\n"))
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if n != 8 {
		t.Errorf("Write() = %d, want 8", n)
	}
	if s.Written() != "echo hi\n" {
		t.Errorf("Written() = %q, want %q", s.Written(), "echo hi\n")
	}
}

func TestSession_BlockedWriteUnblocksOnRelease(t *testing.T) {
	s := New().SetBlockWrites(true)

	done := make(chan error, 1)
	go func() {
		_, err := s.Write([]byte("stuck"))
		done <- err
	}()

	// The write must stay blocked until Release
	select {
	case <-done:
		t.Fatal("blocked write returned before Release")
	case <-time.After(50 * time.Millisecond):
	}

	if err := s.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrTerminalClosed) {
			t.Errorf("blocked write error = %v, want ErrTerminalClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("blocked write did not return after Release")
	}
}

func TestSession_WriteAfterRelease(t *testing.T) {
	s := New()
	if err := s.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	_, err := s.Write([]byte("late"))
	if !errors.Is(err, ErrReleased) {
		t.Errorf("Write after Release error = %v, want ErrReleased", err)
	}
}

func TestSession_WriteError(t *testing.T) {
	wantErr := errors.New("input/output error")
	s := New().SetWriteError(wantErr)

	_, err := s.Write([]byte("data"))
	if !errors.Is(err, wantErr) {
		t.Errorf("Write() error = %v, want %v", err, wantErr)
	}
}

func TestSession_DrainConsumesQueue(t *testing.T) {
	s := New().AddDrainData("prompt$ ").AddDrainData("more")

	n, err := s.Drain(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("Drain() error: %v", err)
	}
	if n != 8 {
		t.Errorf("first Drain() = %d, want 8", n)
	}

	n, _ = s.Drain(50 * time.Millisecond)
	if n != 4 {
		t.Errorf("second Drain() = %d, want 4", n)
	}

	n, _ = s.Drain(50 * time.Millisecond)
	if n != 0 {
		t.Errorf("third Drain() = %d, want 0 (queue empty)", n)
	}

	calls := s.DrainCalls()
	if len(calls) != 3 {
		t.Fatalf("len(DrainCalls()) = %d, want 3", len(calls))
	}
	for i, idle := range calls {
		if idle != 50*time.Millisecond {
			t.Errorf("DrainCalls()[%d] = %v, want 50ms", i, idle)
		}
	}
}

func TestSession_DrainError(t *testing.T) {
	wantErr := errors.New("poll failed")
	s := New().SetDrainError(wantErr)

	_, err := s.Drain(time.Millisecond)
	if !errors.Is(err, wantErr) {
		t.Errorf("Drain() error = %v, want %v", err, wantErr)
	}
}

func TestSession_ReleaseCounting(t *testing.T) {
	s := New()

	for i := 0; i < 3; i++ {
		if err := s.Release(); err != nil {
			t.Fatalf("Release() #%d error: %v", i+1, err)
		}
	}
	if s.ReleaseCount() != 3 {
		t.Errorf("ReleaseCount() = %d, want 3", s.ReleaseCount())
	}
}

func TestSession_ReleaseError(t *testing.T) {
	wantErr := errors.New("kill failed")
	s := New().SetReleaseError(wantErr)

	if err := s.Release(); !errors.Is(err, wantErr) {
		t.Errorf("Release() error = %v, want %v", err, wantErr)
	}
}

func TestSession_ID(t *testing.T) {
	s := New().WithID("custom-id")
	if s.ID() != "custom-id" {
		t.Errorf("ID() = %q, want custom-id", s.ID())
	}
}

func TestFactory_PreparedThenFresh(t *testing.T) {
	prepared := New().WithID("scripted")
	f := NewFactory(prepared)

	first, err := f.Start("/bin/zsh")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if first != prepared {
		t.Error("first Start did not return the prepared session")
	}

	second, err := f.Start("/bin/zsh")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if second == prepared {
		t.Error("second Start reused the prepared session")
	}
	if second.ID() != "fake-session-2" {
		t.Errorf("second session ID = %q, want fake-session-2", second.ID())
	}

	if got := len(f.Sessions()); got != 2 {
		t.Errorf("len(Sessions()) = %d, want 2", got)
	}
}

func TestFactory_StartError(t *testing.T) {
	wantErr := errors.New("shell missing")
	f := NewFactory().SetStartError(wantErr)

	_, err := f.Start("/bin/zsh")
	if !errors.Is(err, wantErr) {
		t.Errorf("Start() error = %v, want %v", err, wantErr)
	}
	if got := len(f.Sessions()); got != 0 {
		t.Errorf("len(Sessions()) = %d after failed start, want 0", got)
	}
	// Failed starts still record the requested shell
	if got := f.Shells(); len(got) != 1 || got[0] != "/bin/zsh" {
		t.Errorf("Shells() = %v, want [/bin/zsh]", got)
	}
}

func TestFactory_RecordsShells(t *testing.T) {
	f := NewFactory()

	f.Start("/bin/zsh")  //nolint:errcheck
	f.Start("/bin/bash") //nolint:errcheck

	shells := f.Shells()
	if len(shells) != 2 || shells[0] != "/bin/zsh" || shells[1] != "/bin/bash" {
		t.Errorf("Shells() = %v, want [/bin/zsh /bin/bash]", shells)
	}
}
