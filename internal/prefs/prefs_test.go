package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jask/embark/internal/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoadMissing(t *testing.T) {
	s := &Store{Dir: t.TempDir()}
	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Prefs{}, p)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	s := &Store{Dir: filepath.Join(dir, "nested")}
	want := Prefs{LastSubject: "s1", LinkMode: true}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(filepath.Join(dir, "nested", prefsFile+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, prefsFile), []byte("{nope"), 0o600))
	_, err := (&Store{Dir: dir}).Load()
	assert.Error(t, err)
}

func TestWatchPersistsChanges(t *testing.T) {
	st := state.NewStore(state.State{}, zerolog.Nop())
	ps := &Store{Dir: t.TempDir()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, st, ps, zerolog.Nop())
		close(done)
	}()

	// give Watch time to subscribe before dispatching
	require.Eventually(t, func() bool {
		st.Dispatch(state.SetActiveSubject{Subject: state.Subject{ID: "s9"}})
		st.Dispatch(state.SetLinkMode{On: true})
		p, err := ps.Load()
		return err == nil && p == Prefs{LastSubject: "s9", LinkMode: true}
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestFromState(t *testing.T) {
	assert.Equal(t, Prefs{}, FromState(state.State{}))
	s := state.State{Subject: state.SubjectState{ActiveSubject: &state.Subject{ID: "x"}, LinkMode: true}}
	assert.Equal(t, Prefs{LastSubject: "x", LinkMode: true}, FromState(s))
}
