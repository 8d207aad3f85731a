package mpm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_Transitions(t *testing.T) {
	tr, err := TraceSchedule(linearChain())
	require.NoError(t, err)
	n := tr.Len()

	p := NewPlayer(tr)
	assert.Equal(t, 0, p.Index())
	assert.True(t, p.AtStart())
	assert.False(t, p.Confirmed())
	assert.Equal(t, 1, p.Current().Seq)

	// Retreat clamps at the first step.
	p.Retreat()
	assert.Equal(t, 0, p.Index())

	for i := 1; i < n; i++ {
		s := p.Advance()
		assert.Equal(t, i+1, s.Seq)
	}
	assert.True(t, p.AtEnd())
	assert.True(t, p.Confirmed())

	// Advance clamps at the last step.
	s := p.Advance()
	assert.Equal(t, n-1, p.Index())
	assert.Equal(t, n, s.Seq)

	// Going back keeps the result confirmed.
	p.Retreat()
	assert.Equal(t, n-2, p.Index())
	assert.True(t, p.Confirmed())
}

func TestPlayer_ExitSnapsToFinal(t *testing.T) {
	tr, err := TraceSchedule(diamond())
	require.NoError(t, err)
	want, err := Schedule(diamond())
	require.NoError(t, err)

	p := NewPlayer(tr)
	p.Advance()
	p.Advance()
	assert.False(t, p.Confirmed())

	got := p.Exit()
	assert.True(t, p.Exited())
	assert.True(t, p.Confirmed())
	assert.Equal(t, tr.Len()-1, p.Index())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("exit result differs from full schedule:\n%s", diff)
	}
}

func TestPlayer_DoesNotMutateTrace(t *testing.T) {
	tr, err := TraceSchedule(diamond())
	require.NoError(t, err)

	before := make([]Step, tr.Len())
	for i, s := range tr.Steps {
		before[i] = s.Clone()
	}

	p := NewPlayer(tr)
	for i := 0; i < tr.Len()+3; i++ {
		p.Advance()
	}
	for i := 0; i < 5; i++ {
		p.Retreat()
	}
	p.Exit()

	if diff := cmp.Diff(before, tr.Steps); diff != "" {
		t.Errorf("playback changed the trace:\n%s", diff)
	}
}

func TestPlayer_SingleStep(t *testing.T) {
	tr := &Trace{Steps: []Step{{Seq: 1, Phase: PhaseFloat}}}
	p := NewPlayer(tr)

	assert.True(t, p.AtStart())
	assert.True(t, p.AtEnd())
	assert.True(t, p.Confirmed())
	assert.Equal(t, 1, p.Advance().Seq)
	assert.Equal(t, 1, p.Retreat().Seq)
}

func TestPlayer_Empty(t *testing.T) {
	p := NewPlayer(&Trace{})

	assert.Equal(t, 0, p.Len())
	assert.Equal(t, Step{}, p.Current())
	assert.Equal(t, Step{}, p.Advance())
	assert.Nil(t, p.Exit())
}
