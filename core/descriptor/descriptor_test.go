package descriptor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescRoundTrip(t *testing.T) {
	d := New()
	d.AddProc(NewProcDesc("proc", "example/proc", "example/adaptor"))

	path := filepath.Join(t.TempDir(), "ProSA.toml")
	require.NoError(t, d.Create(path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, d.Prosa, got.Prosa)
	require.Len(t, got.Proc, 1)
	assert.Equal(t, "proc", got.Proc[0].ProcName)
	assert.Equal(t, "example/proc", got.Proc[0].Proc)
	assert.Equal(t, "example/adaptor", got.Proc[0].Adaptor)
}

func TestProcDescGetName(t *testing.T) {
	p := NewProcDesc("svc", "example/proc", "example/adaptor")
	assert.Equal(t, "svc", p.GetName())

	p.Name = "override"
	assert.Equal(t, "override", p.GetName())
}

func TestProcDescValidateMissingFields(t *testing.T) {
	assert.Error(t, ProcDesc{Proc: "p", Adaptor: "a"}.Validate())
	assert.Error(t, ProcDesc{ProcName: "n", Adaptor: "a"}.Validate())
	assert.Error(t, ProcDesc{ProcName: "n", Proc: "p"}.Validate())
	assert.NoError(t, ProcDesc{ProcName: "n", Proc: "p", Adaptor: "a"}.Validate())
}

func TestDescValidateMissingProsaFields(t *testing.T) {
	d := &Desc{}
	assert.Error(t, d.Validate())

	d.Prosa = DefaultMainDesc()
	assert.NoError(t, d.Validate())

	d.AddProc(ProcDesc{ProcName: "n"})
	assert.Error(t, d.Validate())
}
