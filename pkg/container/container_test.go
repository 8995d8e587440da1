package container

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/judocare/hevcrec/pkg/liberrors"
)

type testWriter struct {
	calls []string
	pts   []int64
	dts   []int64
	err   error
}

func (w *testWriter) Open(path string) error {
	w.calls = append(w.calls, "open "+path)
	return w.err
}

func (w *testWriter) WriteSample(pts int64, dts int64, _ []byte) error {
	w.calls = append(w.calls, "write")
	w.pts = append(w.pts, pts)
	w.dts = append(w.dts, dts)
	return w.err
}

func (w *testWriter) Finalize() error {
	w.calls = append(w.calls, "finalize")
	return w.err
}

func TestTimestamp(t *testing.T) {
	require.Equal(t, int64(0), Timestamp(0))
	require.Equal(t, int64(3600), Timestamp(1))
	require.Equal(t, int64(90000), Timestamp(25))
	require.Equal(t, int64(4294965600), Timestamp(1193046))
}

func TestAdapter(t *testing.T) {
	w := &testWriter{}
	a := &Adapter{Writer: w}

	err := a.Open("/tmp/a.ts_")
	require.NoError(t, err)

	err = a.WriteAccessUnit(100, []byte{0, 0, 0, 1, 0x02, 0x01})
	require.NoError(t, err)

	err = a.WriteAccessUnit(101, []byte{0, 0, 0, 1, 0x02, 0x01})
	require.NoError(t, err)

	err = a.Finalize()
	require.NoError(t, err)

	require.Equal(t, []string{"open /tmp/a.ts_", "write", "write", "finalize"}, w.calls)
	require.Equal(t, []int64{360000, 363600}, w.pts)
	require.Equal(t, w.pts, w.dts)
}

func TestAdapterErrors(t *testing.T) {
	errTest := errors.New("disk full")

	for _, ca := range []struct {
		op string
		fn func(a *Adapter) error
	}{
		{
			"open",
			func(a *Adapter) error { return a.Open("a.ts_") },
		},
		{
			"write",
			func(a *Adapter) error { return a.WriteAccessUnit(1, nil) },
		},
		{
			"finalize",
			func(a *Adapter) error { return a.Finalize() },
		},
	} {
		t.Run(ca.op, func(t *testing.T) {
			a := &Adapter{Writer: &testWriter{err: errTest}}
			err := ca.fn(a)
			require.Equal(t, liberrors.ErrContainer{Op: ca.op, Err: errTest}, err)
			require.ErrorIs(t, err, errTest)
		})
	}
}
