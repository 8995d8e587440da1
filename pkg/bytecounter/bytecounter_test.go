package bytecounter

import (
	"bytes"
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteCounter(t *testing.T) {
	bc := New(bytes.NewBuffer(nil))

	_, err := bc.Write([]byte{0x01, 0x02, 0x03, 0x04})
	require.NoError(t, err)

	buf := make([]byte, 2)
	_, err = bc.Read(buf)
	require.NoError(t, err)

	require.Equal(t, uint64(4), bc.BytesSent())
	require.Equal(t, uint64(2), bc.BytesReceived())
}

// interruptedWriter writes one byte per call and is interrupted every other call.
type interruptedWriter struct {
	bytes.Buffer
	calls int
	err   error
}

func (w *interruptedWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls%2 == 1 {
		return 0, w.err
	}
	return w.Buffer.Write(p[:1])
}

func TestByteCounterWriteInterrupted(t *testing.T) {
	w := &interruptedWriter{err: syscall.EINTR}
	bc := New(w)

	n, err := bc.Write([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, w.Bytes())
	require.Equal(t, uint64(3), bc.BytesSent())
	require.Equal(t, 6, w.calls)
}

func TestByteCounterWriteError(t *testing.T) {
	errTest := errors.New("broken pipe")
	w := &interruptedWriter{err: errTest}
	bc := New(w)

	n, err := bc.Write([]byte{0x01, 0x02, 0x03})
	require.ErrorIs(t, err, errTest)
	require.Equal(t, 0, n)
	require.Equal(t, 1, w.calls)
}
