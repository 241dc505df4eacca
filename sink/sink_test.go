package sink

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"file", KindFile},
		{"STDOUT", KindStdout},
		{" stderr ", KindStderr},
		{"custom", KindCustom},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, mustParse(t, got.String()))
	}

	_, err := ParseKind("syslog")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func mustParse(t *testing.T, s string) Kind {
	t.Helper()
	k, err := ParseKind(s)
	require.NoError(t, err)
	return k
}

func TestOpen_Console(t *testing.T) {
	var out, errOut bytes.Buffer
	env := Env{Stdout: &out, Stderr: &errOut}

	s, err := Open(Stdout{}, env)
	require.NoError(t, err)
	require.NoError(t, s.Write([]byte("to stdout\n")))
	require.NoError(t, s.Close())

	s, err = Open(Stderr{}, env)
	require.NoError(t, err)
	require.NoError(t, s.Write([]byte("to stderr\n")))

	assert.Equal(t, "to stdout\n", out.String())
	assert.Equal(t, "to stderr\n", errOut.String())
}

func TestOpen_InvalidOutputs(t *testing.T) {
	tests := []struct {
		name string
		out  Output
		want error
	}{
		{"nil", nil, ErrInvalidOutput},
		{"custom without receiver", Custom{}, ErrInvalidOutput},
		{"file without directory", File{BaseName: "app"}, ErrInvalidOutput},
		{"file without base name", File{Directory: t.TempDir()}, ErrInvalidOutput},
		{"base name with separator", File{Directory: t.TempDir(), BaseName: "a/b"}, ErrInvalidOutput},
		{"negative size", File{Directory: t.TempDir(), BaseName: "app", MaxSizeBytes: -1}, ErrInvalidOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.out, Env{})
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, s)
		})
	}
}

func TestCallbackSink_DeliversLineWithoutNewline(t *testing.T) {
	var got []string
	var gotData []any
	recv := ReceiverFunc(func(msg string, userData any) error {
		got = append(got, msg)
		gotData = append(gotData, userData)
		return nil
	})

	s, err := Open(Custom{Receiver: recv, UserData: 42}, Env{})
	require.NoError(t, err)

	require.NoError(t, s.Write([]byte("first\n")))
	require.NoError(t, s.Write([]byte("second")))

	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, []any{42, 42}, gotData)
}

func TestCallbackSink_IsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	s := NewCallbackSink(ReceiverFunc(func(msg string, _ any) error {
		calls++
		switch msg {
		case "fail":
			return boom
		case "panic":
			panic("receiver exploded")
		}
		return nil
	}), nil)

	err := s.Write([]byte("fail\n"))
	var cbErr *CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, cbErr.Panic)

	err = s.Write([]byte("panic\n"))
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, "receiver exploded", cbErr.Panic)
	assert.Contains(t, err.Error(), "panicked")

	assert.NoError(t, s.Write([]byte("ok\n")))
	assert.Equal(t, 3, calls)
}
