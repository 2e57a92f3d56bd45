package wipe

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWipeInvokesRemoteWipeMethod(t *testing.T) {
	var gotName string
	var gotArgs []string

	trigger := NewWithRunner(func(_ context.Context, name string, args ...string) (string, error) {
		gotName = name
		gotArgs = args
		return "ReturnValue : 0", nil
	}, zerolog.Nop())

	require.NoError(t, trigger.Wipe(context.Background()))

	assert.Equal(t, "powershell.exe", gotName)
	require.Len(t, gotArgs, 4)
	assert.Contains(t, gotArgs[3], "MDM_RemoteWipe")
	assert.Contains(t, gotArgs[3], "doWipeMethod")
}

func TestWipeFailureIsReturned(t *testing.T) {
	trigger := NewWithRunner(func(context.Context, string, ...string) (string, error) {
		return "", errors.New("access denied")
	}, zerolog.Nop())

	err := trigger.Wipe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
