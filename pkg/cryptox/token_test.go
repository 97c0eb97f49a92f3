package cryptox_test

import (
	"testing"

	"github.com/forkful/menuboard/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43) // 32 bytes base64url, no padding

	other, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestGenerateTokenRejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	_, err := cryptox.GenerateToken(0)
	require.Error(t, err)
	_, err = cryptox.GenerateToken(-1)
	require.Error(t, err)
}

func TestFingerprintTokenIsDeterministic(t *testing.T) {
	t.Parallel()

	token := cryptox.MustGenerateToken(cryptox.TokenSize256)
	require.Equal(t, cryptox.FingerprintToken(token), cryptox.FingerprintToken(token))
	require.NotEqual(t, cryptox.FingerprintToken(token), cryptox.FingerprintToken(token+"x"))
}
