package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/forkful/menuboard/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Keep the generated pepper out of the working tree.
	dir, err := os.MkdirTemp("", "menuboard-cryptox")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	const password = "SecureP@ssw0rd123!"

	hash1, err := cryptox.HashPassword(password)
	require.NoError(t, err)
	hash2, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	// Random salt means the same password never hashes identically.
	require.NotEqual(t, hash1, hash2)
	require.NoError(t, cryptox.VerifyPassword(password, hash1))
	require.NoError(t, cryptox.VerifyPassword(password, hash2))
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("SecureP@ssw0rd123!")
	require.NoError(t, err)

	err = cryptox.VerifyPassword("WrongP@ssw0rd123!", hash)
	require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
}

func TestVerifyPasswordMalformedInput(t *testing.T) {
	hash, err := cryptox.HashPassword("SecureP@ssw0rd123!")
	require.NoError(t, err)

	t.Run("empty password", func(t *testing.T) {
		require.Error(t, cryptox.VerifyPassword("", hash))
	})

	t.Run("empty hash", func(t *testing.T) {
		require.Error(t, cryptox.VerifyPassword("SecureP@ssw0rd123!", ""))
	})

	t.Run("garbage hash", func(t *testing.T) {
		require.Error(t, cryptox.VerifyPassword("SecureP@ssw0rd123!", "$argon2id$broken"))
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		require.Error(t, cryptox.VerifyPassword(
			"SecureP@ssw0rd123!",
			"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		))
	})
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := cryptox.HashPassword("")
	require.Error(t, err)
}
