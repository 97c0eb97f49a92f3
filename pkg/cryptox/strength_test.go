package cryptox_test

import (
	"testing"

	"github.com/forkful/menuboard/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestValidateStrength(t *testing.T) {
	t.Parallel()

	t.Run("strong password passes", func(t *testing.T) {
		res := cryptox.ValidateStrength("SecureP@ssw0rd123!")
		require.True(t, res.Valid)
		require.Empty(t, res.Violations)
	})

	t.Run("short password reports length", func(t *testing.T) {
		res := cryptox.ValidateStrength("Short1!")
		require.False(t, res.Valid)
		require.Contains(t, res.Violations, "must be at least 12 characters long")
	})

	t.Run("all violations reported at once", func(t *testing.T) {
		res := cryptox.ValidateStrength("abc")
		require.False(t, res.Valid)
		require.Len(t, res.Violations, 4) // length, upper, digit, symbol
	})

	t.Run("missing classes reported individually", func(t *testing.T) {
		res := cryptox.ValidateStrength("alllowercase1!aa")
		require.False(t, res.Valid)
		require.Equal(t, []string{"must contain an uppercase letter"}, res.Violations)

		res = cryptox.ValidateStrength("ALLUPPERCASE1!AA")
		require.Equal(t, []string{"must contain a lowercase letter"}, res.Violations)

		res = cryptox.ValidateStrength("NoDigitsHere!!aa")
		require.Equal(t, []string{"must contain a digit"}, res.Violations)

		res = cryptox.ValidateStrength("NoSymbolsHere123")
		require.Equal(t, []string{"must contain a symbol"}, res.Violations)
	})

	t.Run("denylist is case-insensitive", func(t *testing.T) {
		res := cryptox.ValidateStrength("PASSWORD123!")
		require.False(t, res.Valid)
		require.Contains(t, res.Violations, "is too common")
	})
}
