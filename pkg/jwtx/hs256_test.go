package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/forkful/menuboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "menuboard-admin"

func newCodec(t *testing.T) *jwtx.HS256 {
	t.Helper()
	codec, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)
	return codec
}

func TestNewHS256RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewHS256([]byte("too-short"), testIssuer)
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)

	claims := jwtx.NewClaims("actor-1", "owner@trattoria.example", "ADMIN", testIssuer, time.Hour, time.Now().UTC())
	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	got, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "actor-1", got.Subject)
	require.Equal(t, "owner@trattoria.example", got.Email)
	require.Equal(t, "ADMIN", got.Role)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)

	_, err := codec.Verify("not-a-jwt")
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	_, err = codec.Verify("")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)

	claims := jwtx.NewClaims("actor-1", "a@b.example", "EDITOR", testIssuer, time.Hour, time.Now().UTC().Add(-2*time.Hour))
	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)

	claims := jwtx.NewClaims("actor-1", "a@b.example", "EDITOR", testIssuer, time.Hour, time.Now().UTC())
	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	// Swap the role claim inside the payload segment while keeping the
	// original signature segment intact.
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	doctored := strings.Replace(string(payload), `"EDITOR"`, `"ADMIN!"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(doctored))

	_, err = codec.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, jwtx.ErrSignature)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()
	codec := newCodec(t)

	claims := jwtx.NewClaims("actor-1", "a@b.example", "EDITOR", "someone-else", time.Hour, time.Now().UTC())
	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}
