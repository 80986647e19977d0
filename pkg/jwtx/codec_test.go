package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/circle/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewHS256Codec(testSecret, "circle")
	require.NoError(t, err)
	return codec
}

func TestCodecRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Sign(42, "ada@example.com", jwtx.KindAccess, jwtx.DefaultAccessTokenTTL)
	require.NoError(t, err)

	claims, err := codec.Verify(token, jwtx.KindAccess)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "ada@example.com", claims.Email)
	require.Equal(t, jwtx.KindAccess, claims.Kind)
}

func TestCodecZeroTTLIsExpired(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Sign(42, "ada@example.com", jwtx.KindAccess, 0)
	require.NoError(t, err)

	_, err = codec.Verify(token, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrExpired)
	require.NotErrorIs(t, err, jwtx.ErrInvalid)
}

func TestCodecPastExpiryIsExpired(t *testing.T) {
	codec := newTestCodec(t)
	start := time.Now()
	codec.Now = func() time.Time { return start }

	token, err := codec.Sign(42, "ada@example.com", jwtx.KindRefresh, time.Hour)
	require.NoError(t, err)

	codec.Now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = codec.Verify(token, jwtx.KindRefresh)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestCodecTamperedPayloadIsInvalid(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Sign(42, "ada@example.com", jwtx.KindAccess, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"userId":42`, `"userId":43`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = codec.Verify(strings.Join(parts, "."), jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalid)
}

func TestCodecGarbageIsInvalid(t *testing.T) {
	codec := newTestCodec(t)

	for _, token := range []string{"", "abc", "a.b.c", "not-a-jwt-at-all"} {
		_, err := codec.Verify(token, jwtx.KindAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalid, "token %q", token)
	}
}

func TestCodecWrongSecretIsInvalid(t *testing.T) {
	codec := newTestCodec(t)
	other, err := jwtx.NewHS256Codec([]byte("fedcba9876543210fedcba9876543210"), "circle")
	require.NoError(t, err)

	token, err := other.Sign(42, "ada@example.com", jwtx.KindAccess, time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(token, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalid)
}

func TestCodecRejectsWrongKind(t *testing.T) {
	codec := newTestCodec(t)

	refresh, err := codec.Sign(42, "ada@example.com", jwtx.KindRefresh, time.Hour)
	require.NoError(t, err)

	_, err = codec.Verify(refresh, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalid)
	require.ErrorIs(t, err, jwtx.ErrKind)
}

func TestCodecRejectsNoneAlgorithm(t *testing.T) {
	codec := newTestCodec(t)

	claims := jwtx.NewClaims(42, "ada@example.com", jwtx.KindAccess, time.Hour, "circle", time.Now())
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Verify(unsigned, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalid)
}

func TestCodecRejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewHS256Codec([]byte("short"), "circle")
	require.Error(t, err)
}
