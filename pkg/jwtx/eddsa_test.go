package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/circle/pkg/cryptox"
	"github.com/aussiebroadwan/circle/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestEdDSASignAndVerify(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	codec, err := jwtx.NewEdDSACodec(pemKey, "circle")
	require.NoError(t, err)
	require.Equal(t, "EdDSA", codec.Signer.Alg())

	token, err := codec.Sign(7, "grace@example.com", jwtx.KindAccess, 5*time.Minute)
	require.NoError(t, err)

	claims, err := codec.Verify(token, jwtx.KindAccess)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "grace@example.com", claims.Email)
}

func TestEdDSARejectsOtherKey(t *testing.T) {
	keyA, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	keyB, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	codecA, err := jwtx.NewEdDSACodec(keyA, "circle")
	require.NoError(t, err)
	codecB, err := jwtx.NewEdDSACodec(keyB, "circle")
	require.NoError(t, err)

	token, err := codecA.Sign(7, "grace@example.com", jwtx.KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = codecB.Verify(token, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalid)
}

func TestEdDSARejectsBadPEM(t *testing.T) {
	_, err := jwtx.NewEdDSACodec([]byte("not a pem"), "circle")
	require.Error(t, err)
}
