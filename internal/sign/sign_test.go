package sign

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sixtyFourByteSecret() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 64))
}

func TestSign_Deterministic(t *testing.T) {
	secret := sixtyFourByteSecret()
	s1, err := Sign("1000", "GET", "/users/self", "", secret)
	require.NoError(t, err)
	s2, err := Sign("1000", "GET", "/users/self", "", secret)
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	s3, err := Sign("1001", "GET", "/users/self", "", secret)
	require.NoError(t, err)
	assert.NotEqual(t, s1, s3, "changing the timestamp must change the signature")
}

func TestSign_RejectsShortKey(t *testing.T) {
	shortSecret := base64.StdEncoding.EncodeToString(make([]byte, 32))
	_, err := Sign("1000", "GET", "/users/self", "", shortSecret)
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestSign_RejectsInvalidBase64(t *testing.T) {
	_, err := Sign("1000", "GET", "/users/self", "", "not-base64!!!")
	assert.Error(t, err)
}

func TestWebsocketSubscribeSignature(t *testing.T) {
	secret := sixtyFourByteSecret()
	sig, err := WebsocketSubscribeSignature("1000", secret)
	require.NoError(t, err)
	assert.False(t, strings.Contains(sig, " "))
	assert.NotEmpty(t, sig)
}
