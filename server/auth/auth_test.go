package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/Daskott/addressbook/server/auth/key"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyPair(t *testing.T) *key.KeyPair {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)

	return key.NewKeyPair(privateKey)
}

func TestEncodeAndDecodeJWT(t *testing.T) {
	keyPair := newTestKeyPair(t)

	token, err := EncodeJWT(AddressbookTokenClaims{
		Name: "tony stark",
		StandardClaims: jwt.StandardClaims{
			Subject:   "42",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}, keyPair)
	require.Nil(t, err)

	claims, err := DecodeJWT(token, keyPair)
	require.Nil(t, err)
	assert.Equal(t, "tony stark", claims.Name)

	userID, err := claims.UserID()
	assert.Nil(t, err)
	assert.Equal(t, uint(42), userID)

	_, err = DecodeJWT(token, newTestKeyPair(t))
	assert.NotNil(t, err, "Should reject tokens signed with another key")
}

func TestDecodeJWTRejectsExpiredTokens(t *testing.T) {
	keyPair := newTestKeyPair(t)

	token, err := EncodeJWT(AddressbookTokenClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "42",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}, keyPair)
	require.Nil(t, err)

	_, err = DecodeJWT(token, keyPair)
	assert.NotNil(t, err)
}

func TestUserID(t *testing.T) {
	for _, subject := range []string{"", "0", "-1", "tony"} {
		claims := AddressbookTokenClaims{StandardClaims: jwt.StandardClaims{Subject: subject}}
		_, err := claims.UserID()
		assert.NotNil(t, err, "Should reject subject %q", subject)
	}
}
