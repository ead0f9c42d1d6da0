package key

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
)

const KEY_ID = "addressbook-key-id"

type JWKS struct {
	Keys []interface{} `json:"keys"`
}

type KeyPair struct {
	Kid        string
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}

// NewKeyPairFromRSAPrivateKeyPem parses a PEM encoded RSA private key
func NewKeyPairFromRSAPrivateKeyPem(privateKeyPem string) (*KeyPair, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPem))
	if err != nil {
		return nil, fmt.Errorf("unable to parse RSA private key: %v", err)
	}

	return NewKeyPair(privateKey), nil
}

func NewKeyPair(privateKey *rsa.PrivateKey) *KeyPair {
	return &KeyPair{
		Kid:        KEY_ID,
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}
}

// JWK returns the public half of the key pair as a JWK
func (keyPair *KeyPair) JWK() (jwk.Key, error) {
	keyPairJWK, err := jwk.New(keyPair.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("JWK: %v", err)
	}

	err = keyPairJWK.Set(jwk.KeyIDKey, keyPair.Kid)
	if err != nil {
		return nil, fmt.Errorf("JWK: %v", err)
	}

	err = keyPairJWK.Set(jwk.AlgorithmKey, "RS256")
	if err != nil {
		return nil, fmt.Errorf("JWK: %v", err)
	}

	return keyPairJWK, nil
}

// JWKS returns the public key set served to token issuers & clients
func (keyPair *KeyPair) JWKS() (JWKS, error) {
	keyPairJWK, err := keyPair.JWK()
	if err != nil {
		return JWKS{}, err
	}

	return JWKS{Keys: []interface{}{keyPairJWK}}, nil
}
