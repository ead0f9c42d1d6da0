package auth

import (
	"fmt"
	"strconv"

	"github.com/Daskott/addressbook/server/auth/key"
	"github.com/golang-jwt/jwt"
)

// AddressbookTokenClaims are the claims carried by an access token.
// 'sub' holds the numeric id of the user the token was issued to.
type AddressbookTokenClaims struct {
	Name string `json:"name,omitempty"`
	jwt.StandardClaims
}

// UserID parses the token subject as the caller's user id
func (claims *AddressbookTokenClaims) UserID() (uint, error) {
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}

	return uint(id), nil
}

func EncodeJWT(claims AddressbookTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)
	token.Header["kid"] = keyPair.Kid

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*AddressbookTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AddressbookTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*AddressbookTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to AddressbookTokenClaims")
	}

	return tokenClaims, nil
}
