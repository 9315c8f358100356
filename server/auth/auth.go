package auth

import (
	"fmt"

	"github.com/AkashSundaramoorthi/Haven/server/auth/key"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// HavenTokenClaims is issued after a successful owner-PIN login. The
// token guards contact mutations & voice disarm over the API.
type HavenTokenClaims struct {
	Device string `json:"device"`
	jwt.StandardClaims
}

func HashPin(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), 14)
	return string(bytes), err
}

func CheckPinHash(pin, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	return err == nil
}

func EncodeJWT(claims HavenTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod("RS256"), claims)

	tokenString, err := token.SignedString(keyPair.PrivateKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*HavenTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &HavenTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*HavenTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to HavenTokenClaims")
	}

	return tokenClaims, nil
}
