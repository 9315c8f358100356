package key

import (
	"crypto/rsa"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
)

type JWKS struct {
	Keys []interface{} `json:"keys"`
}

type KeyPair struct {
	Kid        string
	PrivateKey *rsa.PrivateKey
	PublicKey  *rsa.PublicKey
}

// NewKeyPairFromRSAPrivateKeyPem accepts either raw PEM content or a
// path to a PEM file.
func NewKeyPairFromRSAPrivateKeyPem(pemOrPath string) (*KeyPair, error) {
	privateKeyBytes := []byte(pemOrPath)

	if !strings.HasPrefix(pemOrPath, "-----BEGIN") {
		var err error
		privateKeyBytes, err = ioutil.ReadFile(pemOrPath)
		if err != nil {
			return nil, err
		}
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("unable to parse RSA private key: %v", err)
	}

	return NewKeyPair(privateKey), nil
}

// NewKeyPair wraps an already-parsed private key; used by tests that
// generate throwaway keys.
func NewKeyPair(privateKey *rsa.PrivateKey) *KeyPair {
	return &KeyPair{
		Kid:        "haven-key-id",
		PrivateKey: privateKey,
		PublicKey:  &privateKey.PublicKey,
	}
}

func (keyPair *KeyPair) JWK() (jwk.Key, error) {
	keyPairJWK, err := jwk.New(keyPair.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("JWK: %v", err)
	}
	keyPairJWK.Set(jwk.KeyIDKey, keyPair.Kid)

	return keyPairJWK, nil
}

func ExportJWKAsJWKS(jwk jwk.Key) JWKS {
	return JWKS{Keys: []interface{}{jwk}}
}
