package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity quién opera: el usuario queda como autor de órdenes, pagos y movimientos de stock.
type Identity struct {
	UserID    string
	CompanyID string
	Role      string // admin | bodeguero | vendedor
}

// claims guarda el usuario en "sub" y la empresa y el rol como claims propios.
type claims struct {
	jwt.RegisteredClaims
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// Signer firma y valida tokens HS256 de un emisor.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt: secret vacío")
	}
	return &Signer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Sign emite un token para la identidad, válido por el ttl del signer.
func (s *Signer) Sign(id Identity) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		CompanyID: id.CompanyID,
		Role:      id.Role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Parse valida firma, algoritmo, expiración y emisor y devuelve la identidad del token.
func (s *Signer) Parse(token string) (Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("jwt: %w", err)
	}
	return Identity{UserID: c.Subject, CompanyID: c.CompanyID, Role: c.Role}, nil
}
