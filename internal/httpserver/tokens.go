package httpserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errBadToken = errors.New("invalid session token")

// sessionClaims carry everything needed to replay a session: the code chain
// and the word length it was played with.
type sessionClaims struct {
	Chain  []int32 `json:"chain"`
	Length int     `json:"len"`
	Tree   string  `json:"tree,omitempty"`
	jwt.RegisteredClaims
}

// signSession creates an HS256 token for chain.
func (s *Server) signSession(id string, chain []int32) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.cfg.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Chain:  chain,
		Length: s.tree.Length,
		Tree:   s.cfg.TreeName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// parseSession verifies token and returns its claims.
func (s *Server) parseSession(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, errBadToken
	}
	// a chain only replays on the tree it was played on
	if claims.Length != s.tree.Length || claims.Tree != s.cfg.TreeName {
		return nil, errBadToken
	}
	return claims, nil
}
