package service

import (
	"errors"
	"time"

	"othello_webapp/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenTTL = 24 * time.Hour

var (
	jwtSecret []byte

	ErrInvalidToken = errors.New("invalid token")
)

func InitJWT(secret string) {
	if secret == "" {
		panic("JWT secret is empty")
	}
	jwtSecret = []byte(secret)
}

// SessionClaims identify the play session a token was issued for.
type SessionClaims struct {
	SessionID string
	Side      domain.Side
}

func GenerateSessionToken(sessionID string, side domain.Side) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid":  sessionID,
		"side": string(side),
		"exp":  now.Add(sessionTokenTTL).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseSessionToken(tokenString string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	}, jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}

	sid, _ := claims["sid"].(string)
	if sid == "" {
		return SessionClaims{}, errors.New("session id not found")
	}
	side, err := domain.ParseSide(stringClaim(claims, "side"))
	if err != nil {
		return SessionClaims{}, ErrInvalidToken
	}

	return SessionClaims{SessionID: sid, Side: side}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
