package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Service signs and verifies identity tokens. It keeps no state besides the
// secret, so a token stays valid until exp even if its user is gone.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret []byte, ttl time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("tokens: empty signing secret")
	}
	if ttl <= 0 {
		return nil, errors.New("tokens: ttl must be positive")
	}
	return &Service{secret: secret, ttl: ttl, now: time.Now}, nil
}

func (s *Service) TTL() time.Duration { return s.ttl }

// Issue returns a signed token bound to userID together with its expiry.
func (s *Service) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	// NumericDate truncates to whole seconds; report the expiry actually signed
	return signed, claims.ExpiresAt.Time, nil
}

// Parse verifies signature and expiry and returns the embedded user id.
func (s *Service) Parse(raw string) (uuid.UUID, *Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected sign method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return uuid.Nil, nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: bad userId claim: %w", ErrInvalidToken, err)
	}
	return userID, &claims, nil
}

func (s *Service) Verify(raw string) (uuid.UUID, error) {
	userID, _, err := s.Parse(raw)
	return userID, err
}
