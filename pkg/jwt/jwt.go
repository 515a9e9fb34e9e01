package jwt

import (
	"context"
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// ErrTokenExpired is returned when a token has expired.
var ErrTokenExpired = errors.New("token is expired")

// ErrTokenRevoked is returned for tokens on the revocation list.
var ErrTokenRevoked = errors.New("token is revoked")

// Claims defines the custom JWT claims structure.
type Claims struct {
	StudentID uint   `json:"student_id"`
	Username  string `json:"username"`
	jwtlib.RegisteredClaims
}

// Principal is the authenticated caller as seen by request handlers.
type Principal interface {
	Name() string
}

// ClaimsPrincipal adapts validated claims to Principal.
// The principal name is the student ID, which is also the profile image identifier.
type ClaimsPrincipal struct {
	Claims *Claims
}

func (p ClaimsPrincipal) Name() string {
	return strconv.FormatUint(uint64(p.Claims.StudentID), 10)
}

// TokenManager issues and validates access tokens.
type TokenManager interface {
	GenerateAccessToken(studentID uint, username string, ttl time.Duration) (string, error)
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)
	IsTokenRevoked(ctx context.Context, tokenString string) (bool, error)
}

// NewTokenManager creates a new TokenManager with the given secret key and Redis client.
// The identity provider revokes tokens by writing to the same Redis keys.
func NewTokenManager(secretKey string, redisClient *redis.Client) TokenManager {
	return &tokenManager{secretKey: secretKey, redis: redisClient}
}

// NewTokenManagerWithoutRedis creates a TokenManager that skips revocation checks.
func NewTokenManagerWithoutRedis(secretKey string) TokenManager {
	return &tokenManager{secretKey: secretKey}
}

type tokenManager struct {
	secretKey string
	redis     *redis.Client
}

// GenerateAccessToken signs an HS256 access token for a student.
func (j *tokenManager) GenerateAccessToken(studentID uint, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		StudentID: studentID,
		Username:  username,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ValidateAccessToken parses the token, checks expiry and the revocation list.
func (j *tokenManager) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	revoked, err := j.IsTokenRevoked(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// IsTokenRevoked checks if the token is blacklisted in Redis.
func (j *tokenManager) IsTokenRevoked(ctx context.Context, tokenString string) (bool, error) {
	if j.redis == nil {
		return false, nil
	}
	res, err := j.redis.Exists(ctx, redisKey(tokenString)).Result()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func redisKey(tokenString string) string {
	return "jwt:blacklist:" + tokenString
}
