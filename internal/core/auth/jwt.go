package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

type Claims struct {
	UID  uint      `json:"uid"`
	Role string    `json:"role"` // family / caregiver / admin
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration // access
	RefreshTTL time.Duration
}

// Pair 登录返回的一对 token
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (j *JWTer) issue(uid uint, role string, typ TokenType, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UID:  uid,
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", nil, err
	}
	return s, claims, nil
}

func (j *JWTer) Issue(uid uint, role string) (string, error) {
	s, _, err := j.issue(uid, role, AccessToken, j.TTL)
	return s, err
}

// IssuePair 返回 access + refresh，以及 refresh 的 claims（用于登记白名单）
func (j *JWTer) IssuePair(uid uint, role string) (Pair, *Claims, error) {
	access, _, err := j.issue(uid, role, AccessToken, j.TTL)
	if err != nil {
		return Pair{}, nil, err
	}
	refresh, rc, err := j.issue(uid, role, RefreshToken, j.RefreshTTL)
	if err != nil {
		return Pair{}, nil, err
	}
	return Pair{Access: access, Refresh: refresh}, rc, nil
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// ParseAs 校验签名并要求指定 token 类型
func (j *JWTer) ParseAs(tokenStr string, typ TokenType) (*Claims, error) {
	c, err := j.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if c.Type != typ {
		return nil, ErrWrongTokenType
	}
	return c, nil
}
