// 백엔드 호출 시 Authorization 헤더에 넣을 토큰 공급자
//
// 브라우저에서는 localStorage의 "token" 키를 읽지만 서버에는 그런 저장소가 없으므로
// 설정값(API_TOKEN) 또는 서비스용 JWT(SERVICE_JWT_SECRET)로 대체한다.

package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKey - 클라이언트 측 저장소에서 토큰을 찾는 키
const TokenKey = "token"

// TokenSource - 토큰이 없으면 ("", nil)
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// NoToken - 서버 기본값. Authorization 헤더를 붙이지 않는다.
type NoToken struct{}

func (NoToken) Token(context.Context) (string, error) { return "", nil }

// StaticToken - 고정 토큰
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// ServiceTokenSource - HS256 서비스 토큰을 발급하고 만료 직전까지 재사용
type ServiceTokenSource struct {
	secret  []byte
	issuer  string
	subject string
	ttl     time.Duration

	mu      sync.Mutex
	cached  string
	expires time.Time
	now     func() time.Time
}

type serviceClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewServiceTokenSource(secret, issuer, subject string, ttl time.Duration) (*ServiceTokenSource, error) {
	if secret == "" {
		return nil, fmt.Errorf("service token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("service token ttl must be positive")
	}
	return &ServiceTokenSource{
		secret:  []byte(secret),
		issuer:  issuer,
		subject: subject,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

func (s *ServiceTokenSource) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// 만료 10% 전이면 새로 발급
	if s.cached != "" && now.Add(s.ttl/10).Before(s.expires) {
		return s.cached, nil
	}

	expires := now.Add(s.ttl)
	claims := serviceClaims{
		Role: "service",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   s.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}

	s.cached = signed
	s.expires = expires
	return signed, nil
}
