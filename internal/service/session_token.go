package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSessionSecretLength = 16

// SessionClaims 购物会话声明
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionSigner 购物会话令牌签发
// 仅用于区分购物车与草稿归属，不做身份认证
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner 创建会话签发器
func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SessionSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// CheckSessionSecret 校验密钥强度
func CheckSessionSecret(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if len(trimmed) < minSessionSecretLength || trimmed == "change-me-in-production" {
		return ErrSessionSecretWeak
	}
	return nil
}

// TTL 令牌有效期
func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

// Issue 签发新会话，返回会话ID与令牌
func (s *SessionSigner) Issue() (string, string, error) {
	sessionID := uuid.NewString()
	token, err := s.Sign(sessionID)
	if err != nil {
		return "", "", err
	}
	return sessionID, token, nil
}

// Sign 为指定会话签发令牌（续期时沿用原会话ID）
func (s *SessionSigner) Sign(sessionID string) (string, error) {
	now := s.now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse 解析令牌，返回会话声明
func (s *SessionSigner) Parse(tokenString string) (*SessionClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &SessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Join(ErrSessionTokenBad, err)
		}
		return nil, ErrSessionTokenBad
	}
	if !token.Valid || strings.TrimSpace(claims.SessionID) == "" {
		return nil, ErrSessionTokenBad
	}
	return claims, nil
}
