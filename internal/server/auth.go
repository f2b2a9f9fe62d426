package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/interfaces/http/common"
)

var errInvalidToken = errors.New("invalid access token")

type authClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、認証済みオペレーターをコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			common.WriteMessage(s.logger, w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			common.WriteMessage(s.logger, w, http.StatusUnauthorized, "bearer token required")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			common.WriteMessage(s.logger, w, http.StatusUnauthorized, "empty access token")
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			s.logger.Debug("rejected access token", zap.Error(err), zap.String("path", r.URL.Path))
			common.WriteMessage(s.logger, w, http.StatusUnauthorized, errInvalidToken.Error())
			return
		}

		user := common.AuthenticatedUser{
			ID:   claims.Subject,
			Name: claims.Name,
			Role: claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(common.ContextWithUser(r.Context(), user)))
	})
}

// parseAuthToken は JWT 設定を順番に試し、署名検証と Issuer/Audience の整合性を確認する。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	if len(s.jwtConfigs) == 0 {
		return nil, fmt.Errorf("auth is not configured")
	}

	for _, cfg := range s.jwtConfigs {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return cfg.Secret, nil
		}, jwt.WithLeeway(30*time.Second), jwt.WithTimeFunc(s.now))

		if err != nil || !token.Valid {
			continue
		}
		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if s.jwtAudience != "" && !slices.Contains(claims.Audience, s.jwtAudience) {
			continue
		}
		return claims, nil
	}

	return nil, errInvalidToken
}
