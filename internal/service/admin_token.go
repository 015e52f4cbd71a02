package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminTokenService emite y valida access tokens con claim de rol. La
// autenticación de usuarios vive en otro servicio; acá solo verificamos el
// rol para las mutaciones administrativas del catálogo.
type AdminTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

const RoleAdmin = "admin"

// AdminClaims lleva identidad y rol del actor.
type AdminClaims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewAdminTokenService(secret string, ttl time.Duration) *AdminTokenService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &AdminTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "persona-shop",
	}
}

// Issue firma un token HS256 para el userID con el rol dado.
func (s *AdminTokenService) Issue(userID, role string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(userID) == "" {
		return "", ErrTokenInvalid
	}
	now := time.Now().UTC()
	claims := AdminClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida firma, expiración e issuer y devuelve los claims.
func (s *AdminTokenService) Parse(tokenString string) (AdminClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return AdminClaims{}, ErrTokenInvalid
	}

	var claims AdminClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AdminClaims{}, ErrTokenExpired
		}
		return AdminClaims{}, ErrTokenInvalid
	}

	if strings.TrimSpace(claims.UserID) == "" || claims.Subject != claims.UserID {
		return AdminClaims{}, ErrTokenInvalid
	}
	if claims.Issuer != s.issuer {
		return AdminClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

// IsAdmin valida el token y exige rol admin.
func (s *AdminTokenService) IsAdmin(tokenString string) (AdminClaims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return AdminClaims{}, err
	}
	if claims.Role != RoleAdmin {
		return AdminClaims{}, ErrTokenInvalid
	}
	return claims, nil
}
