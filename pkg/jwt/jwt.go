package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Actor types carried in token claims.
const (
	ActorAdmin   = "admin"
	ActorPartner = "partner"
)

// Claims represents JWT claims for admins and (impersonated) partner sessions
type Claims struct {
	SubjectID uuid.UUID `json:"subjectId"`
	Email     string    `json:"email"`
	ActorType string    `json:"actorType"`
	// AdminType is super_admin or sub_admin for admin actors.
	AdminType string `json:"adminType,omitempty"`
	// Departments is the sub_admin department list ("all" grants everything).
	Departments []string `json:"departments,omitempty"`
	// ImpersonatorID is set when an admin acts as a partner.
	ImpersonatorID uuid.UUID `json:"impersonatorId,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// JWTService handles JWT operations
type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

var signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
	return token.SignedString(secret)
}

// NewJWTService creates a new JWT service
func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateTokenPair generates access and refresh tokens for an admin
func (s *JWTService) GenerateTokenPair(adminID uuid.UUID, email, adminType string, departments []string) (*TokenPair, error) {
	base := Claims{
		SubjectID:   adminID,
		Email:       email,
		ActorType:   ActorAdmin,
		AdminType:   adminType,
		Departments: departments,
	}

	accessToken, err := s.generateToken(base, s.accessExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateToken(base, s.refreshExpiry)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GenerateImpersonationToken generates a partner-scoped token for an admin
// acting on behalf of a partner. Expiry is bounded by the given duration.
func (s *JWTService) GenerateImpersonationToken(partnerID, adminID uuid.UUID, partnerEmail string, expiry time.Duration) (string, error) {
	claims := Claims{
		SubjectID:      partnerID,
		Email:          partnerEmail,
		ActorType:      ActorPartner,
		ImpersonatorID: adminID,
	}
	return s.generateToken(claims, expiry)
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *JWTService) generateToken(claims Claims, expiry time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return signJWTToken(token, s.secret)
}
