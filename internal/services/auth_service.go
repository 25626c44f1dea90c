package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nftmart/nftmart-api/internal/config"
	"github.com/nftmart/nftmart-api/internal/models"
)

// Claims represents the JWT claims
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// AuthService authenticates wallets with a challenge/response flow: the
// wallet signs a one-time message and receives a bearer token carrying its
// address.
type AuthService struct {
	walletService *WalletService
	cfg           config.AuthConfig
	now           func() time.Time

	mu         sync.Mutex
	challenges map[string]models.AuthChallenge
}

// NewAuthService creates a new AuthService
func NewAuthService(walletService *WalletService, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		walletService: walletService,
		cfg:           cfg,
		now:           time.Now,
		challenges:    make(map[string]models.AuthChallenge),
	}
}

// Challenge issues a one-time message for the wallet to sign.
func (s *AuthService) Challenge(address string) (*models.AuthChallenge, error) {
	if !s.walletService.IsAddressValid(address) {
		return nil, fmt.Errorf("invalid wallet address")
	}

	address = strings.ToLower(address)
	nonce := uuid.New().String()
	challenge := models.AuthChallenge{
		ID:        uuid.New().String(),
		Address:   address,
		Message:   fmt.Sprintf("Sign this message to authenticate with Nftmart: %s %s", address, nonce),
		ExpiresAt: s.now().Add(time.Duration(s.cfg.ChallengeTTL) * time.Minute),
	}

	s.mu.Lock()
	s.pruneLocked()
	s.challenges[challenge.ID] = challenge
	s.mu.Unlock()

	return &challenge, nil
}

// Verify checks the signature over a previously issued challenge and returns
// a bearer token. The challenge is consumed whether or not it verifies.
func (s *AuthService) Verify(req models.VerifyRequest) (*models.AuthToken, error) {
	s.mu.Lock()
	challenge, ok := s.challenges[req.ID]
	delete(s.challenges, req.ID)
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("challenge not found")
	}
	if s.now().After(challenge.ExpiresAt) {
		return nil, fmt.Errorf("challenge expired")
	}
	if !strings.EqualFold(challenge.Address, req.Address) {
		return nil, fmt.Errorf("address mismatch")
	}

	valid, err := s.walletService.VerifySignature(challenge.Address, challenge.Message, req.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature verification failed: %w", err)
	}
	if !valid {
		return nil, fmt.Errorf("invalid signature")
	}

	token, expiresAt, err := s.generateToken(challenge.Address)
	if err != nil {
		return nil, err
	}

	return &models.AuthToken{
		Token:     token,
		ExpiresAt: expiresAt,
		Address:   challenge.Address,
	}, nil
}

// ValidateToken validates a JWT token and returns the wallet address it was
// issued for.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Check the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	return claims.Address, nil
}

// generateToken generates a JWT token for a wallet address
func (s *AuthService) generateToken(address string) (string, time.Time, error) {
	expiresAt := s.now().Add(time.Duration(s.cfg.JWTExpiration) * time.Hour)

	claims := &Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			NotBefore: jwt.NewNumericDate(s.now()),
			Issuer:    "nftmart-api",
			Subject:   address,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// pruneLocked drops expired challenges. Caller holds the mutex.
func (s *AuthService) pruneLocked() {
	now := s.now()
	for id, c := range s.challenges {
		if now.After(c.ExpiresAt) {
			delete(s.challenges, id)
		}
	}
}
