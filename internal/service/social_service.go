package service

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"antgiftbox/internal/config"
	"antgiftbox/internal/models"
)

var ErrProviderNotConfigured = errors.New("social provider not configured")

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	appleIssuer       = "https://appleid.apple.com"
	appleKeysURL      = "https://appleid.apple.com/auth/keys"
)

// SocialService exchanges provider credentials submitted by the mobile
// client for a verified identity, then delegates to the auth service.
type SocialService struct {
	authService   *AuthService
	googleConfig  *oauth2.Config
	appleClientID string
}

// NewSocialService creates a new social sign-in service
func NewSocialService(authService *AuthService, cfg *config.Config) *SocialService {
	return &SocialService{
		authService: authService,
		googleConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		appleClientID: cfg.AppleClientID,
	}
}

// SignInWithGoogle exchanges an authorization code from the Google sign-in
// flow and logs the verified account in
func (s *SocialService) SignInWithGoogle(ctx context.Context, code string) (*models.Session, *models.User, error) {
	if s.googleConfig.ClientID == "" || s.googleConfig.ClientSecret == "" {
		return nil, nil, ErrProviderNotConfigured
	}

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange Google code: %w", err)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch Google user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, errors.New("failed to fetch Google user info")
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("failed to parse Google user info: %w", err)
	}
	if payload.Email == "" {
		return nil, nil, errors.New("Google account has no email")
	}

	return s.authService.SocialLogin("google", payload.Email, payload.Name)
}

// SignInWithApple verifies an Apple identity token from the native sign-in
// flow and logs the verified account in
func (s *SocialService) SignInWithApple(ctx context.Context, idToken string) (*models.Session, *models.User, error) {
	if s.appleClientID == "" {
		return nil, nil, ErrProviderNotConfigured
	}

	claims, err := parseAppleIDToken(ctx, idToken, s.appleClientID)
	if err != nil {
		return nil, nil, err
	}

	return s.authService.SocialLogin("apple", claims.Email, "")
}

type appleTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
}

type appleJWK struct {
	Keys []appleJWKKey `json:"keys"`
}

type appleJWKKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseAppleIDToken(ctx context.Context, idToken, clientID string) (*appleTokenClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &appleTokenClaims{}

	parsedToken, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return fetchApplePublicKey(ctx, kid)
	})
	if err != nil || !parsedToken.Valid {
		return nil, errors.New("invalid Apple token")
	}

	if claims.Issuer != appleIssuer {
		return nil, errors.New("invalid Apple issuer")
	}
	if !audienceContains(claims.Audience, clientID) {
		return nil, errors.New("invalid Apple audience")
	}
	if claims.Email == "" {
		return nil, errors.New("Apple email not available")
	}
	return claims, nil
}

func audienceContains(audience jwt.ClaimStrings, value string) bool {
	for _, entry := range audience {
		if entry == value {
			return true
		}
	}
	return false
}

func fetchApplePublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, appleKeysURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("failed to fetch Apple public keys")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var jwk appleJWK
	if err := json.Unmarshal(body, &jwk); err != nil {
		return nil, err
	}

	for _, key := range jwk.Keys {
		if key.Kid != kid {
			continue
		}
		if key.Kty != "RSA" {
			return nil, errors.New("unexpected key type")
		}
		modulusBytes, err := base64.RawURLEncoding.DecodeString(key.N)
		if err != nil {
			return nil, err
		}
		exponentBytes, err := base64.RawURLEncoding.DecodeString(key.E)
		if err != nil {
			return nil, err
		}
		exponent := 0
		for _, b := range exponentBytes {
			exponent = exponent*256 + int(b)
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(modulusBytes),
			E: exponent,
		}, nil
	}

	return nil, errors.New("Apple public key not found")
}
