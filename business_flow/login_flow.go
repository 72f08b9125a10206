package businessflow

import (
	"context"
	"crypto/subtle"
	"log"
	"strings"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/app/services"
	"github.com/amirphl/carrier-pos/config"
	"golang.org/x/crypto/bcrypt"
)

// OperatorAuthFlow signs store operators in and renews their sessions
type OperatorAuthFlow interface {
	Login(ctx context.Context, request *dto.OperatorLoginRequest, metadata *ClientMetadata) (*dto.OperatorLoginResponse, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.OperatorLoginResponse, error)
}

// OperatorAuthFlowImpl checks credentials against the configured operator account
type OperatorAuthFlowImpl struct {
	operator     config.OperatorConfig
	tokenService services.TokenService
}

func NewOperatorAuthFlow(operator config.OperatorConfig, tokenService services.TokenService) OperatorAuthFlow {
	return &OperatorAuthFlowImpl{
		operator:     operator,
		tokenService: tokenService,
	}
}

// Login authenticates the operator with username and password
func (lf *OperatorAuthFlowImpl) Login(ctx context.Context, request *dto.OperatorLoginRequest, metadata *ClientMetadata) (*dto.OperatorLoginResponse, error) {
	if lf.operator.Username == "" || lf.operator.PasswordHash == "" || lf.tokenService == nil {
		return nil, NewBusinessError("OPERATOR_DISABLED", "Operator login is not configured", ErrOperatorDisabled)
	}
	if request == nil {
		return nil, invalidCredentials()
	}

	username := strings.TrimSpace(request.Username)
	if subtle.ConstantTimeCompare([]byte(username), []byte(lf.operator.Username)) != 1 {
		log.Printf("auth: login rejected for %q %s", username, metadata)
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(lf.operator.PasswordHash), []byte(request.Password)); err != nil {
		log.Printf("auth: login rejected for %q %s", username, metadata)
		return nil, invalidCredentials()
	}

	accessToken, refreshToken, err := lf.tokenService.GenerateTokens(username)
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate tokens", err)
	}

	log.Printf("auth: operator %s logged in %s", username, metadata)
	return lf.response(username, accessToken, refreshToken), nil
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (lf *OperatorAuthFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.OperatorLoginResponse, error) {
	if lf.tokenService == nil {
		return nil, NewBusinessError("OPERATOR_DISABLED", "Operator login is not configured", ErrOperatorDisabled)
	}
	if request == nil || request.RefreshToken == "" {
		return nil, invalidCredentials()
	}

	claims, err := lf.tokenService.ValidateToken(request.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired", ErrInvalidCredentials)
	}

	accessToken, refreshToken, err := lf.tokenService.RefreshToken(request.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired", ErrInvalidCredentials)
	}

	return lf.response(claims.Operator, accessToken, refreshToken), nil
}

func (lf *OperatorAuthFlowImpl) response(username, accessToken, refreshToken string) *dto.OperatorLoginResponse {
	return &dto.OperatorLoginResponse{
		Username: username,
		Session: dto.OperatorSessionDTO{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    int(lf.tokenService.AccessTokenTTL().Seconds()),
		},
	}
}

func invalidCredentials() error {
	return NewBusinessError("INVALID_CREDENTIALS", "Invalid username or password", ErrInvalidCredentials)
}
