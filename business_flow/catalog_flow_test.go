package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/app/services"
	"github.com/amirphl/carrier-pos/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCatalogFlow(t *testing.T) {
	ctx := context.Background()
	flow := NewCatalogFlow()

	t.Run("ListPlans", func(t *testing.T) {
		resp, err := flow.ListPlans(ctx)
		require.NoError(t, err)
		assert.Len(t, resp.Plans, 3)
		assert.NotEmpty(t, resp.Offers)
		assert.Equal(t, "Unlimited Plus - $80/mo", resp.DefaultPlan)
	})

	t.Run("ListFeatures", func(t *testing.T) {
		resp, err := flow.ListFeatures(ctx)
		require.NoError(t, err)
		assert.Len(t, resp.Features, 10)
	})

	t.Run("QuotePlan", func(t *testing.T) {
		tests := []struct {
			plan     string
			lines    int
			perLine  float64
			total    float64
			checkErr func(error) bool
		}{
			{plan: "0123", lines: 1, perLine: 100, total: 100},
			{plan: "0123", lines: 3, perLine: 75, total: 225},
			{plan: "8901", lines: 6, perLine: 40, total: 240},
			{plan: "0000", lines: 1, checkErr: IsPlanNotFound},
			{plan: "4567", lines: 0, checkErr: IsInvalidLineCount},
		}

		for _, tt := range tests {
			quote, err := flow.QuotePlan(ctx, tt.plan, tt.lines)
			if tt.checkErr != nil {
				require.Error(t, err)
				assert.True(t, tt.checkErr(err), "plan %s lines %d: %v", tt.plan, tt.lines, err)
				continue
			}
			require.NoError(t, err)
			assert.Equal(t, tt.perLine, quote.PricePerLine)
			assert.Equal(t, tt.total, quote.Total)
		}
	})

	t.Run("ListVisitReasonsSorted", func(t *testing.T) {
		resp, err := flow.ListVisitReasons(ctx)
		require.NoError(t, err)
		require.Len(t, resp.Groups, 3)
		assert.Equal(t, "Billing", resp.Groups[0].Category)
		assert.Equal(t, "Sales", resp.Groups[1].Category)
		assert.Equal(t, "Trade In or Return", resp.Groups[2].Category)
		assert.Equal(t, []string{"Billing Question", "Pay a Bill"}, resp.Groups[0].Reasons)
	})
}

func TestOperatorAuthFlow(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("counter-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens, err := services.NewTokenService(time.Hour, 24*time.Hour, "carrier-pos", "carrier-pos-terminal", false, "", "", "test-secret-key-with-at-least-32-characters")
	require.NoError(t, err)

	flow := NewOperatorAuthFlow(config.OperatorConfig{
		AuthEnabled:  true,
		Username:     "store-operator",
		PasswordHash: string(hash),
	}, tokens)

	t.Run("Login", func(t *testing.T) {
		resp, err := flow.Login(ctx, &dto.OperatorLoginRequest{Username: "store-operator", Password: "counter-pass"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "store-operator", resp.Username)
		assert.Equal(t, "Bearer", resp.Session.TokenType)
		assert.Equal(t, 3600, resp.Session.ExpiresIn)

		claims, err := tokens.ValidateToken(resp.Session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "store-operator", claims.Operator)
		assert.Equal(t, services.TokenTypeAccess, claims.TokenType)
	})

	t.Run("WrongCredentials", func(t *testing.T) {
		for _, req := range []*dto.OperatorLoginRequest{
			{Username: "store-operator", Password: "wrong"},
			{Username: "someone-else", Password: "counter-pass"},
			nil,
		} {
			_, err := flow.Login(ctx, req, nil)
			require.Error(t, err)
			assert.True(t, IsInvalidCredentials(err))
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		login, err := flow.Login(ctx, &dto.OperatorLoginRequest{Username: "store-operator", Password: "counter-pass"}, nil)
		require.NoError(t, err)

		resp, err := flow.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.Session.RefreshToken}, nil)
		require.NoError(t, err)
		assert.Equal(t, "store-operator", resp.Username)
		assert.NotEmpty(t, resp.Session.AccessToken)

		_, err = flow.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: login.Session.AccessToken}, nil)
		assert.True(t, IsInvalidCredentials(err))
	})

	t.Run("NotConfigured", func(t *testing.T) {
		disabled := NewOperatorAuthFlow(config.OperatorConfig{}, tokens)
		_, err := disabled.Login(ctx, &dto.OperatorLoginRequest{Username: "store-operator", Password: "counter-pass"}, nil)
		assert.True(t, IsOperatorDisabled(err))
	})
}
