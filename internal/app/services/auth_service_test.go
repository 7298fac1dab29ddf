package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/devcamper/internal/app/models"
	"github.com/yigit/devcamper/internal/app/models/dto"
	"github.com/yigit/devcamper/internal/pkg/apperrors"
	"github.com/yigit/devcamper/internal/pkg/auth"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

type authFixture struct {
	svc    *AuthService
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	resets *fakeResetRepo
	mailer *fakeMailer
	jwt    *auth.JWTService
}

func newAuthServiceFixture() *authFixture {
	f := &authFixture{
		users:  newFakeUserRepo(),
		tokens: newFakeTokenRepo(),
		resets: newFakeResetRepo(),
		mailer: &fakeMailer{},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  time.Hour,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "devcamper.test",
		}),
	}
	f.svc = NewAuthService(f.users, f.tokens, f.resets, f.mailer, f.jwt, zerolog.Nop())
	return f
}

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeTokenRepo, *auth.JWTService) {
	f := newAuthServiceFixture()
	return f.svc, f.users, f.tokens, f.jwt
}

func register(t *testing.T, svc *AuthService, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name:     "John Doe",
		Email:    email,
		Password: "123456",
		Role:     models.RolePublisher,
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	svc, users, tokens, jwtService := newAuthFixture()

	resp := register(t, svc, "john@gmail.com")
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, models.RolePublisher, resp.User.Role)

	claims, err := jwtService.ValidateToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	stored, err := users.GetByID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "123456", stored.Password)
	assert.Equal(t, 1, tokens.active(resp.User.ID))
}

func TestRegisterDefaultsAndRejections(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "Jane", Email: "jane@gmail.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, resp.User.Role)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{Name: "Eve", Email: "eve@gmail.com", Password: "123456", Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{Name: "Jane", Email: "jane@gmail.com", Password: "123456"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateKey))
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	register(t, svc, "john@gmail.com")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "john@gmail.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "john@gmail.com", resp.User.Email)

	for _, req := range []*dto.LoginRequest{
		{Email: "john@gmail.com", Password: "wrong"},
		{Email: "nobody@gmail.com", Password: "123456"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		assert.Equal(t, "Invalid credentials", err.Error())
	}
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	first := register(t, svc, "john@gmail.com")

	second, err := svc.RefreshToken(context.Background(), first.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token.RefreshToken, second.Token.RefreshToken)

	_, err = svc.RefreshToken(context.Background(), first.Token.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.RefreshToken(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestLogout(t *testing.T) {
	svc, _, tokens, _ := newAuthFixture()
	resp := register(t, svc, "john@gmail.com")

	require.NoError(t, svc.Logout(context.Background(), resp.User.ID))
	assert.Equal(t, 0, tokens.active(resp.User.ID))
}

func TestUpdateDetails(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	resp := register(t, svc, "john@gmail.com")

	name := "John Smith"
	user, err := svc.UpdateDetails(context.Background(), resp.User.ID, &dto.UpdateDetailsRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, user.Name)
	assert.Equal(t, "john@gmail.com", user.Email)

	me, err := svc.GetMe(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, name, me.Name)

	_, err = svc.GetMe(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestUpdatePassword(t *testing.T) {
	svc, _, tokens, _ := newAuthFixture()
	resp := register(t, svc, "john@gmail.com")

	_, err := svc.UpdatePassword(context.Background(), resp.User.ID, &dto.UpdatePasswordRequest{CurrentPassword: "nope", NewPassword: "654321"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Equal(t, "Password is incorrect", err.Error())

	updated, err := svc.UpdatePassword(context.Background(), resp.User.ID, &dto.UpdatePasswordRequest{CurrentPassword: "123456", NewPassword: "654321"})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.Token.AccessToken)
	assert.Equal(t, 1, tokens.active(resp.User.ID), "only the new session survives")

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "john@gmail.com", Password: "123456"})
	require.Error(t, err)
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "john@gmail.com", Password: "654321"})
	require.NoError(t, err)
}

const resetBase = "http://localhost:5000/api/v1/auth/resetpassword"

func TestForgotPassword(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()
	registered := register(t, f.svc, "john@gmail.com")

	require.NoError(t, f.svc.ForgotPassword(ctx, "john@gmail.com", resetBase))
	require.Len(t, f.mailer.sent, 1)
	sent := f.mailer.sent[0]
	assert.Equal(t, "john@gmail.com", sent.to)
	assert.Equal(t, "John Doe", sent.name)
	require.True(t, strings.HasPrefix(sent.url, resetBase+"/"))

	token := strings.TrimPrefix(sent.url, resetBase+"/")
	userID, err := f.resets.GetUserIDByToken(ctx, auth.HashToken(token))
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, userID)

	// a second request replaces the first token
	require.NoError(t, f.svc.ForgotPassword(ctx, "john@gmail.com", resetBase))
	assert.Equal(t, 1, f.resets.count())
	_, err = f.resets.GetUserIDByToken(ctx, auth.HashToken(token))
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthServiceFixture()

	err := f.svc.ForgotPassword(context.Background(), "ghost@gmail.com", resetBase)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Equal(t, "There is no user with that email", err.Error())
	assert.Empty(t, f.mailer.sent)
}

func TestForgotPasswordMailFailure(t *testing.T) {
	f := newAuthServiceFixture()
	register(t, f.svc, "john@gmail.com")
	f.mailer.err = errors.New("connection refused")

	err := f.svc.ForgotPassword(context.Background(), "john@gmail.com", resetBase)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.Equal(t, "Email could not be sent", err.Error())
	assert.Zero(t, f.resets.count())
}

func TestResetPassword(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()
	registered := register(t, f.svc, "john@gmail.com")

	require.NoError(t, f.svc.ForgotPassword(ctx, "john@gmail.com", resetBase))
	token := strings.TrimPrefix(f.mailer.sent[0].url, resetBase+"/")

	resp, err := f.svc.ResetPassword(ctx, token, "new-secret")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token.AccessToken)

	// old sessions end, the new one stays
	assert.Equal(t, 1, f.tokens.active(registered.User.ID))
	_, err = f.svc.RefreshToken(ctx, registered.Token.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "john@gmail.com", Password: "new-secret"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, &dto.LoginRequest{Email: "john@gmail.com", Password: "123456"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	// single use
	_, err = f.svc.ResetPassword(ctx, token, "another-secret")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Equal(t, "Invalid token", err.Error())
}

func TestResetPasswordInvalidToken(t *testing.T) {
	f := newAuthServiceFixture()
	ctx := context.Background()
	registered := register(t, f.svc, "john@gmail.com")

	_, err := f.svc.ResetPassword(ctx, "not-a-token", "new-secret")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	require.NoError(t, f.resets.ReplaceToken(ctx, registered.User.ID, auth.HashToken("stale"), time.Now().Add(-time.Minute)))
	_, err = f.svc.ResetPassword(ctx, "stale", "new-secret")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
