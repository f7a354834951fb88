package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/marketmemphis/mdash/internal/client/client"
	"github.com/marketmemphis/mdash/internal/client/models"
	"github.com/marketmemphis/mdash/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() models.Registration {
	return models.Registration{
		Username:        "maria",
		Email:           "maria@tacosofia.com",
		Password:        "password1",
		Password2:       "password1",
		FirstName:       "Maria",
		LastName:        "Lopez",
		BusinessName:    "Taco Sofia",
		BusinessType:    "restaurant",
		BusinessAddress: "Downtown Austin",
		PhoneNumber:     "555-0100",
		ServiceTypes:    []string{models.ServicePresence, models.ServiceQR},
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantMsg  string
	}{
		{name: "ok", username: "maria", password: "password1"},
		{name: "short username", username: "ab", password: "password1", wantMsg: "Username must be at least 3 characters long"},
		{name: "padded username counts spaces", username: " ab ", password: "password1"},
		{name: "blank username", username: "  ", password: "password1", wantMsg: "Username must be at least 3 characters long"},
		{name: "short password", username: "maria", password: "1234567", wantMsg: "Password must be at least 8 characters long"},
		{name: "username counts runes", username: "jé", password: "password1", wantMsg: "Username must be at least 3 characters long"},
		{name: "password counts runes", username: "josé", password: "señora1", wantMsg: "Password must be at least 8 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.username, []byte(tt.password))
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantMsg)
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *models.Registration)
		wantField string
		wantMsg   string
	}{
		{name: "ok", mutate: func(r *models.Registration) {}},
		{name: "username", mutate: func(r *models.Registration) { r.Username = "ab" }, wantField: "username", wantMsg: "Username must be at least 3 characters long"},
		{name: "email", mutate: func(r *models.Registration) { r.Email = "maria@tacosofia" }, wantField: "email", wantMsg: "Please enter a valid email address"},
		{name: "password", mutate: func(r *models.Registration) { r.Password, r.Password2 = "short", "short" }, wantField: "password", wantMsg: "Password must be at least 8 characters long"},
		{name: "mismatch", mutate: func(r *models.Registration) { r.Password2 = "password2" }, wantField: "password2", wantMsg: "Passwords do not match"},
		{name: "last name", mutate: func(r *models.Registration) { r.LastName = " " }, wantField: "name", wantMsg: "First name and last name are required"},
		{name: "business name", mutate: func(r *models.Registration) { r.BusinessName = "" }, wantField: "business_name", wantMsg: "Business name is required"},
		{name: "business address", mutate: func(r *models.Registration) { r.BusinessAddress = "" }, wantField: "business_address", wantMsg: "Business address is required"},
		{name: "phone", mutate: func(r *models.Registration) { r.PhoneNumber = "" }, wantField: "phone_number", wantMsg: "Phone number is required"},
		{name: "unknown service", mutate: func(r *models.Registration) { r.ServiceTypes = []string{"billing"} }, wantField: "service_types", wantMsg: `Unknown service "billing"`},
		{name: "first problem wins", mutate: func(r *models.Registration) { r.Username, r.Email = "ab", "" }, wantField: "username", wantMsg: "Username must be at least 3 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegistration()
			tt.mutate(&r)

			err := ValidateRegistration(r)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}
}

func TestAuthLogin_ShortUsernameNeverCallsBackend(t *testing.T) {
	fb := newFakeBackend()
	c, _, _ := newController(t)
	svc := NewAuthService(fb, c, nil)

	err := svc.Login(context.Background(), "ab", []byte("password1"))
	require.EqualError(t, err, "Username must be at least 3 characters long")

	_, _, loginCalls := fb.calls()
	assert.Zero(t, loginCalls)
	assert.Equal(t, StateUninitialized, c.State().State)
}

func TestAuthLogin_StartsSession(t *testing.T) {
	c, store, fb := newController(t)
	fb.loginRes = &models.LoginResult{Token: "tok", User: maria}
	svc := NewAuthService(fb, c, nil)
	ctx := context.Background()

	require.NoError(t, svc.Login(ctx, "maria", []byte("password1")))
	assert.Equal(t, models.Credentials{Username: "maria", Password: "password1"}, fb.lastCreds)
	assert.True(t, c.Ready())

	token, _, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", token)
}

func TestAuthLogin_ProfileFailureKeepsSession(t *testing.T) {
	c, _, fb := newController(t)
	fb.loginRes = &models.LoginResult{Token: "tok", User: maria}
	fb.profileErr = &client.RequestError{Op: "Profile fetch", Status: http.StatusInternalServerError}
	svc := NewAuthService(fb, c, nil)

	err := svc.Login(context.Background(), "maria", []byte("password1"))
	require.ErrorIs(t, err, ErrProfileFetchFailed)

	snap := c.State()
	assert.Equal(t, StateAuthenticated, snap.State)
	assert.False(t, snap.ProfileLoaded)
}

func TestAuthLogin_BackendRejection(t *testing.T) {
	c, _, fb := newController(t)
	fb.loginErr = &client.RequestError{Op: "Login", Status: http.StatusBadRequest, Message: "Invalid credentials"}
	svc := NewAuthService(fb, c, nil)

	err := svc.Login(context.Background(), "maria", []byte("password1"))
	require.EqualError(t, err, "Invalid credentials")
	assert.NotEqual(t, StateAuthenticated, c.State().State)
}

func TestAuthRegister(t *testing.T) {
	fb := newFakeBackend()
	svc := NewAuthService(fb, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validRegistration()))
	require.Len(t, fb.registered, 1)
	assert.Equal(t, "maria", fb.registered[0].Username)

	bad := validRegistration()
	bad.Password2 = "different"
	require.ErrorIs(t, svc.Register(ctx, bad), common.ErrorValidation)
	assert.Len(t, fb.registered, 1)

	fb.registerErr = errors.New("username: already taken")
	require.EqualError(t, svc.Register(ctx, validRegistration()), "username: already taken")
}
