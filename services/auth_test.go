package services

import (
	"net/http"
	"testing"

	"restaurant-ordering-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration(email, username string) RegisterInput {
	return RegisterInput{
		FirstName:    " Grace ",
		LastName:     "Hopper",
		Email:        email,
		Username:     username,
		Password:     "secret123",
		PasswordConf: "secret123",
		Phone:        "+15550100",
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("secret124", hash))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user, err := f.Auth.Register(t.Context(), registration(" Grace@Example.com ", "grace"))
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.Equal(t, "Grace", user.FirstName)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.True(t, CheckPassword("secret123", user.PasswordHash))
}

func TestRegisterRejections(t *testing.T) {
	f := newFixture(t)
	_, err := f.Auth.Register(t.Context(), registration("grace@example.com", "grace"))
	require.NoError(t, err)

	mismatch := registration("other@example.com", "other")
	mismatch.PasswordConf = "different"
	_, err = f.Auth.Register(t.Context(), mismatch)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.Auth.Register(t.Context(), registration("GRACE@example.com", "someone"))
	requireStatus(t, err, http.StatusBadRequest)

	_, err = f.Auth.Register(t.Context(), registration("new@example.com", "grace"))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.Auth.Register(t.Context(), registration("grace@example.com", "grace"))
	require.NoError(t, err)

	user, err := f.Auth.Login(t.Context(), LoginInput{Email: "Grace@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)

	_, err = f.Auth.Login(t.Context(), LoginInput{Email: "grace@example.com", Password: "wrong"})
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = f.Auth.Login(t.Context(), LoginInput{Email: "nobody@example.com", Password: "secret123"})
	requireStatus(t, err, http.StatusUnauthorized)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = f.Auth.Login(t.Context(), LoginInput{Email: "grace@example.com", Password: "secret123"})
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.RoleCustomer)

	first, phone := " Ada ", "+15559999"
	prefs := models.Preferences{CuisineTypes: []string{"Italian"}, SpiceLevel: "Hot"}
	updated, err := f.Auth.UpdateProfile(t.Context(), u.ID, ProfileInput{FirstName: &first, Phone: &phone, Preferences: &prefs})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, u.LastName, updated.LastName)

	reloaded, err := f.Auth.Profile(t.Context(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, phone, reloaded.Phone)
	assert.Equal(t, prefs, reloaded.Preferences)
	assert.Equal(t, u.Email, reloaded.Email)

	_, err = f.Auth.Profile(t.Context(), 9999)
	requireStatus(t, err, http.StatusNotFound)
}

func TestAddAddressDefaults(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, models.RoleCustomer)

	user, err := f.Auth.AddAddress(t.Context(), u.ID, AddressInput{Label: "Home", Street: "1 Main St", City: "New York"})
	require.NoError(t, err)
	require.Len(t, user.Addresses, 1)
	assert.True(t, user.Addresses[0].IsDefault, "first address becomes the default")

	user, err = f.Auth.AddAddress(t.Context(), u.ID, AddressInput{Label: "Gym", Street: "2 Side St", City: "New York"})
	require.NoError(t, err)
	require.Len(t, user.Addresses, 2)

	user, err = f.Auth.AddAddress(t.Context(), u.ID, AddressInput{Label: "Work", Street: "3 Office Rd", City: "New York", IsDefault: true})
	require.NoError(t, err)
	require.Len(t, user.Addresses, 3)

	defaults := map[string]bool{}
	for _, a := range user.Addresses {
		defaults[a.Label] = a.IsDefault
	}
	assert.Equal(t, map[string]bool{"Home": false, "Gym": false, "Work": true}, defaults)
}
