package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/storefront-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/storefront-api/internal/domains/users/ports"
)

// AuthAPI implements account registration, sessions and profiles.
type AuthAPI struct {
	service userports.Service
}

// NewAuthAPI wires dependencies.
func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /api/auth/register
// Create an account and open a session
func (api *AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.Register
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, session, err := api.service.Register(c.Request.Context(), userhttpmapper.ToRegisterInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromSession(user, session))
}

// Post /api/auth/login
// Exchange credentials for a bearer token
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.Login
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, session, err := api.service.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromSession(user, session))
}

// Post /api/auth/logout
// Revoke the current session
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Get /api/auth/profile
// Current account
func (api *AuthAPI) GetProfile(c *gin.Context) {
	user, err := api.service.GetProfile(c.Request.Context(), currentActor(c).UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /api/auth/profile
// Update name, phone or password. A new password signs out other sessions.
func (api *AuthAPI) UpdateProfile(c *gin.Context) {
	var payload userhttpmapper.ProfileUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	update := userhttpmapper.ToProfileUpdate(payload)
	update.KeepSession = bearerToken(c)
	user, err := api.service.UpdateProfile(c.Request.Context(), currentActor(c).UserID, update)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /api/auth/change-password
// Replace the password after checking the current one. Other sessions are revoked.
func (api *AuthAPI) ChangePassword(c *gin.Context) {
	var payload userhttpmapper.ChangePassword
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	err := api.service.ChangePassword(c.Request.Context(), currentActor(c).UserID, userports.PasswordChange{
		Current:     payload.CurrentPassword,
		New:         payload.NewPassword,
		KeepSession: bearerToken(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// Post /api/auth/forgot-password
// Mail a reset link. The answer is the same whether or not the email is known.
func (api *AuthAPI) ForgotPassword(c *gin.Context) {
	var payload userhttpmapper.ForgotPassword
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	if err := api.service.RequestPasswordReset(c.Request.Context(), payload.Email); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if an account exists for that email, a reset link has been sent"})
}

// Post /api/auth/reset-password/:token
// Redeem a reset token and open a new session
func (api *AuthAPI) ResetPassword(c *gin.Context) {
	token, ok := parseIDParam(c, "token")
	if !ok {
		return
	}
	var payload userhttpmapper.ResetPassword
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	user, session, err := api.service.ResetPassword(c.Request.Context(), token, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromSession(user, session))
}

// Post /api/auth/address
// Save a shipping address
func (api *AuthAPI) AddAddress(c *gin.Context) {
	var payload userhttpmapper.Address
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	addresses, err := api.service.AddAddress(c.Request.Context(), currentActor(c).UserID, userhttpmapper.ToDomainAddress(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainAddresses(addresses))
}

// Put /api/auth/address/:addressId
func (api *AuthAPI) UpdateAddress(c *gin.Context) {
	addressID, ok := parseIDParam(c, "addressId")
	if !ok {
		return
	}
	var payload userhttpmapper.Address
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	addresses, err := api.service.UpdateAddress(c.Request.Context(), currentActor(c).UserID, addressID, userhttpmapper.ToDomainAddress(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainAddresses(addresses))
}

// Delete /api/auth/address/:addressId
func (api *AuthAPI) DeleteAddress(c *gin.Context) {
	addressID, ok := parseIDParam(c, "addressId")
	if !ok {
		return
	}
	addresses, err := api.service.DeleteAddress(c.Request.Context(), currentActor(c).UserID, addressID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainAddresses(addresses))
}
