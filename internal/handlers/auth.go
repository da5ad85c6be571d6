// Package handlers exposes the HTTP surface: thin fiber handlers that
// parse and validate requests, delegate to services and shape responses.
package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"compas/internal/middleware"
	"compas/internal/models"
	"compas/internal/repositories"
	"compas/internal/services/auth"
	"compas/internal/utils"
	"compas/internal/validation"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Name     string `json:"name" validate:"required"`
		Phone    string `json:"phone" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	user, err := h.authService.Register(input.Email, input.Password, input.Name, input.Phone)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, repositories.ErrEmailTaken), errors.Is(err, repositories.ErrPhoneTaken):
			return utils.Conflict(c, err.Error())
		}
		log.Printf("register failed: %v", err)
		return utils.InternalError(c, "registration failed")
	}

	return utils.Created(c, fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	user, accessToken, refreshToken, err := h.authService.Login(input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return utils.Unauthorized(c, "invalid email or password")
		case errors.Is(err, auth.ErrAccountSuspended):
			return utils.Forbidden(c, "account is suspended")
		}
		log.Printf("login failed: %v", err)
		return utils.InternalError(c, "authentication failed")
	}

	h.setAuthCookies(c, accessToken, refreshToken)
	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": fiber.Map{
			"id":          user.ID,
			"email":       user.Email,
			"name":        user.Name,
			"role":        user.Role,
			"permissions": models.GetDefaultPermissions(user.Role),
		},
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		var input struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&input); err == nil {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		return utils.Unauthorized(c, "refresh token not provided")
	}

	accessToken, newRefreshToken, err := h.authService.RefreshTokens(refreshToken)
	if err != nil {
		return utils.Unauthorized(c, "invalid refresh token")
	}

	h.setAuthCookies(c, accessToken, newRefreshToken)
	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
	})
}

// Logout invalidates every outstanding token for the user by bumping the
// token version.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	if err := h.authService.Logout(claims.UserID); err != nil {
		log.Printf("logout failed for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "logout failed")
	}
	h.clearAuthCookies(c)
	return utils.Success(c, fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}

	var input struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if err := validation.ValidateStruct(input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	err := h.authService.ChangePassword(claims.UserID, input.OldPassword, input.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return utils.Unauthorized(c, "old password is incorrect")
		case errors.Is(err, auth.ErrWeakPassword):
			return utils.BadRequest(c, err.Error())
		}
		return utils.InternalError(c, "password change failed")
	}
	h.clearAuthCookies(c)
	return utils.Success(c, fiber.Map{"message": "password changed, please log in again"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := middleware.Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	user, err := h.authService.GetUserByID(claims.UserID)
	if err != nil {
		return utils.NotFound(c, "user not found")
	}
	return utils.Success(c, fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"phone": user.Phone,
		"role":  user.Role,
	})
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	secure := c.Protocol() == "https"
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Strict",
		Expires:  time.Now().Add(15 * time.Minute),
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: "Strict",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true})
}
