package handler

import (
	"io"
	"net/http"

	"woms/internal/middleware"
	"woms/internal/service"
	"woms/pkg/response"

	"github.com/gin-gonic/gin"
)

// maxSignatureSize caps uploaded signature images at 1 MiB.
const maxSignatureSize = 1 << 20

type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler sets up the routing dependencies for authentication endpoints
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/authentication")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/user", middleware.Authenticate(), h.Me)
		auth.POST("/signature", middleware.Authenticate(), h.UploadSignature)
	}
}

// Register creates an account, with an optional elevated role request
// @Summary      Register account
// @Description  Creates an account. Elevated roles stay unusable until a warehouse admin confirms them.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterDTO  true  "Registration payload"
// @Success      201      {object}  response.Response{data=service.ProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /authentication/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, profile))
}

// Login exchanges credentials for a token pair
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginDTO  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      403      {object}  response.Response
// @Router       /authentication/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	pair, profile, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"user":   profile,
		"tokens": pair,
	}))
}

// Refresh rotates the refresh token and issues a new pair
// @Summary      Refresh tokens
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.TokenPair}
// @Failure      403  {object}  response.Response
// @Router       /authentication/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie("refresh_token")
	if token == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			token = body.RefreshToken
		}
	}
	if token == "" {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "missing refresh token"))
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		middleware.ClearTokenCookies(c)
		respondError(c, err)
		return
	}

	middleware.SetTokenCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pair))
}

// Logout revokes the refresh token and clears cookies
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /authentication/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie("refresh_token")
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "logged out"}))
}

// Me returns the authenticated user's profile
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ProfileResponse}
// @Router       /authentication/user [get]
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.authService.Me(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// UploadSignature stores the caller's PNG signature image
// @Summary      Upload signature
// @Description  Accepts a multipart PNG under the "signature" field; required before approving or countersigning
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        signature  formData  file  true  "PNG signature image"
// @Success      200        {object}  response.Response
// @Failure      400        {object}  response.Response
// @Router       /authentication/signature [post]
func (h *AuthHandler) UploadSignature(c *gin.Context) {
	file, err := c.FormFile("signature")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "signature file is required"))
		return
	}
	if file.Size > maxSignatureSize {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "signature image too large"))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "failed to read signature file"))
		return
	}
	defer src.Close()

	image, err := io.ReadAll(io.LimitReader(src, maxSignatureSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "failed to read signature file"))
		return
	}

	if err := h.authService.UploadSignature(c.Request.Context(), c.GetString(middleware.CtxUserID), image); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "signature uploaded"}))
}
