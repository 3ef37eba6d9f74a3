package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"
)

// UserHandler serves the user directory.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type registerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email" validate:"required,email"`
	PhotoURL    string `json:"photoURL"`
	Birthdate   string `json:"birthdate"`
	Role        string `json:"role"`
	HRCode      string `json:"hrCode"`
	CompanyName string `json:"companyName"`
	CompanyLogo string `json:"companyLogo"`
}

type updateProfileRequest struct {
	Name        *string `json:"name"`
	PhotoURL    *string `json:"photoURL"`
	Birthdate   *string `json:"birthdate"`
	CompanyName *string `json:"companyName"`
	CompanyLogo *string `json:"companyLogo"`
}

type roleResponse struct {
	Role domain.Role `json:"role"`
}

// Register handles POST /users.
//
// The role is decided server-side: "hr" is granted only with a valid
// hrCode. An already registered email answers 200 with a message.
//
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration profile"
// @Success      201   {object}  domain.User
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Profile: domain.Profile{
			Name:        req.Name,
			Email:       req.Email,
			PhotoURL:    req.PhotoURL,
			Birthdate:   req.Birthdate,
			CompanyName: req.CompanyName,
			CompanyLogo: req.CompanyLogo,
		},
		RequestedRole: req.Role,
		HRCode:        req.HRCode,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return c.JSON(http.StatusOK, messageResponse{Message: "User already exists"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Param        search  query     string  false  "Case-insensitive name match"
// @Success      200     {object}  userPageResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListUsers(c.Request().Context(), ports.UserListFilter{
		Search:      q.Search,
		PageRequest: q.pageRequest(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userPageResponse{
		Users:      page.Items,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// GetByEmail handles GET /users/:email.
//
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "Email address"
// @Success      200    {object}  domain.User
// @Failure      404    {object}  errorResponse
// @Router       /users/{email} [get]
func (h *UserHandler) GetByEmail(c echo.Context) error {
	user, err := h.service.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetRole handles GET /users/:email/role.
//
// @Summary      Get a user's role
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "Email address"
// @Success      200    {object}  roleResponse
// @Failure      404    {object}  errorResponse
// @Router       /users/{email}/role [get]
func (h *UserHandler) GetRole(c echo.Context) error {
	role, err := h.service.GetRole(c.Request().Context(), c.Param("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{Role: role})
}

// GetByID handles GET /users/id/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/id/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /users/:id. Email and role cannot be changed.
//
// @Summary      Update a user profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "User id"
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}

	changed, err := h.service.UpdateProfile(c.Request().Context(), c.Param("id"), ports.ProfileUpdate{
		Name:        req.Name,
		PhotoURL:    req.PhotoURL,
		Birthdate:   req.Birthdate,
		CompanyName: req.CompanyName,
		CompanyLogo: req.CompanyLogo,
	})
	if err != nil {
		return err
	}
	if !changed {
		return c.JSON(http.StatusOK, successResponse{Success: false, Message: "No changes made"})
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "Employee updated successfully"})
}
