package admin

import (
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/account"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// UserHandler is the superadmin user and admin management surface
type UserHandler struct {
	accounts *account.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(accounts *account.Service) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// CreateUserRequest represents a user created by a superadmin
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Role     string `json:"role" validate:"omitempty,oneof=USER STUDENT ADMIN SUPERADMIN"`
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER STUDENT ADMIN SUPERADMIN"`
}

func (h *UserHandler) list(c *fiber.Ctx, roles []string) error {
	page := query.Pagination(c)
	users, total, err := h.accounts.ListUsers(c.UserContext(), account.UserFilter{
		Roles:  roles,
		Search: c.Query("search"),
		Page:   page.Page,
		Limit:  page.Limit,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, users, page, total)
}

func (h *UserHandler) create(c *fiber.Ctx, defaultRole string) error {
	var req CreateUserRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}
	if req.Role == "" {
		req.Role = defaultRole
	}

	user, err := h.accounts.CreateUser(c.UserContext(), account.RegisterInput{
		Name:     validation.SanitizeString(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, user)
}

// ListUsers handles GET /super-admin/users?role=&search=
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	var roles []string
	if role := strings.ToUpper(c.Query("role")); role != "" {
		roles = []string{role}
	}
	return h.list(c, roles)
}

// CreateUser handles POST /super-admin/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	return h.create(c, model.RoleStudent)
}

// UpdateRole handles PATCH /super-admin/users/:id/role and PUT /super-admin/admins/:id
func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateRoleRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	user, err := h.accounts.UpdateRole(c.UserContext(), id, req.Role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user)
}

// DeleteUser handles DELETE /super-admin/users/:id and /super-admin/admins/:id.
// Admins are downgraded to STUDENT; everyone else is soft deleted.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.accounts.DeleteUser(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if user != nil && user.Role == model.RoleStudent {
		return response.SuccessWithMessage(c, "Admin downgraded to student", user)
	}
	return response.SuccessWithMessage(c, "User deleted successfully", nil)
}

// ListAdmins handles GET /super-admin/admins
func (h *UserHandler) ListAdmins(c *fiber.Ctx) error {
	return h.list(c, []string{model.RoleAdmin, model.RoleSuperAdmin})
}

// CreateAdmin handles POST /super-admin/admins
func (h *UserHandler) CreateAdmin(c *fiber.Ctx) error {
	return h.create(c, model.RoleAdmin)
}
