package handler

import (
	"time"

	"github.com/vermahardware/storefront/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signupRequest struct {
	Username string `json:"username" validate:"required,notblank,min=3"`
	Password string `json:"password" validate:"required,min=4"`
	Name     string `json:"name"`
	Email    string `json:"email"    validate:"omitempty,email"`
}

type loginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier" validate:"required,notblank"`
	Password   string `json:"password"   validate:"required"`
}

type sessionResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *domain.User `json:"user"`
}

// --- Products ---

type createProductRequest struct {
	Name          string `json:"name"            validate:"required,notblank"`
	Price         int64  `json:"price"           validate:"min=0"`
	Description   string `json:"description"`
	Category      string `json:"category"        validate:"required,notblank"`
	ImageURL      string `json:"image_url"       validate:"omitempty,url"`
	ImagePublicID string `json:"image_public_id"`
}

type updateProductRequest struct {
	Name          *string `json:"name"            validate:"omitempty,notblank"`
	Price         *int64  `json:"price"           validate:"omitempty,min=0"`
	Description   *string `json:"description"`
	Category      *string `json:"category"        validate:"omitempty,notblank"`
	ImageURL      *string `json:"image_url"       validate:"omitempty,url"`
	ImagePublicID *string `json:"image_public_id"`
}

func (r updateProductRequest) patch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:          r.Name,
		Price:         r.Price,
		Description:   r.Description,
		Category:      r.Category,
		ImageURL:      r.ImageURL,
		ImagePublicID: r.ImagePublicID,
	}
}

type productListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// --- Contacts ---

type contactRequest struct {
	Name    string `json:"name"    validate:"required,notblank"`
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"required,notblank"`
}

type contactListResponse struct {
	Contacts []domain.Contact `json:"contacts"`
	Total    int              `json:"total"`
}

// --- Users ---

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin superadmin"`
}

type userListResponse struct {
	Users []domain.User `json:"users"`
	Total int           `json:"total"`
}

// --- Dashboards ---

type dashboardResponse struct {
	Dashboard string       `json:"dashboard"`
	User      *domain.User `json:"user"`
	// Links lists the API operations the user may reach from this dashboard.
	Links map[string]string `json:"_links"`
}
