package portalauth

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// Role is the user's role
type Role = string

const (
	// RoleStudent can apply to jobs and internships
	RoleStudent Role = "STUDENT"
	// RoleCorporate can post jobs and manage hiring
	RoleCorporate Role = "CORPORATE"
	// RoleUniversity manages placement-office activity
	RoleUniversity Role = "UNIVERSITY"
	// RoleMentor mentors students, requires approval
	RoleMentor Role = "MENTOR"
	// RoleAdmin has full system access
	RoleAdmin Role = "ADMIN"
)

// AccountStatus is the lifecycle stage of an account, independent of role.
type AccountStatus = string

const (
	StatusPendingEmailVerification AccountStatus = "PENDING_EMAIL_VERIFICATION"
	StatusPendingApproval          AccountStatus = "PENDING_APPROVAL"
	StatusActive                   AccountStatus = "ACTIVE"
	StatusSuspended                AccountStatus = "SUSPENDED"
	StatusDeleted                  AccountStatus = "DELETED"
)

// User is the authenticated principal as reported by the identity service.
// Immutable on the client except via a full replace from /auth/me.
type User struct {
	ID            string        `json:"id"`
	FullName      string        `json:"fullName"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	Status        AccountStatus `json:"status"`
	EmailVerified bool          `json:"emailVerified"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// UUID parses the user's ID, for callers that key local records by UUID.
func (u *User) UUID() (uuid.UUID, error) {
	return uuid.Parse(u.ID)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// SignupRequest payload
type SignupRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            Role   `json:"role"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.FullName,
			validation.Required,
			validation.Length(2, 120),
		),
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 0),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(matches(r.Password, "passwords do not match")),
		),
		validation.Field(
			&r.Role,
			validation.Required,
			validation.In(RoleStudent, RoleCorporate, RoleUniversity, RoleMentor, RoleAdmin),
		),
	)
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Token,
			validation.Required,
		),
		validation.Field(
			&r.NewPassword,
			validation.Required,
			validation.Length(8, 0),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(matches(r.NewPassword, "passwords do not match")),
		),
	)
}

func matches(other, msg string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != other {
			return errors.New(msg)
		}
		return nil
	}
}

// AuthResult is the data payload returned by login and signup. RefreshToken
// is not part of the documented contract; some deployments of the identity
// service issue it alongside the access token, so it is decoded when present
// and left empty otherwise. An empty refresh token simply means the session
// cannot refresh.
type AuthResult struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// TokenResult is the data payload returned by the refresh endpoint.
type TokenResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}
