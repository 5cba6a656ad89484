package user

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/kymoh/moviematrix/core"
)

type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     null.String `json:"last_name,omitempty"`
	Age          null.Int    `json:"age,omitempty"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
	LastLogin    time.Time   `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) FullName() string {
	if u.LastName.Valid {
		return strings.TrimSpace(u.FirstName + " " + u.LastName.String)
	}
	return u.FirstName
}

// NewUser contains the registration form data needed to create a new User.
type NewUser struct {
	Username        string `form:"username" validate:"required,min=3,max=30,alphanum_"`
	Email           string `form:"email" validate:"required,email"`
	FirstName       string `form:"first_name" validate:"required,name"`
	LastName        string `form:"last_name" validate:"omitempty,name"`
	Age             string `form:"age"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Age = core.CleanString(nu.Age)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Username, nu.Email)
}

// AgeValue parses the optional form age; anything non-numeric is treated as unset.
func (nu *NewUser) AgeValue() null.Int {
	return parseAge(nu.Age)
}

// UpdateUser defines what account information may be modified.
// Blank fields keep the original values.
type UpdateUser struct {
	Username  string `form:"username" validate:"required,min=3,max=30,alphanum_"`
	Email     string `form:"email" validate:"required,email"`
	FirstName string `form:"first_name" validate:"required,name"`
	LastName  string `form:"last_name" validate:"omitempty,name"`
	Age       string `form:"age"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	uu.Username = core.CleanString(uu.Username, true /* lower */)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.FirstName = core.CleanString(uu.FirstName)
	uu.LastName = core.CleanString(uu.LastName)
	uu.Age = core.CleanString(uu.Age)

	if uu.Username == "" {
		uu.Username = origUsr.Username
	}
	if uu.Email == "" {
		uu.Email = origUsr.Email
	}
	if uu.FirstName == "" {
		uu.FirstName = origUsr.FirstName
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, uu.Username, uu.Email, origUsr)
}

func (uu *UpdateUser) AgeValue() null.Int {
	return parseAge(uu.Age)
}

// ChangePassword carries the change-password form data. The unexported
// attributes feed the password similarity check; SetUserAttrs fills them.
type ChangePassword struct {
	Current    string `form:"current_password" validate:"required"`
	New        string `form:"new_password" validate:"required,nefield=Current"`
	NewConfirm string `form:"confirm_password" validate:"required,eqfield=New"`

	username  string
	email     string
	firstName string
}

func (cp *ChangePassword) SetUserAttrs(usr User) {
	cp.username = usr.Username
	cp.email = usr.Email
	cp.firstName = usr.FullName()
}

func (cp *ChangePassword) Validate(validate *validator.Validate) error {
	return validate.Struct(cp)
}

// PasswordResetRequest carries the email a reset link should be sent to.
type PasswordResetRequest struct {
	Email string `form:"email" validate:"required,email"`
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}

// ResetUserPassword carries the reset-confirmation form data.
type ResetUserPassword struct {
	Token           string `form:"token" validate:"required"`
	UID             string `form:"uid" validate:"required"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

func parseAge(raw string) null.Int {
	age, err := strconv.Atoi(raw)
	if err != nil || age < 0 {
		return null.Int{}
	}
	return null.IntFrom(age)
}
