package service

import (
	"context"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const (
	MsgInvalidLogin       = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	MsgWrongOldPassword   = "Your old password was entered incorrectly. Please enter it again."
	MsgDuplicateUsername  = "A user with that username already exists."
	passwordFieldSignup   = "password2"
	passwordFieldNewInput = "new_password2"
)

// SignupInput is the registration form.
type SignupInput struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// PasswordChangeInput is the password change form.
type PasswordChangeInput struct {
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost lowers hashing cost for tests and seeding.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// Signup registers a new account.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	formErr := newFormError()
	if err := collect(formErr, validation.Struct(in)); err != nil {
		return nil, err
	}
	if _, taken := formErr.Fields[passwordFieldSignup]; !taken && in.Password2 != "" {
		if err := validation.ValidatePassword(in.Password2, in.Username); err != nil {
			formErr.WithField(passwordFieldSignup, err.Error())
		}
	}
	if _, taken := formErr.Fields["username"]; !taken && in.Username != "" {
		if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
			formErr.WithField("username", MsgDuplicateUsername)
		} else if !models.IsNotFound(err) {
			return nil, err
		}
	}
	if len(formErr.Fields) > 0 {
		return nil, formErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password1), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials. Any mismatch is the same non-field error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	invalid := models.NewValidationError(MsgInvalidLogin).WithField(models.NonFieldErrors, MsgInvalidLogin)
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, invalid
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

// ChangePassword replaces the password of userID after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, in PasswordChangeInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	formErr := newFormError()
	if err := collect(formErr, validation.Struct(in)); err != nil {
		return err
	}
	if in.OldPassword != "" && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)) != nil {
		formErr.WithField("old_password", MsgWrongOldPassword)
	}
	if _, taken := formErr.Fields[passwordFieldNewInput]; !taken && in.NewPassword2 != "" {
		if err := validation.ValidatePassword(in.NewPassword2, user.Username); err != nil {
			formErr.WithField(passwordFieldNewInput, err.Error())
		}
	}
	if len(formErr.Fields) > 0 {
		return formErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword1), s.bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, string(hash))
}

// SetStaff toggles the staff flag of the user named username.
func (s *UserService) SetStaff(ctx context.Context, username string, staff bool) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetStaff(ctx, user.ID, staff); err != nil {
		return nil, err
	}
	user.IsStaff = staff
	return user, nil
}

// DeleteUser removes the user named username with everything they wrote.
func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, user.ID)
}
