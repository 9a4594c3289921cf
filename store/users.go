package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"presslog/common"
	"presslog/models"
)

var usernamePattern = regexp.MustCompile(`^[\w.+-]+$`)

var ErrInvalidLogin = common.NewValidationError("login", "Sorry, invalid login")

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, notFound(err, "user "+username)
	}
	return &user, nil
}

// Authenticate checks a password against the account whose username or email is
// login. Blocked accounts are refused.
func (s *Store) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, common.NewValidationError("login", "You must provide an email or username")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ? OR email = ?", login, login).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", login, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidLogin
	}
	if user.Block {
		return nil, common.NewValidationError("login", "This account has been blocked")
	}

	user.LastLogin = time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).UpdateColumn("last_login", user.LastLogin).Error; err != nil {
		return nil, fmt.Errorf("record login of user %d: %w", user.ID, err)
	}
	return &user, nil
}

func (s *Store) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	return string(hash), err
}

type SignupInput struct {
	Username      string
	Nickname      string
	Email         string
	Password      string
	PasswordAgain string
	Code          string
}

// userTaken reports field errors for a username or email already in use by an
// account other than exceptID.
func userTaken(tx *gorm.DB, ve *common.ValidationError, username, email string, exceptID uint) error {
	var n int64
	if username != "" {
		if err := tx.Model(&models.User{}).Where("LOWER(username) = LOWER(?) AND id <> ?", username, exceptID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			ve.Add("username", "This username is taken")
		}
	}
	if email != "" {
		if err := tx.Model(&models.User{}).Where("LOWER(email) = LOWER(?) AND id <> ?", email, exceptID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			ve.Add("email", "This email is taken")
		}
	}
	return nil
}

// Signup creates an account from a signup code. The code is consumed and its
// role becomes the role of the new user.
func (s *Store) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Email = strings.TrimSpace(in.Email)

	ve := &common.ValidationError{}
	check(ve, "username", in.Username, "required", "Username required")
	if in.Username != "" && !usernamePattern.MatchString(in.Username) {
		ve.Add("username", "You can only use letters, numbers or dashes")
	}
	check(ve, "nickname", in.Nickname, "required", "Nickname required")
	check(ve, "password", in.Password, "required", "Password required")
	if in.Password != in.PasswordAgain {
		ve.Add("password_again", "Passwords don't match")
	}
	check(ve, "email", in.Email, "required", "Email address required")
	check(ve, "email", in.Email, "email", "A valid email address is required")

	var user *models.User
	err := s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := userTaken(tx, ve, in.Username, in.Email, 0); err != nil {
			return fmt.Errorf("check signup: %w", err)
		}
		if !ve.Empty() {
			return ve
		}

		var code models.UserCode
		codeValue := strings.TrimSpace(in.Code)
		if codeValue == "" {
			return common.NewValidationError("code", "Code is not allowed")
		}
		err := tx.Where("code = ?", codeValue).Take(&code).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NewValidationError("code", "Code is not allowed")
		}
		if err != nil {
			return fmt.Errorf("find signup code: %w", err)
		}

		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		now := time.Now().UTC()
		user = &models.User{
			Username:     in.Username,
			Nickname:     in.Nickname,
			Email:        in.Email,
			PasswordHash: hash,
			Role:         code.Role,
			DateJoined:   now,
			LastLogin:    now,
		}
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// lost a race with another signup; report whichever field collided
				taken := &common.ValidationError{}
				if err := userTaken(tx, taken, in.Username, in.Email, 0); err != nil {
					return fmt.Errorf("check signup: %w", err)
				}
				if taken.Empty() {
					taken.Add("username", "This username is taken")
				}
				return taken
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := tx.Delete(&code).Error; err != nil {
			return fmt.Errorf("consume signup code: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

type ProfileInput struct {
	Nickname      string
	Email         string
	Password      string
	PasswordAgain string
}

// UpdateProfile changes nickname and email, and the password when one is given.
func (s *Store) UpdateProfile(ctx context.Context, user *models.User, in ProfileInput) error {
	in.Nickname = strings.TrimSpace(in.Nickname)
	in.Email = strings.TrimSpace(in.Email)

	ve := &common.ValidationError{}
	check(ve, "nickname", in.Nickname, "required", "Nickname required")
	check(ve, "email", in.Email, "required", "Email address required")
	check(ve, "email", in.Email, "email", "A valid email address is required")
	if in.Password != in.PasswordAgain {
		ve.Add("password_again", "Passwords don't match")
	}

	return s.Transaction(ctx, func(tx *gorm.DB) error {
		if err := userTaken(tx, ve, "", in.Email, user.ID); err != nil {
			return fmt.Errorf("check profile: %w", err)
		}
		if !ve.Empty() {
			return ve
		}

		updates := map[string]any{"nickname": in.Nickname, "email": in.Email}
		if in.Password != "" {
			hash, err := s.hashPassword(in.Password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			updates["password"] = hash
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return fmt.Errorf("update user %d: %w", user.ID, err)
		}
		user.Nickname = in.Nickname
		user.Email = in.Email
		if hash, ok := updates["password"].(string); ok {
			user.PasswordHash = hash
		}
		return nil
	})
}

// CreateCodes stores n signup codes for role and returns them.
func (s *Store) CreateCodes(ctx context.Context, role models.Role, n int) ([]string, error) {
	codes := make([]models.UserCode, n)
	out := make([]string, n)
	for i := range codes {
		code := strings.SplitN(uuid.NewString(), "-", 2)[0]
		codes[i] = models.UserCode{Code: code, Role: role}
		out[i] = code
	}
	if n == 0 {
		return out, nil
	}
	if err := s.db.WithContext(ctx).Create(&codes).Error; err != nil {
		return nil, fmt.Errorf("create signup codes: %w", err)
	}
	return out, nil
}

// TwitterToken returns the stored token of a user, or nil when the account is not
// connected.
func (s *Store) TwitterToken(ctx context.Context, userID uint) (*models.TwitterToken, error) {
	var tokens []models.TwitterToken
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("twitter token of user %d: %w", userID, err)
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return &tokens[0], nil
}

// SaveTwitterToken stores token, replacing any previous token of the same user.
func (s *Store) SaveTwitterToken(ctx context.Context, token *models.TwitterToken) error {
	db := s.db.WithContext(ctx)
	if token.ID != 0 {
		if err := db.Save(token).Error; err != nil {
			return fmt.Errorf("update twitter token of user %d: %w", token.UserID, err)
		}
		return nil
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expiry"}),
	}).Create(token).Error
	if err != nil {
		return fmt.Errorf("save twitter token of user %d: %w", token.UserID, err)
	}
	return nil
}
