package user

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"threadmarket/domain"
	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"
	"threadmarket/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	UpdateRole(ctx context.Context, id uint, role string) error
	SetVerified(ctx context.Context, id uint, verified bool) error
	Delete(ctx context.Context, id uint) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

// TokenRepository contract interface
type TokenRepository interface {
	StoreToken(ctx context.Context, userID, role, token string, ttl time.Duration) error
	ValidateToken(ctx context.Context, token string) (string, error)
	DeleteToken(ctx context.Context, userID, token string) error
}

const (
	verificationCodeTTL      = 30
	SubjectRegisterAccount   = "Activate Your Account!"
	EmailBodyRegisterAccount = `Hello %v, activate your account by opening the link below</br></br>%v</br>note: the link is only valid for %v minutes`
)

type userService struct {
	userRepo                UserRepository
	validate                *validator.Validate
	notifRepo               NotificationRepository
	tokenRepo               TokenRepository
	appEmailVerificationKey string
	appDeploymentUrl        string
}

func NewUserService(
	userRepo UserRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	tokenRepo TokenRepository,
	appEmailVerificationKey string,
	appDeploymentUrl string,
) *userService {
	return &userService{
		userRepo:                userRepo,
		validate:                validate,
		notifRepo:               notifRepo,
		tokenRepo:               tokenRepo,
		appEmailVerificationKey: appEmailVerificationKey,
		appDeploymentUrl:        appDeploymentUrl,
	}
}

func (s *userService) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.User{}, apperror.Validation("invalid email format")
	}

	if err := s.validate.Var(password, "required,min=6"); err != nil {
		return domain.User{}, apperror.Validation("password must be at least 6 characters")
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		logger.Error("failed to hash password", err)
		return domain.User{}, apperror.Internal(err, "failed to hash password")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing.ID > 0 {
		if existing.Verified {
			return domain.User{}, apperror.Conflict("email already exists")
		}

		// Re-registering an unverified account resets its credentials and
		// resends the activation link.
		existing.Name = name
		if err := s.userRepo.UpdateProfile(ctx, &existing); err != nil {
			return domain.User{}, err
		}
		if err := s.userRepo.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
			return domain.User{}, err
		}
		if err := s.sendVerificationEmail(existing); err != nil {
			return domain.User{}, err
		}

		return existing, nil
	}
	if err != nil && apperror.KindOf(err) != apperror.KindNotFound {
		return domain.User{}, err
	}

	newUser := domain.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         domain.RoleUser,
		Verified:     false,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("failed to create user", err)
		return domain.User{}, err
	}

	if err := s.sendVerificationEmail(newUser); err != nil {
		return domain.User{}, err
	}

	logger.Info("user registered", "user_id", newUser.ID)

	return newUser, nil
}

func (s *userService) sendVerificationEmail(user domain.User) error {
	expAt := time.Now().Add(time.Minute * verificationCodeTTL).Unix()

	verificationCode := fmt.Sprintf("%v|%v", user.Email, expAt)
	verificationCodeEncrypt, err := goshortcute.AESCBCEncrypt([]byte(verificationCode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Error("failed to encrypt verification code", err)
		return apperror.Internal(err, "failed to build verification link")
	}

	strEncode := goshortcute.StringtoBase64Encode(verificationCodeEncrypt)
	activationLink := s.appDeploymentUrl + "/api/v1/users/email-verification/" + strEncode

	err = s.notifRepo.SendEmail(user.Name, user.Email, SubjectRegisterAccount,
		fmt.Sprintf(EmailBodyRegisterAccount, user.Name, activationLink, verificationCodeTTL))
	if err != nil {
		logger.Error("failed to send verification email", err)
		return apperror.Internal(err, "failed to send verification email")
	}

	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, verificationCodeEncrypt string) error {
	strDecode := goshortcute.StringtoBase64Decode(verificationCodeEncrypt)
	verificationCodeDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Warn("failed to decrypt verification code", err)
		return apperror.Validation("invalid or expired url")
	}

	parts := strings.Split(verificationCodeDecrypt, "|")
	if len(parts) != 2 {
		return apperror.Validation("invalid or expired url")
	}

	email := parts[0]
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return apperror.Validation("invalid or expired url")
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return apperror.Validation("invalid or expired url")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("verify email failed", err)
		return apperror.Validation("invalid or expired url")
	}

	if user.Verified {
		return nil
	}

	if err := s.userRepo.SetVerified(ctx, user.ID, true); err != nil {
		logger.Error("failed to mark user verified", err)
		return err
	}

	logger.Info("email verified", "user_id", user.ID)

	return nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return "", domain.User{}, apperror.Unauthorized("invalid email or password")
		}
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		return "", domain.User{}, apperror.Unauthorized("invalid email or password")
	}

	if !user.Verified {
		if err := s.sendVerificationEmail(user); err != nil {
			logger.Warn("failed to resend verification email", err)
		}
		return "", domain.User{}, apperror.Forbidden("email address has not been verified")
	}

	userIDStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIDStr, user.Role)
	if err != nil {
		logger.Error("failed to generate token", err)
		return "", domain.User{}, apperror.Internal(err, "failed to generate token")
	}

	if err := s.tokenRepo.StoreToken(ctx, userIDStr, user.Role, token, utils.TokenTTL()); err != nil {
		logger.Error("failed to store token", err)
		return "", domain.User{}, apperror.Internal(err, "failed to store token")
	}

	return token, user, nil
}

func (s *userService) Logout(ctx context.Context, userID uint, token string) error {
	userIDStr := strconv.FormatUint(uint64(userID), 10)

	if err := s.tokenRepo.DeleteToken(ctx, userIDStr, token); err != nil {
		logger.Error("failed to delete token", err)
		return apperror.Internal(err, "failed to logout")
	}

	return nil
}

// Refresh trades a still-valid token for a fresh one and invalidates the old.
func (s *userService) Refresh(ctx context.Context, oldToken string) (string, domain.User, error) {
	userIDStr, err := s.tokenRepo.ValidateToken(ctx, oldToken)
	if err != nil {
		return "", domain.User{}, apperror.Unauthorized("invalid or expired token")
	}

	userID, err := strconv.ParseUint(userIDStr, 10, 64)
	if err != nil {
		return "", domain.User{}, apperror.Unauthorized("invalid or expired token")
	}

	user, err := s.userRepo.FindByID(ctx, uint(userID))
	if err != nil {
		return "", domain.User{}, err
	}

	if err := s.tokenRepo.DeleteToken(ctx, userIDStr, oldToken); err != nil {
		logger.Warn("failed to delete old token", err)
	}

	token, err := utils.GenerateJWT(userIDStr, user.Role)
	if err != nil {
		logger.Error("failed to generate token", err)
		return "", domain.User{}, apperror.Internal(err, "failed to generate token")
	}

	if err := s.tokenRepo.StoreToken(ctx, userIDStr, user.Role, token, utils.TokenTTL()); err != nil {
		logger.Error("failed to store token", err)
		return "", domain.User{}, apperror.Internal(err, "failed to store token")
	}

	return token, user, nil
}

func (s *userService) Profile(ctx context.Context, userID uint) (domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, name, phone, address string) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	if name == "" && phone == "" && address == "" {
		return domain.User{}, apperror.Validation("no data to update")
	}

	if name != "" {
		user.Name = name
	}
	if phone != "" {
		user.Phone = phone
	}
	if address != "" {
		user.Address = address
	}

	if err := s.userRepo.UpdateProfile(ctx, &user); err != nil {
		logger.Error("failed to update profile", err)
		return domain.User{}, err
	}

	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if oldPassword == "" {
		return apperror.Validation("current password is required")
	}
	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return apperror.Validation("password must be at least 6 characters")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(oldPassword, user.PasswordHash) {
		return apperror.Unauthorized("current password is incorrect")
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("failed to hash password", err)
		return apperror.Internal(err, "failed to hash password")
	}

	return s.userRepo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, id uint, role string) (domain.User, error) {
	if !domain.ValidRoles[role] {
		return domain.User{}, apperror.Validation("invalid role")
	}

	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return domain.User{}, err
	}

	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		logger.Error("failed to update role", err)
		return domain.User{}, err
	}

	return s.userRepo.FindByID(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete user", err)
		return err
	}

	logger.Info("user deleted", "user_id", id)

	return nil
}
