package authController

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"studytrack/logger"
	"studytrack/middleware"
	"studytrack/models"
	"studytrack/repository"
	"studytrack/utils"
	authValidator "studytrack/validators/auth"
)

// Settings holds the token and hashing parameters.
type Settings struct {
	JWTSecret string
	JWTTTL    time.Duration
	SaltRound int
}

type Controller struct {
	users    *repository.UserRepository
	mailer   utils.Mailer
	settings Settings
	log      *logger.Logger
}

func New(users *repository.UserRepository, mailer utils.Mailer, settings Settings, log *logger.Logger) *Controller {
	if settings.SaltRound < bcrypt.MinCost {
		settings.SaltRound = bcrypt.DefaultCost
	}
	return &Controller{users: users, mailer: mailer, settings: settings, log: log}
}

func (ctl *Controller) Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}
	ctx := c.UserContext()

	// Check if email already exists
	if _, err := ctl.users.FindByEmail(ctx, reqData.Email); err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.ErrorResponse(c, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), ctl.settings.SaltRound)
	if err != nil {
		middleware.Logger(c).Error("hashing password failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password:  string(hashedPassword),
		Reminders: true,
	}
	if err := ctl.users.Create(ctx, &newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
		}
		middleware.Logger(c).Error("saving user failed", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	token, err := middleware.GenerateJWT(ctl.settings.JWTSecret, ctl.settings.JWTTTL, newUser.ID, newUser.Name, newUser.Email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	go func(email, name string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := utils.SendWelcomeEmail(ctx, ctl.mailer, email, name); err != nil {
			ctl.log.Warn("welcome email failed", "email", email, "error", err)
		}
	}(newUser.Email, newUser.Name)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", fiber.Map{
		"user":  newUser,
		"token": token,
	})
}

func (ctl *Controller) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
	}

	user, err := ctl.users.FindByEmail(c.UserContext(), reqData.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
		}
		return middleware.ErrorResponse(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	token, err := middleware.GenerateJWT(ctl.settings.JWTSecret, ctl.settings.JWTTTL, user.ID, user.Name, user.Email)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Me returns the signed-in account.
func (ctl *Controller) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Account fetched successfully.", user)
}

// UpdateSettings changes the daily digest opt-in and the timezone used for it.
func (ctl *Controller) UpdateSettings(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}
	reqData, ok := c.Locals("validatedSettings").(*authValidator.SettingsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Reminders != nil {
		user.Reminders = *reqData.Reminders
	}
	if reqData.Timezone != nil {
		user.Timezone = *reqData.Timezone
	}
	if err := ctl.users.UpdateSettings(c.UserContext(), user); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings updated successfully.", user)
}

// DeleteAccount soft-deletes the signed-in account. Its tokens stop working immediately.
func (ctl *Controller) DeleteAccount(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
	}
	if err := ctl.users.Delete(c.UserContext(), user.ID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	ctl.log.Info("account deleted", "userId", user.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Account deleted successfully.", nil)
}
