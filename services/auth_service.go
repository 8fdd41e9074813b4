package services

import (
	"errors"
	"log"

	"memory-match-system/models"
	"memory-match-system/session"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB       *gorm.DB
	Sessions *session.Manager
}

func NewAuthService(db *gorm.DB, sessions *session.Manager) *AuthService {
	return &AuthService{DB: db, Sessions: sessions}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account and opens a session for it.
func (s *AuthService) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required."})
	}

	user, err := s.registerUser(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": ErrUsernameTaken.Error()})
		}
		log.Printf("[Auth] registration failed for %q: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error during registration."})
	}

	sess, err := s.Sessions.Issue(c.Context(), user.ID, user.Username)
	if err != nil {
		log.Printf("[Auth] session issue failed for %q: %v", user.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error during registration."})
	}

	log.Printf("✅ [Auth] registered user %q (id=%d)", user.Username, user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"userId":   user.ID,
		"username": user.Username,
		"token":    sess.Token,
	})
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required."})
	}

	user, err := s.authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// One message for unknown user and wrong password alike.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrInvalidCredentials.Error()})
		}
		log.Printf("[Auth] login failed for %q: %v", req.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error during login."})
	}

	sess, err := s.Sessions.Issue(c.Context(), user.ID, user.Username)
	if err != nil {
		log.Printf("[Auth] session issue failed for %q: %v", user.Username, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server error during login."})
	}

	return c.JSON(fiber.Map{
		"userId":   user.ID,
		"username": user.Username,
		"token":    sess.Token,
	})
}

// Logout revokes the presented session token.
func (s *AuthService) Logout(c *fiber.Ctx) error {
	token := c.Get(session.HeaderName)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing session token."})
	}
	if err := s.Sessions.Revoke(c.Context(), token); err != nil {
		log.Printf("[Auth] logout revoke failed: %v", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// registerUser hashes the password and inserts the credential row. The
// pre-check keeps the common duplicate case off the error path, but two
// concurrent registrations can both pass it; the unique index decides then.
func (s *AuthService) registerUser(username, password string) (*models.User, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := s.DB.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
