// Package auth реализует бизнес-логику аутентификации: проверку пароля
// и выдачу JWT токена с идентификатором пользователя и ролью.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/classifieds-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/password"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
	"github.com/magabrotheeeer/classifieds-backend/internal/moderation"
	"github.com/magabrotheeeer/classifieds-backend/internal/storage/repository"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
// Несуществующий пользователь даёт ту же ошибку, чтобы по ответу нельзя
// было перебирать логины.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountSuspended возвращается для заблокированных учётных записей.
var ErrAccountSuspended = errors.New("account is suspended")

// UserRepository определяет методы чтения пользователей.
type UserRepository interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

// Service реализует вход в систему.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет пароль и возвращает JWT токен и роль пользователя.
// Идентификатором может быть email, username или телефон.
func (s *Service) Login(ctx context.Context, identifier, rawPassword string) (token, role string, err error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if user.ApprovalStatus == string(moderation.StatusSuspended) {
		return "", "", fmt.Errorf("%s: %w", op, ErrAccountSuspended)
	}

	token, err = s.jwtMaker.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}
