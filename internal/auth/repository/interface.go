package repository

import authdomain "billmailer/internal/auth/domain"

type UserRepository interface {
	Create(user *authdomain.User) error
	Update(user *authdomain.User) error
	FindByEmail(email string) (*authdomain.User, error)
	FindByID(id string) (*authdomain.User, error)
	CountUsers() (int64, error)

	SaveRefreshToken(token *authdomain.RefreshToken) error
	FindRefreshToken(token string) (*authdomain.RefreshToken, error)
	DeleteRefreshToken(token string) error
	ReplaceRefreshToken(token *authdomain.RefreshToken) error
}
