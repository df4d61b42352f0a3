package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/helper"
	"cinema_booking/model"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type AuthService struct {
	users    UserStore
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
}

func NewAuthService(users UserStore, secret []byte, log *zap.Logger) *AuthService {
	return &AuthService{users: users, secret: secret, tokenTTL: 72 * time.Hour, log: log}
}

func (s *AuthService) Register(ctx context.Context, in model.RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.KindInvalidInput, constants.EMAIL_EXISTS)
	} else if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	hash, err := helper.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, constants.CAN_NOT_HASH_PASSWORD)
	}
	user := &model.User{
		Email:    email,
		Password: hash,
		FullName: in.FullName,
		Role:     constants.ROLE_USER,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Uint("userId", user.ID))
	return user, nil
}

// Login checks the credentials and issues an access token. Unknown email and
// wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, in model.LoginInput) (*model.TokenData, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return nil, apperror.New(apperror.KindUnauthorized, constants.INVALID_PASSWORD)
		}
		return nil, err
	}
	if !helper.CheckPasswordHash(in.Password, user.Password) {
		return nil, apperror.New(apperror.KindUnauthorized, constants.INVALID_PASSWORD)
	}

	token, err := helper.GenerateAccessToken(model.TokenClaim{
		UserId: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, s.secret, s.tokenTTL)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, err, "sign access token")
	}
	return &model.TokenData{AccessToken: token}, nil
}
