package service

import (
	"context"
	"errors"
	"time"

	"vetpos/internal/config"
	"vetpos/internal/dto"
	"vetpos/internal/model"
	"vetpos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	repo repository.EmployeeRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.EmployeeRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	emp, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return s.issueTokens(emp)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	staffIDStr, ok := claims["staff_id"].(string)
	if !ok {
		return nil, errors.New("malformed token")
	}
	sid, err := uuid.Parse(staffIDStr)
	if err != nil {
		return nil, errors.New("malformed token")
	}

	emp, err := s.repo.FindByID(ctx, sid)
	if err != nil || !emp.Active {
		return nil, errors.New("employee not found or inactive")
	}

	return s.issueTokens(emp)
}

func (s *authService) issueTokens(emp *model.Employee) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(emp, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(emp, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	var branchID *string
	if emp.BranchID != nil {
		b := emp.BranchID.String()
		branchID = &b
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Employee: dto.EmployeeResponse{
			ID:       emp.ID.String(),
			Username: emp.Username,
			Name:     emp.Name,
			Role:     emp.Role,
			BranchID: branchID,
		},
	}, nil
}

func (s *authService) generateToken(emp *model.Employee, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"staff_id": emp.ID.String(),
		"username": emp.Username,
		"role":     emp.Role,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	if emp.BranchID != nil {
		claims["branch_id"] = emp.BranchID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
