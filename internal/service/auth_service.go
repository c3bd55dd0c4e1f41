package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"osa-dashboard/internal/charting"
	"osa-dashboard/internal/repository"
	"osa-dashboard/pkg/jwt"
	"osa-dashboard/pkg/osaapi"
	"osa-dashboard/pkg/validator"
)

const (
	tokenTTL           = 12 * time.Hour
	loginFailedMessage = "Error al iniciar sesión"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Logout(sessionID uuid.UUID) error
	Heartbeat(sessionID uuid.UUID) error
	ValidateToken(tokenString string) (*Session, error)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DashboardFactory builds the dashboard owned by a new session.
type DashboardFactory func(sessionID uuid.UUID) *Dashboard

type authService struct {
	authRepo     repository.AuthRepository
	sessions     *SessionStore
	newDashboard DashboardFactory
	pub          charting.Publisher
	log          *zap.Logger
}

func NewAuthService(authRepo repository.AuthRepository, sessions *SessionStore, newDashboard DashboardFactory, pub charting.Publisher, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		authRepo:     authRepo,
		sessions:     sessions,
		newDashboard: newDashboard,
		pub:          pub,
		log:          log,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	req := LoginRequest{Username: strings.TrimSpace(username), Password: password}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	res, err := s.authRepo.Login(ctx, req.Username, req.Password)
	if err != nil {
		var se *osaapi.StatusError
		if errors.As(err, &se) {
			s.log.Info("login rejected upstream", zap.String("username", req.Username), zap.Int("status", se.Status))
			return nil, wrapUpstream(ErrAuthentication, err)
		}
		s.log.Warn("login request failed", zap.Error(err))
		return nil, wrapUpstream(ErrFetch, errors.New(loginFailedMessage))
	}

	sess := s.sessions.Create(res.User.Username, res.Token, s.newDashboard)

	token, err := jwt.GenerateToken(sess.ID, sess.Username, tokenTTL)
	if err != nil {
		s.sessions.Remove(sess.ID)
		return nil, errors.New("failed to generate token")
	}

	s.log.Info("session opened", zap.String("session_id", sess.ID.String()), zap.String("username", sess.Username))
	return &LoginResponse{
		Token:     token,
		SessionID: sess.ID.String(),
		Username:  sess.Username,
		ExpiresAt: sess.CreatedAt.Add(tokenTTL),
	}, nil
}

func (s *authService) Logout(sessionID uuid.UUID) error {
	if !s.sessions.Remove(sessionID) {
		return ErrSessionNotFound
	}
	s.log.Info("session closed", zap.String("session_id", sessionID.String()))
	return nil
}

func (s *authService) Heartbeat(sessionID uuid.UUID) error {
	if err := s.sessions.Touch(sessionID); err != nil {
		return err
	}
	if s.pub == nil {
		return nil
	}

	payload := map[string]interface{}{
		"event":        "heartbeat",
		"session_id":   sessionID.String(),
		"last_seen_at": time.Now(),
	}
	msg, _ := json.Marshal(payload)
	s.pub.Publish(sessionID.String(), msg)
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*Session, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(claims.SessionID)
}
