package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/janken/internal/model"
	"github.com/hitoshi/janken/internal/repository"
)

// sessionTokenBytes はセッショントークンの乱数長。
// 32バイトをhexエンコードして64文字のトークンになる。
const sessionTokenBytes = 32

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      PasswordHasher
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher PasswordHasher,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
	}
}

// Register は新規ユーザーを登録する。
// ユーザー名は大文字小文字を区別せずに重複チェックし、
// 表示名はユーザー名で初期化する。なお自動ログインは行わない。
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  username,
		Registered:   time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェックをすり抜けた同時登録はDB制約で検出される
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login はクレデンシャルを検証し、新しいセッションを発行する。
// ユーザー不在とパスワード不一致は同一のエラーを返し、区別できないようにする。
func (s *Service) Login(ctx context.Context, username, password string) (*model.Session, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("session_id", session.ID),
	)

	return session, user, nil
}

// Logout はセッションを破棄する。
// 対象行が既に存在しなくても成功として扱う。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return model.NewInvalidSessionError()
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// UpdateDisplayName は表示名を更新する。影響行数0はユーザー不在として扱う。
func (s *Service) UpdateDisplayName(ctx context.Context, userID int64, displayName string) error {
	count, err := s.userRepo.UpdateDisplayName(ctx, userID, displayName)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if count == 0 {
		return model.NewUserNotFoundError()
	}

	slog.Info("display name updated", slog.Int64("user_id", userID))
	return nil
}

// issueSession は新しいセッショントークンを生成して永続化する。
// 永続化に失敗した場合はリトライしない。再試行は新しいトークンの生成を
// 必要とし、発行済みトークンの扱いが曖昧になるため、ログイン失敗として扱う。
func (s *Service) issueSession(ctx context.Context, userID int64) (*model.Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionToken は暗号的に安全なセッショントークンを生成する。
func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
