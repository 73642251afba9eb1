// Package auth はパスワード認証とセッション管理のビジネスロジックを提供する。
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost はパスワードハッシュのワークファクター。
// 既存クライアントが登録済みのハッシュと互換性を保つため固定値とする。
const bcryptCost = 10

// PasswordHasher はパスワードのハッシュ化と検証のインターフェース。
type PasswordHasher interface {
	// Hash は平文パスワードからソルト付きハッシュを生成する。
	Hash(password string) (string, error)

	// Verify は平文パスワードが格納済みハッシュと一致するかを検証する。
	Verify(password, hash string) bool
}

// BcryptHasher はbcryptによるPasswordHasherの実装。
type BcryptHasher struct{}

// NewBcryptHasher はBcryptHasherを生成する。
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{}
}

// Hash は平文パスワードからbcryptハッシュを生成する。
// ソルトは呼び出しごとに自動生成されるため、同じ入力でも出力は毎回異なる。
func (h *BcryptHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文パスワードがハッシュと一致するかを検証する。
// 比較はbcrypt自身の検証ルーチンに委ねる。
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
