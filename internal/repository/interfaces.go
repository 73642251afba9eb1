// Package repository はデータストアへのアクセスを抽象化する。
package repository

import (
	"context"

	"github.com/hitoshi/janken/internal/model"
)

// UserRepository はユーザー（クレデンシャル）ストアのインターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername はユーザー名の大文字小文字を区別せずにユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成し、生成されたIDをuser.IDに設定する。
	// ユーザー名が（大文字小文字を区別せずに）重複している場合は
	// ErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateDisplayName は表示名を更新し、影響行数を返す。
	// 0はユーザー不在を意味する。
	UpdateDisplayName(ctx context.Context, id int64, displayName string) (int64, error)
}

// SessionRepository はセッションストアのインターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken は指定トークンのセッションを取得する。
	// 見つからない場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	// 対象が存在しなくてもエラーにはしない。
	DeleteByID(ctx context.Context, id string) error
}
