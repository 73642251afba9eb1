// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはサーバー内部でのみ扱い、クライアントへは
// 必ずPublicUserに変換してから返すこと。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	DisplayName  string
	Registered   time.Time
}

// PublicUser はクライアントに返すユーザー表現。
// パスワードハッシュをフィールドとして持たないため、
// シリアライズしても漏洩しない（ad hocな削除に依存しない）。
type PublicUser struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Registered  time.Time `json:"registered"`
}

// Public はUserからパスワードハッシュを除いた公開表現を生成する。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Registered:  u.Registered,
	}
}
