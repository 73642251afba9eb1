package model

import "time"

// Session はユーザーのログインセッションを表す。
// Tokenはベアラークレデンシャルそのものであり、クライアントへ返すのは
// ログイン直後の1回のみ。それ以外ではPublicSessionに変換すること。
//
// サーバー側でのセッション期限切れ判定は行わない設計のため、
// 有効期限カラムは持たない。CookieのExpiresはクライアントへのヒントに過ぎず、
// トークンは明示的なログアウトまで有効であり続ける。
type Session struct {
	ID        string
	Token     string
	UserID    int64
	CreatedAt time.Time
}

// PublicSession はクライアントに返すセッション表現。トークンを含まない。
type PublicSession struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public はSessionからトークンを除いた公開表現を生成する。
func (s *Session) Public() PublicSession {
	return PublicSession{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
	}
}
