package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/janken/internal/model"
)

// ErrDuplicateUsername はユーザー名の一意制約違反を表す。
// サービス層が事前に重複チェックを行うため通常は発生しないが、
// 同時登録に対する最終防衛としてDB制約違反をこのエラーに変換する。
var ErrDuplicateUsername = errors.New("username already exists")

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, display_name, registered
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName, &user.Registered)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByUsername はユーザー名の大文字小文字を区別せずにユーザーを検索する。
// 格納値と入力値の双方をlower()で比較する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, display_name, registered
		 FROM users WHERE lower(username) = lower($1)`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName, &user.Registered)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成し、生成されたIDをuser.IDに設定する。
// lower(username)の一意インデックス違反はErrDuplicateUsernameに変換する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, display_name, registered)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		user.Username, user.PasswordHash, user.DisplayName, user.Registered,
	).Scan(&user.ID)

	if err != nil {
		return mapUserCreateError(err)
	}

	return nil
}

// mapUserCreateError はINSERT失敗時のエラーを分類する。
// 一意制約違反のみErrDuplicateUsernameに変換し、それ以外はラップして返す。
func mapUserCreateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicateUsername
	}
	return fmt.Errorf("failed to create user: %w", err)
}

// UpdateDisplayName は表示名を更新し、影響行数を返す。0はユーザー不在を意味する。
func (r *PostgresUserRepo) UpdateDisplayName(ctx context.Context, id int64, displayName string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = $1 WHERE id = $2`,
		displayName, id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update display name: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
