// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/janken/internal/model"
)

// apiResponse はAPIレスポンスの統一フォーマット。
// userフィールドはログインレスポンスのみが使用する
// （既存クライアントがdataの外側のuserを参照する契約のため残している）。
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	User    any    `json:"user,omitempty"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一フォーマットでHTTPエラーレスポンスを書き込む。
// クライアントに返すのはメッセージのみで、内部詳細は含めない。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiResponse{
		Success: false,
		Message: apiErr.Message,
	})
}

// writeInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func writeInternalServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, apiResponse{
		Success: false,
		Message: "Internal Server Error",
	})
}

// mapAPIErrorToHTTPStatus はAPIエラーコードをHTTPステータスコードに対応付ける。
// 認証失敗は401、バリデーション系と更新対象不在は400、それ以外は500。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeMissingCredentials,
		model.ErrCodeUsernameTaken,
		model.ErrCodeInvalidSession,
		model.ErrCodeUserNotFound:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError はサービス層のエラーをHTTPレスポンスに変換する。
// APIError以外のエラー（ストア障害等）はログに記録して500とする。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.Error("internal server error", slog.String("error", err.Error()))
	writeInternalServerError(w)
}
