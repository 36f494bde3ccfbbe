package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	//400 入力不正
	ErrInvalidInput = errors.New("invalid input")
	//400 金額不正
	ErrInvalidAmount = errors.New("invalid amount")
	//400 署名不一致
	ErrInvalidSignature = errors.New("invalid signature")
	//500 署名の計算そのものが失敗（設定不備など）
	ErrVerification = errors.New("verification error")
	//401 認証なし
	ErrUnauthorized = errors.New("unauthorized")
	//403 権限なし
	ErrForbidden = errors.New("forbidden")
	//404
	ErrNotFound = errors.New("not found")
	//409 楽観ロック失敗
	ErrConflict = errors.New("conflict")
	//500 書き込み失敗（コミットされていない）
	ErrPersistence = errors.New("persistence error")
	//503 設定不足
	ErrConfiguration = errors.New("configuration error")
)

// Error はusecaseが返す型付きエラー。
// Messageはクライアントに返してよい文言、Errはログ用の原因。
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NewError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// GatewayError は決済ゲートウェイが返したエラー。
// 4xxはそのまま、それ以外は400にまとめる（上流のステータスを漏らさない）。
type GatewayError struct {
	HTTPStatus  int
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.HTTPStatus, e.Description)
}

func NewGatewayError(upstreamStatus int, description string) *GatewayError {
	status := upstreamStatus
	if status < 400 || status > 499 {
		status = http.StatusBadRequest
	}
	if description == "" {
		description = "payment gateway error"
	}
	return &GatewayError{HTTPStatus: status, Description: description}
}

func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	ok := errors.As(err, &ge)
	return ge, ok
}

// StatusCode はエラーをHTTPステータスに対応させる。
func StatusCode(err error) int {
	if ge, ok := AsGatewayError(err); ok {
		return ge.HTTPStatus
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
