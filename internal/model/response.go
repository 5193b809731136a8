package model

// APIResponse - 모든 라우트와 클라이언트 호출이 사용하는 공통 응답 envelope
//
// success=true 이면 data가 채워져 있고, success=false 이면 error에 사람이 읽을 수 있는 메시지가 들어간다.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failure - success=false envelope 생성
func Failure[T any](msg string) APIResponse[T] {
	return APIResponse[T]{Success: false, Error: msg}
}

// ErrorResponse - 핸들러 에러 응답 (swag 문서용)
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
