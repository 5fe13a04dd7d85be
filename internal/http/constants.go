package http

const (
	SessionHeader = "X-Cinder-Session"

	HTTPErrorInvalidJSONText = "invalid JSON"
	HTTPErrorForbiddenText   = "forbidden"
	HTTPErrorUnauthorized    = "unauthorized"
	HTTPErrorForbiddenHost   = "forbidden host"
)

const (
	JSONKeyOK     = "ok"
	JSONKeyData   = "data"
	JSONKeyError  = "error"
	JSONKeyCode   = "code"
	JSONKeyHeader = "header"
	JSONKeyToken  = "token"
)

const (
	burnRecordScopeUser  = "user"
	burnRecordScopeAll   = "all"
	burnRecordScopeAsset = "asset"
)
