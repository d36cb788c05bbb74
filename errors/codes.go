package errors

// ErrorCode identifies an AppError category in API responses
type ErrorCode int

const (
	ErrorCode_HTTP_OK          ErrorCode = 200
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1003

	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2001

	ErrorCode_MEETING_NOT_FOUND    ErrorCode = 3001
	ErrorCode_MEETING_EMPTY_UPLOAD ErrorCode = 3002

	ErrorCode_PIPELINE_RUN_IN_PROGRESS ErrorCode = 4001
	ErrorCode_PIPELINE_QUEUE_FULL      ErrorCode = 4002
	ErrorCode_PIPELINE_FAILED          ErrorCode = 4003

	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 5001
	ErrorCode_INTEGRATION_SEARCH_FAILED       ErrorCode = 5002
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 5003

	ErrorCode_DB_QUERY_FAILED ErrorCode = 6001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                         "HTTP_OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_MEETING_EMPTY_UPLOAD:            "MEETING_EMPTY_UPLOAD",
	ErrorCode_PIPELINE_RUN_IN_PROGRESS:        "PIPELINE_RUN_IN_PROGRESS",
	ErrorCode_PIPELINE_QUEUE_FULL:             "PIPELINE_QUEUE_FULL",
	ErrorCode_PIPELINE_FAILED:                 "PIPELINE_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_SEARCH_FAILED:       "INTEGRATION_SEARCH_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
