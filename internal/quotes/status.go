package quotes

// Status is the outcome of the most recent refresh.
type Status int

const (
	StatusOK Status = iota
	StatusNoWiFi
	StatusInitRequestFailed
	StatusConnectionFailed
	StatusSendHeaderFailed
	StatusSendPayloadFailed
	StatusBadJSONResponse
	StatusBadRequest
	StatusForbidden
	StatusTooManyRequests
	StatusInternalServerError
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNoWiFi:
		return "NO_WIFI"
	case StatusInitRequestFailed:
		return "INIT_REQUEST_FAILED"
	case StatusConnectionFailed:
		return "CONNECTION_FAILED"
	case StatusSendHeaderFailed:
		return "SEND_HEADER_FAILED"
	case StatusSendPayloadFailed:
		return "SEND_PAYLOAD_FAILED"
	case StatusBadJSONResponse:
		return "BAD_JSON_RESPONSE"
	case StatusBadRequest:
		return "BAD_REQUEST"
	case StatusForbidden:
		return "FORBIDDEN"
	case StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	case StatusInternalServerError:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// statusFromHTTP maps a non-200 response code.
func statusFromHTTP(code int) Status {
	switch code {
	case 400:
		return StatusBadRequest
	case 403:
		return StatusForbidden
	case 429:
		return StatusTooManyRequests
	case 500:
		return StatusInternalServerError
	default:
		return StatusUnknown
	}
}
