package contract

// Response is the closed result union of one orchestration cycle:
// *Success, *RoutingError or *DomainError.
type Response interface {
	isResponse()
}

type Success struct {
	Response    string      `json:"response"`
	Preferences Preferences `json:"preferences,omitempty"`
	Sensitive   bool        `json:"sensitive,omitempty"`
}

// RoutingError is returned when a query cannot be routed to any agent.
type RoutingError struct {
	Message    string    `json:"error"`
	Suggestion string    `json:"suggestion"`
	Code       ErrorKind `json:"code,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

type DomainError struct {
	Message string    `json:"error"`
	Code    ErrorKind `json:"code,omitempty"`
}

func (*Success) isResponse()      {}
func (*RoutingError) isResponse() {}
func (*DomainError) isResponse()  {}

func NewDomainError(code ErrorKind, message string) *DomainError {
	return &DomainError{Message: message, Code: code}
}

// ErrorMessage returns the error text of a failed Response, or "" for a Success.
func ErrorMessage(resp Response) string {
	switch r := resp.(type) {
	case *RoutingError:
		return r.Message
	case *DomainError:
		return r.Message
	default:
		return ""
	}
}
