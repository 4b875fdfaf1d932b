package dtos

// ValidationErrorDetail describes one rejected field of a request. Param
// carries the rule argument when there is one (the max length, the allowed set).
type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Param   string `json:"param,omitempty"`
}
