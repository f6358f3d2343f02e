package dto

// Response is the envelope every endpoint returns: exactly one of Data
// or Error is populated, with optional pagination Meta alongside Data.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries the transport error code plus a human message.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes a single field validation failure
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta carries pagination counts for list responses.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse wraps data in a success envelope.
func NewSuccessResponse(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps one page of data with its pagination
// counts, rounding TotalPages up.
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: pages,
		},
	}
}

func errorEnvelope(info ErrorInfo) Response {
	return Response{Success: false, Error: &info}
}

// NewErrorResponse builds an error envelope without request attribution.
func NewErrorResponse(code, message string) Response {
	return errorEnvelope(ErrorInfo{Code: code, Message: message})
}

// NewErrorResponseWithRequestID builds an error envelope that echoes the
// request id so clients can quote it in support tickets.
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return errorEnvelope(ErrorInfo{Code: code, Message: message, RequestID: requestID})
}

// NewValidationErrorResponse builds an ERR_VALIDATION envelope with
// per-field details.
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return errorEnvelope(ErrorInfo{
		Code:      ErrCodeValidation,
		Message:   message,
		RequestID: requestID,
		Details:   details,
	})
}

// ListRequest binds the shared list query parameters.
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
}

// DefaultListRequest is the first page of twenty, newest first.
func DefaultListRequest() ListRequest {
	return ListRequest{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// IDRequest binds a uuid path parameter.
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// SerialRequest binds a serial number path parameter.
type SerialRequest struct {
	Serial string `uri:"serial" binding:"required"`
}
