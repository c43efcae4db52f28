package api_error

type JSONAPIError struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Msg          string `json:"error"`
	ErrorDetails string `json:"error_details"`
}
