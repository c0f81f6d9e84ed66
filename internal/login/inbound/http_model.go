package inbound

// AuthenticateResponse is a page descriptor telling the form-rendering
// frontend what to show next.
type AuthenticateResponse struct {
	Page         string `json:"page"`
	Message      string `json:"message,omitempty"`
	SecretKey    string `json:"secret_key,omitempty"`
	HandoffToken string `json:"handoff_token,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
}
