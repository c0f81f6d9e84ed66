package inbound

import (
	"github.com/wiratama/otplogin/internal/login/usecase"
	"github.com/wiratama/otplogin/internal/pkg/router"
)

// headerAuthSession names the flow instance the request belongs to.
const headerAuthSession = "X-Auth-Session"

// HTTPEndpoint exposes HTTP handlers for the multi-step login flow.
type HTTPEndpoint struct {
	uc uc
}

// Authenticate drives one step of the login flow.
// @Summary Advance the login flow
// @Description Dispatches on the submitted flagPage: empty renders the login form, "loginWithPass" verifies credentials, "login" sends an OTP, "resend" redelivers it, "otp" verifies the entered code. The response names the next page to render.
// @Tags Login
// @Accept x-www-form-urlencoded
// @Produce json
// @Param X-Auth-Session header string true "Flow session id"
// @Param flagPage formData string false "Flow step selector"
// @Param username formData string false "Username, email or mobile number"
// @Param password formData string false "Base64 AES ciphertext of the password"
// @Param iv formData string false "Base64 AES initialization vector"
// @Param emailOrMobile formData string false "OTP destination identifier"
// @Param otpAnswer formData string false "Entered verification code"
// @Param rememberMe formData string false "Set to 'on' to persist the session"
// @Param redirectUri formData string false "Post-login redirect target"
// @Success 200 {object} router.successResponse{data=AuthenticateResponse} "Next page descriptor"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 409 {object} router.errorResponse "Identifier matches multiple accounts"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/login/authenticate [post]
func (h *HTTPEndpoint) Authenticate(r *router.Request) (any, error) {
	form, err := r.FormValues()
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Authenticate(r.Context(), usecase.AuthenticateInput{
		SessionID:     r.GetHeader(headerAuthSession),
		FlagPage:      form["flagPage"],
		Username:      form["username"],
		Password:      form["password"],
		IV:            form["iv"],
		EmailOrMobile: form["emailOrMobile"],
		OTPAnswer:     form["otpAnswer"],
		RememberMe:    form["rememberMe"],
		RedirectURI:   form["redirectUri"],
	})
	if err != nil {
		return nil, err
	}

	return AuthenticateResponse{
		Page:         resp.Page,
		Message:      resp.Message,
		SecretKey:    resp.SecretKey,
		HandoffToken: resp.HandoffToken,
		RedirectURI:  resp.RedirectURI,
	}, nil
}
