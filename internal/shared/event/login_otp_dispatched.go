package event

const LoginOTPDispatchedDestination string = "login_otp_dispatched"

type LoginOTPDispatchedMessage struct {
	UserID     int64  `json:"user_id"`
	Identifier string `json:"identifier"`
	Channel    string `json:"channel"`
	Resend     bool   `json:"resend"`
}
