package event

const LoginSucceededDestination string = "login_succeeded"

type LoginSucceededMessage struct {
	UserID     int64  `json:"user_id"`
	Identifier string `json:"identifier"`
	Method     string `json:"method"`
	RememberMe bool   `json:"remember_me"`
}
