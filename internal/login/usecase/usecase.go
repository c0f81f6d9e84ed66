package usecase

import (
	"context"
	"time"

	"github.com/wiratama/otplogin/internal/login/entity"
	"github.com/wiratama/otplogin/internal/pkg/clock"
	"github.com/wiratama/otplogin/internal/pkg/config"
	"github.com/wiratama/otplogin/internal/pkg/hash"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"github.com/wiratama/otplogin/internal/pkg/jwt"
	"github.com/wiratama/otplogin/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// Pages the flow can land on. The frontend renders the matching form.
const (
	PageLogin   = "login"
	PageOTP     = "otp"
	PageError   = "error"
	PageSuccess = "success"
)

// Messages shown to the end user. Credential failures are deliberately
// indistinguishable from one another.
const (
	msgInvalidCredentials = "Invalid username or password."
	msgDuplicateUser      = "Multiple accounts match this identifier. Please contact administrator."
	msgDeliveryFailed     = "Failed to send OTP. Please contact administrator."
	msgOTPSent            = "A verification code has been sent."
	msgOTPInvalid         = "Invalid code. Please try again."
	msgOTPExpired         = "Code has expired. Please request a new one."
	msgSessionExpired     = "Your session has expired. Please start over."
)

type LoginOTPDispatchedEvent struct {
	UserID     int64
	Identifier string
	Channel    string
	Resend     bool
}

type LoginSucceededEvent struct {
	UserID     int64
	Identifier string
	Method     string
	RememberMe bool
}

type repoMessaging interface {
	PublishLoginOTPDispatched(ctx context.Context, msg LoginOTPDispatchedEvent) error
	PublishLoginSucceeded(ctx context.Context, msg LoginSucceededEvent) error
}

type repoDB interface {
	GetUserByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
}

type sessions interface {
	Get(ctx context.Context, id string) (*entity.FlowSession, error)
	Save(ctx context.Context, id string, sess entity.FlowSession) error
	Delete(ctx context.Context, id string) error
}

type guard interface {
	Locked(ctx context.Context, userID int64) (bool, error)
	RecordFailure(ctx context.Context, userID int64) error
	Reset(ctx context.Context, userID int64) error
}

type deliverer interface {
	Deliver(ctx context.Context, user entity.User, identifier, code string, ttl time.Duration) (string, bool)
}

type Usecase struct {
	repoDB        repoDB
	sessions      sessions
	guard         guard
	deliverer     deliverer
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	bcrypt        hash.Hash
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	Sessions      sessions
	Guard         guard
	Deliverer     deliverer
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	Bcrypt        hash.Hash
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		sessions:      dep.Sessions,
		guard:         dep.Guard,
		deliverer:     dep.Deliverer,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		bcrypt:        dep.Bcrypt,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("login.usecase").Start(ctx, name)
}

func (s *Usecase) otpDigits() int {
	return s.cfg.GetInt("modules.login.otp_digits")
}

func (s *Usecase) otpTTL() time.Duration {
	return s.cfg.GetSecond("modules.login.otp_ttl_seconds")
}
