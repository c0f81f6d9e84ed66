package login

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/wiratama/otplogin/internal/login/inbound"
	"github.com/wiratama/otplogin/internal/login/outbound/db"
	"github.com/wiratama/otplogin/internal/login/outbound/deliver"
	"github.com/wiratama/otplogin/internal/login/outbound/guard"
	"github.com/wiratama/otplogin/internal/login/outbound/mq"
	"github.com/wiratama/otplogin/internal/login/outbound/session"
	"github.com/wiratama/otplogin/internal/login/usecase"
	"github.com/wiratama/otplogin/internal/pkg/clock"
	"github.com/wiratama/otplogin/internal/pkg/config"
	"github.com/wiratama/otplogin/internal/pkg/hash"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"github.com/wiratama/otplogin/internal/pkg/jwt"
	"github.com/wiratama/otplogin/internal/pkg/messaging"
	"github.com/wiratama/otplogin/internal/pkg/router"
	"github.com/wiratama/otplogin/internal/pkg/smsgateway"
	"github.com/wiratama/otplogin/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	SMSSender   smsgateway.Sender          `validate:"required"`
	EmailSender deliver.EmailSender        `validate:"required"`
	Bcrypt      hash.Hash                  `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	sessions := session.NewStore(
		dep.CacheConn,
		dep.Config.GetSecond("modules.login.session_ttl_seconds"),
		dep.Instrument,
	)
	bruteForce := guard.NewGuard(
		dep.CacheConn,
		dep.Config.GetInt("modules.login.max_failures"),
		dep.Config.GetSecond("modules.login.lockout_window_seconds"),
		dep.Instrument,
	)
	deliverer := deliver.New(dep.SMSSender, dep.EmailSender, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		Sessions:      sessions,
		Guard:         bruteForce,
		Deliverer:     deliverer,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Bcrypt:        dep.Bcrypt,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
