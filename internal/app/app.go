package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/wiratama/otplogin/internal/login/outbound/deliver"
	"github.com/wiratama/otplogin/internal/pkg/clock"
	"github.com/wiratama/otplogin/internal/pkg/config"
	"github.com/wiratama/otplogin/internal/pkg/hash"
	"github.com/wiratama/otplogin/internal/pkg/instrument"
	"github.com/wiratama/otplogin/internal/pkg/jwt"
	"github.com/wiratama/otplogin/internal/pkg/mail"
	"github.com/wiratama/otplogin/internal/pkg/messaging"
	"github.com/wiratama/otplogin/internal/pkg/router"
	"github.com/wiratama/otplogin/internal/pkg/smsgateway"
	"github.com/wiratama/otplogin/internal/pkg/uid"
	"github.com/wiratama/otplogin/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	bcrypt    hash.Hash
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn      *pgxpool.Pool
	cacheConn   *redis.Client
	mail        mail.Mail
	messaging   messaging.Messaging
	smsSender   smsgateway.Sender
	emailSender deliver.EmailSender

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMessaging()
	app.initSMSGateway()
	app.initEmailDelivery()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
