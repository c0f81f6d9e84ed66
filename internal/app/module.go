package app

import (
	"log/slog"
	"os"

	"github.com/wiratama/otplogin/internal/login"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.login.enabled") {
		if err := login.New(login.Dependency{
			DBConn:      a.dbConn,
			CacheConn:   a.cacheConn,
			Router:      a.router,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			SMSSender:   a.smsSender,
			EmailSender: a.emailSender,
			Bcrypt:      a.bcrypt,
			Clock:       a.clock,
			Validator:   a.validator,
			JWT:         a.jwt,
		}); err != nil {
			slog.Error("failed to init module login", "error", err)
			os.Exit(1)
		}
	}
}
