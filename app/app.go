package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/audithq/safety-audit/ai"
	"github.com/audithq/safety-audit/config"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
	AI *ai.Client
}
