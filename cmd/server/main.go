package main

import (
	"os"

	"rabbit-admin/api"
	"rabbit-admin/internal/bootstrap"
	"rabbit-admin/internal/config"
	appcron "rabbit-admin/internal/cron"
	"rabbit-admin/internal/db"
	"rabbit-admin/internal/logging"
	"rabbit-admin/internal/rabbit"
	"rabbit-admin/internal/repository"
	"rabbit-admin/internal/security"
	"rabbit-admin/internal/server"
	"rabbit-admin/internal/service"
)

func main() {
	log := logging.New("main")

	cfg, err := config.LoadFromEnv(os.LookupEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	creds := rabbit.Credentials{Username: cfg.SuperUsername, Password: cfg.SuperPassword}
	client := rabbit.NewClient(cfg.ManagementBaseURL(), creds, rabbit.DefaultTimeout)

	deps := api.Deps{
		Rabbit:       client,
		DefaultVHost: cfg.DefaultVHost,
		NewPublisher: func(vhost string) (api.MessagePublisher, error) {
			host, port, tls := cfg.AMQPAddr()
			return rabbit.NewPublisher(rabbit.PublisherConfig{
				Host:  host,
				Port:  port,
				TLS:   tls,
				VHost: vhost,
				Creds: creds,
			})
		},
	}

	// Optional DB connect at startup if POSTGRES_URI is provided
	if cfg.PostgresURI != "" {
		database, err := db.Connect(cfg.PostgresURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer database.Close()
		if err := database.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure database schema")
		}
		validator := security.NewValidator(security.NewPwnedClient())
		deps.Users = service.NewUserService(
			repository.NewUsers(database.DB), validator, security.DefaultPolicy)
	}

	// Declare topology on startup if configured
	top := bootstrap.LoadTopologyFromEnv()
	if len(top.VHosts) > 0 || len(top.Exchanges) > 0 || len(top.Queues) > 0 {
		if err := top.Apply(client, cfg.DefaultVHost); err != nil {
			log.Fatal().Err(err).Msg("topology bootstrap failed")
		}
	}

	sched := appcron.NewScheduler(client, cfg.DefaultVHost)
	sched.Start()
	defer sched.Stop()

	s := server.New(cfg, deps)
	if err := s.Start(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
