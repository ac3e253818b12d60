package cron

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"rabbit-admin/internal/logging"
	"rabbit-admin/internal/rabbit"
)

// Scheduler runs the periodic broker health watchdog: an aliveness test on
// the default vhost every 30 seconds. It only reports; it never retries or
// reconnects anything.
type Scheduler struct {
	c       *cron.Cron
	client  *rabbit.Client
	vhost   string
	log     zerolog.Logger
	healthy bool
}

func NewScheduler(client *rabbit.Client, vhost string) *Scheduler {
	return &Scheduler{
		c:       cron.New(),
		client:  client,
		vhost:   vhost,
		log:     logging.New("watchdog"),
		healthy: true,
	}
}

func (s *Scheduler) Start() {
	if s.client == nil {
		return
	}
	_, _ = s.c.AddFunc("@every 30s", s.check)
	s.c.Start()
}

// check runs one aliveness probe and logs health state transitions.
func (s *Scheduler) check() {
	out, err := s.client.Aliveness(s.vhost)
	if err != nil {
		if s.healthy {
			s.log.Error().Err(err).Str("vhost", s.vhost).Msg("broker unhealthy")
		}
		s.healthy = false
		return
	}
	if !s.healthy {
		s.log.Info().Int("status", out.Status).Str("vhost", s.vhost).Msg("broker recovered")
	}
	s.healthy = true
}

func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}
