package bot

import (
	"time"

	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// onceSchedule fires a single time at a fixed instant.
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(now time.Time) time.Time {
	if now.Before(s.at) {
		return s.at
	}
	return time.Time{}
}

// Planner runs planned deliveries and the recurring digest in Moscow time.
type Planner struct {
	Logger *zap.Logger

	cron *cron.Cron
}

func NewPlanner(logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		Logger: logger,
		cron: cron.New(
			cron.WithLocation(msk.Location()),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
	}
}

func (p *Planner) Start() {
	p.cron.Start()
}

// Stop stops the scheduler and waits for running jobs.
func (p *Planner) Stop() {
	<-p.cron.Stop().Done()
}

// Once runs job at the given time and then forgets it.
func (p *Planner) Once(at time.Time, job func()) cron.EntryID {
	ready := make(chan struct{})
	var id cron.EntryID
	id = p.cron.Schedule(onceSchedule{at: at}, cron.FuncJob(func() {
		<-ready
		job()
		p.cron.Remove(id)
	}))
	close(ready)

	p.Logger.Info("Once", zap.Int("entry", int(id)), zap.Time("at", at))
	return id
}

// Every runs job on a standard five-field cron spec.
func (p *Planner) Every(spec string, job func()) (cron.EntryID, error) {
	id, err := p.cron.AddFunc(spec, job)
	if err != nil {
		return 0, err
	}
	p.Logger.Info("Every", zap.Int("entry", int(id)), zap.String("spec", spec))
	return id, nil
}

// Pending counts scheduled entries.
func (p *Planner) Pending() int {
	return len(p.cron.Entries())
}
