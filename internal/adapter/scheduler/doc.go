// Package scheduler runs background jobs on cron schedules.
//
// Schedules accept an optional seconds field ("*/10 * * * * *") and the
// descriptors understood by github.com/robfig/cron/v3 ("@every 15s", "@hourly").
// Every run gets a context derived from the scheduler's own context, bounded
// by the job timeout when one is set. Panics are recovered and logged.
//
//	s := scheduler.New(scheduler.Config{Logger: log})
//	_, err := s.Add("@every 10s", checkUpstreams, scheduler.JobOptions{
//		Name:          "upstream-health",
//		Timeout:       5 * time.Second,
//		OverlapPolicy: scheduler.SkipIfRunning,
//	})
//	s.Start()
//	defer s.Stop(context.Background())
package scheduler
