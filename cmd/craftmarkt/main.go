package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/craftmarkt/craftmarkt/app/repository"
	"github.com/craftmarkt/craftmarkt/internal/pkg/billing"
	"github.com/craftmarkt/craftmarkt/internal/pkg/cache"
	"github.com/craftmarkt/craftmarkt/internal/pkg/database"
	"github.com/craftmarkt/craftmarkt/internal/pkg/env"
	"github.com/craftmarkt/craftmarkt/internal/pkg/jobqueue"
	"github.com/craftmarkt/craftmarkt/internal/pkg/metrics/counter"
	"github.com/craftmarkt/craftmarkt/internal/pkg/statistics"
)

const (
	counterFlushInterval = 1 * time.Minute
	queueMonitorInterval = 5 * time.Minute
	reconcileInterval    = 24 * time.Hour
)

func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())

	workers := 2
	if v, err := strconv.Atoi(env.GetEnv("QUEUE_WORKERS", "2")); err == nil && v > 0 {
		workers = v
	}

	queue := jobqueue.InitManager(workers)
	queue.RegisterProcessor(jobqueue.JobTypeStatRollup, statistics.ProcessRollupJob)
	queue.RegisterProcessor(jobqueue.JobTypeCounterFlush, func([]byte) error {
		return counter.FlushAll()
	})
	queue.Start()
	defer queue.Stop()

	svc := billing.NewServiceFromDB(database.GetDB(), statistics.NewAsync())

	stopCh := make(chan struct{})
	go runCounterFlusher(stopCh)
	go runQueueMonitor(stopCh)
	go runReconciler(svc, stopCh)

	log.Info("[CraftMarkt] billing worker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("[CraftMarkt] shutting down")
	close(stopCh)

	// Flush what is still pending before the workers stop
	if err := counter.FlushAll(); err != nil {
		log.Warnf("[CraftMarkt] final counter flush failed: %v", err)
	}
}

// runCounterFlusher periodically drains the pending redis view counters into
// the database.
func runCounterFlusher(stop <-chan struct{}) {
	ticker := time.NewTicker(counterFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := counter.FlushAll(); err != nil {
				log.Warnf("[CraftMarkt] counter flush failed: %v", err)
			}
		}
	}
}

// runQueueMonitor logs the redis-side health of the pipeline: job backlog,
// open dedupe windows and unflushed counters.
func runQueueMonitor(stop <-chan struct{}) {
	ticker := time.NewTicker(queueMonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			overview, err := statistics.GetQueueOverview(repository.GetGlobalRepositories().Queue)
			if err != nil {
				log.Warnf("[CraftMarkt] queue overview failed: %v", err)
				continue
			}
			log.Infof("[CraftMarkt] queue backlog=%d dedupe_windows=%d pending_counters=%d",
				overview.JobBacklog, overview.DedupeWindows, overview.PendingCounters)
		}
	}
}

// runReconciler audits every vendor balance against the ledger once a day.
// Drift is logged and repaired; balances derive from the ledger, never the
// other way around.
func runReconciler(svc *billing.Service, stop <-chan struct{}) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			reports, err := svc.ReconcileAll(context.Background(), true)
			if err != nil {
				log.Errorf("[CraftMarkt] reconciliation run failed: %v", err)
				continue
			}
			for _, r := range reports {
				log.Warnf("[CraftMarkt] vendor %d balance drifted by %.4f (balance %.4f, ledger %.4f), repaired=%v",
					r.VendorID, r.Drift, r.Balance, r.LedgerSum, r.Repaired)
			}
			if len(reports) == 0 {
				log.Info("[CraftMarkt] reconciliation clean, no drift")
			}
		}
	}
}
