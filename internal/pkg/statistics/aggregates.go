package statistics

import (
	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/craftmarkt/craftmarkt/internal/pkg/jobqueue"
	"github.com/craftmarkt/craftmarkt/internal/pkg/metrics/counter"
	"github.com/gofiber/fiber/v2/log"
)

// Async is the best-effort sink wired into the view recorder and the
// billing service. Every method is fire-and-forget: counter increments go
// to redis, rollup deltas go onto the job queue, and all failures end in a
// log line rather than in the caller.
type Async struct{}

// NewAsync returns the shared aggregate sink.
func NewAsync() *Async {
	return &Async{}
}

func (*Async) AddProductView(productID uint) {
	if err := counter.AddProductView(productID); err != nil {
		log.Warnf("[Statistics] product view counter for %d failed: %v", productID, err)
	}
}

func (*Async) AddVendorView(vendorID uint) {
	if err := counter.AddVendorView(vendorID); err != nil {
		log.Warnf("[Statistics] vendor view counter for %d failed: %v", vendorID, err)
	}
}

func (*Async) ViewRecorded(e *models.ViewEvent) {
	jobqueue.TryEnqueue(jobqueue.JobTypeStatRollup, DeltaForView(e))
}

func (*Async) ViewQualified(e *models.ViewEvent) {
	jobqueue.TryEnqueue(jobqueue.JobTypeStatRollup, DeltaForQualified(e))
}

func (*Async) ViewCharged(e *models.ViewEvent, cost float64) {
	jobqueue.TryEnqueue(jobqueue.JobTypeStatRollup, DeltaForCharge(e, cost))
}
