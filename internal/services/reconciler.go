package services

import (
	"context"
	"fmt"
	"time"

	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"
	"quiz-admin/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	danglingSlotsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quiz_admin_dangling_file_slots",
		Help: "File slots whose stored file was missing at the last sweep.",
	})

	orphanBlobsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_admin_orphan_files_removed_total",
		Help: "Stored files deleted because no file slot referenced them.",
	})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quiz_admin_storage_sweep_duration_seconds",
		Help:    "Duration of storage reconciliation sweeps.",
		Buckets: prometheus.DefBuckets,
	})
)

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	CheckedSlots   int       `json:"checkedSlots"`
	DanglingSlots  []uint    `json:"danglingSlots"`
	CheckedFiles   int       `json:"checkedFiles"`
	RemovedOrphans []string  `json:"removedOrphans"`
}

// Reconciler compares slot metadata with the blob store. Slots pointing at a
// missing file are reported; files no slot references are removed once they
// are older than the grace period, which covers uploads still in flight.
type Reconciler struct {
	repo   repository.SlotRepository
	store  storage.BlobStore
	grace  time.Duration
	logger *logrus.Logger
	now    func() time.Time
}

func NewReconciler(repo repository.SlotRepository, store storage.BlobStore, grace time.Duration, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		repo:   repo,
		store:  store,
		grace:  grace,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Reconciler) Sweep(ctx context.Context) (*SweepReport, error) {
	report := &SweepReport{
		StartedAt:      r.now().UTC(),
		DanglingSlots:  []uint{},
		RemovedOrphans: []string{},
	}
	timer := prometheus.NewTimer(sweepDuration)
	defer timer.ObserveDuration()

	slots, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list file slots: %w", err)
	}

	referenced := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		referenced[slot.StorageKey] = struct{}{}
		report.CheckedSlots++

		exists, err := r.store.Exists(ctx, slot.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", slot.StorageKey, err)
		}
		if !exists {
			report.DanglingSlots = append(report.DanglingSlots, slot.ID)
			r.logger.WithFields(logrus.Fields{
				"slot":     slot.ID,
				"kind":     slot.Kind,
				"owner":    slot.OwnerID,
				"language": slot.Language,
				"key":      slot.StorageKey,
			}).Warn("File slot references a missing file")
		}
	}
	danglingSlotsGauge.Set(float64(len(report.DanglingSlots)))

	cutoff := r.now().Add(-r.grace)
	for _, kind := range models.ResourceKinds {
		blobs, err := r.store.List(ctx, string(kind)+"/")
		if err != nil {
			return nil, fmt.Errorf("failed to list %s files: %w", kind, err)
		}
		for _, blob := range blobs {
			report.CheckedFiles++
			if _, ok := referenced[blob.Key]; ok || blob.ModTime.After(cutoff) {
				continue
			}
			if err := r.store.Delete(ctx, blob.Key); err != nil {
				r.logger.WithError(err).WithField("key", blob.Key).Warn("Failed to remove orphaned file")
				continue
			}
			orphanBlobsRemoved.Inc()
			report.RemovedOrphans = append(report.RemovedOrphans, blob.Key)
		}
	}

	report.FinishedAt = r.now().UTC()
	r.logger.WithFields(logrus.Fields{
		"slots":    report.CheckedSlots,
		"dangling": len(report.DanglingSlots),
		"files":    report.CheckedFiles,
		"removed":  len(report.RemovedOrphans),
	}).Info("Storage sweep finished")

	return report, nil
}

// Run sweeps every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.logger.WithError(err).Error("Storage sweep failed")
			}
		}
	}
}
