// Package scheduler runs the periodic background jobs: a daily snapshot of
// the platform counters used by the admin dashboard history view.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/neuroconnect/neuro-connect-api/databases"
	"github.com/neuroconnect/neuro-connect-api/models"
)

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron   *cron.Cron
	UDB    databases.UserDatabase
	SDB    databases.SessionDatabase
	SnapDB databases.StatsSnapshotDatabase
}

// NewScheduler creates a new scheduler instance
func NewScheduler(uDB databases.UserDatabase, sDB databases.SessionDatabase, snapDB databases.StatsSnapshotDatabase) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		UDB:    uDB,
		SDB:    sDB,
		SnapDB: snapDB,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Snapshot platform stats daily at midnight UTC
	_, err := s.cron.AddFunc("0 0 * * *", s.snapshotStats)
	if err != nil {
		zap.S().Errorw("failed to register stats snapshot job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("stats scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("stats scheduler stopped")
}

// snapshotStats collects the live counters and persists them as a dated
// snapshot
func (s *Scheduler) snapshotStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, err := CollectStats(ctx, s.UDB, s.SDB)
	if err != nil {
		zap.S().Errorw("failed to collect stats for snapshot", "error", err)
		return
	}

	snapshot := models.StatsSnapshot{
		ID:        primitive.NewObjectID(),
		Stats:     *stats,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.SnapDB.InsertOne(ctx, snapshot); err != nil {
		zap.S().Errorw("failed to persist stats snapshot", "error", err)
		return
	}
	zap.S().Infow("stats snapshot persisted",
		"totalUsers", stats.TotalUsers,
		"totalSessions", stats.TotalSessions,
	)
}

// CollectStats counts the live platform numbers. Shared by the admin
// dashboard endpoint and the daily snapshot job.
func CollectStats(ctx context.Context, uDB databases.UserDatabase, sDB databases.SessionDatabase) (*models.PlatformStats, error) {
	stats := &models.PlatformStats{}

	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&stats.TotalUsers, func() (int64, error) { return uDB.CountDocuments(ctx, bson.M{}) }},
		{&stats.TotalStudents, func() (int64, error) { return uDB.CountDocuments(ctx, bson.M{"role": models.RoleStudent}) }},
		{&stats.TotalDoctors, func() (int64, error) { return uDB.CountDocuments(ctx, bson.M{"role": models.RoleDoctor}) }},
		{&stats.ActiveDoctors, func() (int64, error) {
			return uDB.CountDocuments(ctx, bson.M{"role": models.RoleDoctor, "isActive": true})
		}},
		{&stats.PendingDoctors, func() (int64, error) {
			return uDB.CountDocuments(ctx, bson.M{"role": models.RoleDoctor, "verificationStatus": models.VerificationPending})
		}},
		{&stats.TotalSessions, func() (int64, error) { return sDB.CountDocuments(ctx, bson.M{}) }},
		{&stats.PendingSessions, func() (int64, error) {
			return sDB.CountDocuments(ctx, bson.M{"status": models.SessionPending})
		}},
		{&stats.ApprovedSessions, func() (int64, error) {
			return sDB.CountDocuments(ctx, bson.M{"status": models.SessionApproved})
		}},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}
