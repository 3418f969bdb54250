// Package reports renders periodic usage reports and parks them in object
// storage for the back office.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"edumart/internal/services"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const reportBucket = "edumart-reports"

// ReportService builds the monthly subscription usage report and uploads it.
type ReportService interface {
	GenerateUsageReport(ctx context.Context, asOf time.Time) (string, error)
	GetReportURL(objectName string, expiry time.Duration) (string, error)
}

type reportService struct {
	client   *minio.Client
	statsSvc services.StatsService
}

// NewReportService creates a new ReportService instance
func NewReportService(endpoint, accessKey, secretKey string, useSSL bool, statsSvc services.StatsService) (ReportService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &reportService{client: client, statsSvc: statsSvc}, nil
}

// GenerateUsageReport renders the global and per-plan rollups as CSV and
// uploads the object. Returns the object name.
func (r *reportService) GenerateUsageReport(ctx context.Context, asOf time.Time) (string, error) {
	global, err := r.statsSvc.GetGlobalStats(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load global stats: %w", err)
	}
	planStats, err := r.statsSvc.GetPlanStats(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load plan stats: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"report_date", asOf.UTC().Format("2006-01-02")})
	_ = w.Write([]string{"total_users", strconv.FormatInt(global.TotalUsers, 10)})
	_ = w.Write([]string{"with_subscription", strconv.FormatInt(global.WithSubscription, 10)})
	_ = w.Write([]string{"expiring_soon", strconv.FormatInt(global.ExpiringSoon, 10)})
	for status, count := range global.ByStatus {
		_ = w.Write([]string{"status_" + status, strconv.FormatInt(count, 10)})
	}
	_ = w.Write(nil)
	_ = w.Write([]string{"plan", "persona", "subscribers", "active_subscribers"})
	for _, ps := range planStats {
		_ = w.Write([]string{ps.PlanName, ps.Persona, strconv.FormatInt(ps.Subscribers, 10), strconv.FormatInt(ps.ActiveSubscribers, 10)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	if err := r.ensureBucket(ctx); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("usage/%s.csv", asOf.UTC().Format("2006-01"))
	_, err = r.client.PutObject(ctx, reportBucket, objectName, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	return objectName, nil
}

func (r *reportService) GetReportURL(objectName string, expiry time.Duration) (string, error) {
	url, err := r.client.PresignedGetObject(context.Background(), reportBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (r *reportService) ensureBucket(ctx context.Context) error {
	found, err := r.client.BucketExists(ctx, reportBucket)
	if err != nil {
		return err
	}
	if !found {
		return r.client.MakeBucket(ctx, reportBucket, minio.MakeBucketOptions{})
	}
	return nil
}
