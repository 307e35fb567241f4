package backup

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"time"

	appconfig "casework-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const backupInterval = 24 * time.Hour

// Scheduler uploads nightly pg_dump snapshots to S3-compatible storage.
type Scheduler struct {
	cfg  *appconfig.Config
	stop chan struct{}
}

func NewScheduler(cfg *appconfig.Config) *Scheduler {
	return &Scheduler{cfg: cfg, stop: make(chan struct{})}
}

// Start launches the backup loop. A first backup runs one interval after
// startup, not immediately, so restarts do not pile up snapshots.
func (s *Scheduler) Start() {
	if !s.cfg.Backup.Enabled {
		log.Println("[Backup] Disabled, scheduler not started")
		return
	}

	go func() {
		ticker := time.NewTicker(backupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.RunOnce(context.Background()); err != nil {
					log.Printf("[Backup] Failed: %v", err)
				}
			case <-s.stop:
				log.Println("[Backup] Scheduler stopped")
				return
			}
		}
	}()

	log.Printf("[Backup] Scheduler started (interval: %v)", backupInterval)
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

// RunOnce dumps the database and uploads the snapshot.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	log.Println("[Backup] Starting backup...")

	dump, err := s.dumpDatabase(ctx)
	if err != nil {
		return fmt.Errorf("pg_dump: %w", err)
	}

	client, err := s.newS3Client(ctx)
	if err != nil {
		return fmt.Errorf("configure s3 client: %w", err)
	}

	key := fmt.Sprintf("base/casework_db_%s.sql", time.Now().Format("20060102_150405"))
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Backup.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(dump),
		ContentType: aws.String("application/sql"),
	})
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	log.Printf("[Backup] Success: %s (%d bytes)", key, len(dump))
	return nil
}

func (s *Scheduler) newS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.Backup.AccessKey,
			s.cfg.Backup.SecretKey,
			"",
		)),
		awsconfig.WithRegion(s.cfg.Backup.Region),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.Backup.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Backup.Endpoint)
		}
	}), nil
}

func (s *Scheduler) dumpDatabase(ctx context.Context) ([]byte, error) {
	db := s.cfg.Database
	cmd := exec.CommandContext(ctx, "pg_dump",
		"--host", db.Host,
		"--port", fmt.Sprint(db.Port),
		"--username", db.User,
		"--dbname", db.Name,
		"--no-password",
	)
	cmd.Env = append(cmd.Environ(), "PGPASSWORD="+db.Password)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}
