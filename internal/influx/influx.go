// Package influx records per-frame radar statistics in InfluxDB. When the
// server cannot be reached points are appended as gzipped line protocol to
// a backup file instead.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/config"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/render"
)

// Measurement is the measurement name for frame points.
const Measurement = "radar_frame"

// retention for the radar bucket
const retentionSeconds = 60 * 60 * 24 * 30

var _ render.StatsSink = (*Sink)(nil)

// Sink writes one point per rendered frame.
type Sink struct {
	cfg        config.InfluxConfig
	backupPath string
	world      func() string
	logger     zerolog.Logger

	mu     sync.Mutex
	client influxdb2.Client
	writer influxdb2_api.WriteAPI
	backup *gzip.Writer
	file   *os.File
	valid  bool
}

// New creates a sink. world supplies the tag for the current session.
func New(cfg config.InfluxConfig, backupPath string, world func() string, log zerolog.Logger) *Sink {
	if world == nil {
		world = func() string { return "" }
	}
	return &Sink{
		cfg:        cfg,
		backupPath: backupPath,
		world:      world,
		logger:     log,
	}
}

// Connect pings the server and prepares the bucket. A failed ping falls
// back to the backup file and is not an error.
func (s *Sink) Connect(ctx context.Context) error {
	if !s.cfg.Enabled {
		return errors.New("influx.enabled is false")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.client = influxdb2.NewClientWithOptions(
		s.cfg.URL,
		s.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := s.client.Ping(ctx)
	if err != nil || !running {
		s.logger.Warn().Err(err).Str("backupPath", s.backupPath).
			Msg("InfluxDB unreachable, writing frame stats to backup file")
		s.client.Close()
		s.client = nil
		return s.openBackup()
	}

	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	s.writer = s.client.WriteAPI(s.cfg.Org, s.cfg.Bucket)
	go func(errs <-chan error) {
		for writeErr := range errs {
			s.logger.Error().Err(writeErr).Str("bucket", s.cfg.Bucket).Msg("Error sending data to InfluxDB")
		}
	}(s.writer.Errors())

	s.valid = true
	s.logger.Info().Str("url", s.cfg.URL).Str("bucket", s.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (s *Sink) openBackup() error {
	if s.backup != nil {
		return nil
	}
	file, err := os.OpenFile(s.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	s.file = file
	s.backup = gzip.NewWriter(file)
	return nil
}

func (s *Sink) ensureBucket(ctx context.Context) error {
	orgs := s.client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, s.cfg.Org)
	if err != nil {
		s.logger.Info().Str("org", s.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, s.cfg.Org)
		if err != nil {
			return fmt.Errorf("creating organization %s: %w", s.cfg.Org, err)
		}
	}

	if _, err := s.client.BucketsAPI().FindBucketByName(ctx, s.cfg.Bucket); err == nil {
		return nil
	}
	s.logger.Info().Str("bucket", s.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = s.client.BucketsAPI().CreateBucketWithName(ctx, org, s.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: retentionSeconds,
	})
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

// RecordFrame writes the frame's statistics.
func (s *Sink) RecordFrame(ctx context.Context, stats render.Stats) {
	point := FramePoint(s.world(), stats, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.valid:
		s.writer.WritePoint(point)
	case s.backup != nil:
		line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
		if !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		if _, err := s.backup.Write([]byte(line)); err != nil {
			s.logger.Error().Err(err).Msg("Error writing to InfluxDB backup file")
		}
	}
}

// Close flushes pending points and releases the client or backup file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != nil {
		s.writer.Flush()
	}
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.valid = false

	var err error
	if s.backup != nil {
		err = errors.Join(s.backup.Close(), s.file.Close())
		s.backup = nil
		s.file = nil
	}
	return err
}

// FramePoint builds the point for one frame.
func FramePoint(world string, stats render.Stats, at time.Time) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(Measurement).
		AddField("candidates", stats.Candidates).
		AddField("hidden", stats.Hidden).
		AddField("clipped", stats.Clipped).
		AddField("emitted", stats.Emitted).
		AddField("duration_ms", float64(stats.Duration)/float64(time.Millisecond)).
		SetTime(at)
	if world != "" {
		p.AddTag("world", world)
	}
	for cat, n := range stats.PerCategory {
		p.AddField("points_"+cat.String(), n)
	}
	return p
}
