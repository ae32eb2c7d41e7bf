package source

import (
	"context"
	"errors"
	"fmt"
	"log"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"gridlink/internal/config"
	"gridlink/internal/constants"
)

var ErrNotConfigured = errors.New("source: influxdb configuration missing, set INFLUX_URL, INFLUX_TOKEN and INFLUX_ORG")

// InfluxSource queries an InfluxDB 2.x instance with Flux.
type InfluxSource struct {
	client influxdb2.Client
	query  api.QueryAPI
	bucket string
}

func NewInfluxSource(cfg config.InfluxConfig) (*InfluxSource, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" {
		return nil, ErrNotConfigured
	}

	log.Printf("🔌 Connecting to InfluxDB at %s (org: %s)", cfg.URL, cfg.Org)
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = constants.DefaultBucket
	}

	return &InfluxSource{
		client: client,
		query:  client.QueryAPI(cfg.Org),
		bucket: bucket,
	}, nil
}

func (s *InfluxSource) Query(ctx context.Context, opts QueryOptions) ([]Row, error) {
	bucket := opts.Bucket
	if bucket == "" {
		bucket = s.bucket
	}

	flux := BuildFluxQuery(bucket, opts)
	log.Printf("📊 Executing Flux query:\n%s", flux)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("source: query failed: %w", err)
	}

	var rows []Row
	for result.Next() {
		rows = append(rows, Row(result.Record().Values()))
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("source: reading result failed: %w", err)
	}

	log.Printf("✅ Query completed: %d rows returned", len(rows))
	return rows, nil
}

// Ping runs a minimal query to verify connectivity. An empty bucket
// still counts as reachable.
func (s *InfluxSource) Ping(ctx context.Context) error {
	probe := fmt.Sprintf("from(bucket: %q) |> range(start: -1h) |> limit(n: 1)", s.bucket)
	result, err := s.query.Query(ctx, probe)
	if err != nil {
		return err
	}
	for result.Next() {
	}
	return result.Err()
}

func (s *InfluxSource) Close() {
	s.client.Close()
}
