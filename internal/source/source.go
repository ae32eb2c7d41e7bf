package source

import "context"

// Row is one opaque record returned by the data source. The connector
// never interprets the schema beyond counting and serializing rows.
type Row map[string]any

// QueryOptions describe a time-range export query.
type QueryOptions struct {
	Start       string
	End         string
	Measurement string
	Filters     map[string]string
	Bucket      string
}

// Source is the time-series data source boundary.
type Source interface {
	Query(ctx context.Context, opts QueryOptions) ([]Row, error)
}

// Unavailable stands in when no data source is configured; every query
// fails, which surfaces as an errored job rather than a crash.
type Unavailable struct{}

func (Unavailable) Query(context.Context, QueryOptions) ([]Row, error) {
	return nil, ErrNotConfigured
}
