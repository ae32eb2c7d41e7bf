package source

import (
	"fmt"
	"sort"
	"strings"
)

// BuildFluxQuery assembles a Flux pipeline for a time-range export.
// Relative ranges ("-7d") pass through verbatim, "now" becomes now(),
// absolute timestamps are quoted. Tag filters are appended in sorted
// key order so the same options always build the same query text.
func BuildFluxQuery(bucket string, opts QueryOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "from(bucket: %q)\n", bucket)
	fmt.Fprintf(&b, "  |> range(start: %s, stop: %s)\n", fluxTime(opts.Start), fluxTime(opts.End))
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r._measurement == %q)", opts.Measurement)

	keys := make([]string, 0, len(opts.Filters))
	for k := range opts.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, "\n  |> filter(fn: (r) => r.%s == %q)", k, opts.Filters[k])
	}

	return b.String()
}

func fluxTime(v string) string {
	switch {
	case v == "" || v == "now":
		return "now()"
	case strings.HasPrefix(v, "-"):
		return v
	default:
		return fmt.Sprintf("%q", v)
	}
}
