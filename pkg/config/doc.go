// Package config holds the configuration of the property layer tools.
//
// The configuration is organized into sections:
//   - Paging: page size of the iterators
//   - PropertyServer: which backend serves the metadata and how to reach it
//   - Reliability: retries, circuit breaking and rate limiting of remote calls
//   - Observability: logging, metrics and tracing
//   - Export: where exported assets are written and how they are compressed
//
// Configuration files are YAML. ${VAR} and ${VAR:-default} references are
// replaced with environment variables before parsing, so secrets can stay out of
// the file:
//
//	property_server:
//	  type: postgres
//	  dsn: ${OCF_POSTGRES_DSN}
package config
