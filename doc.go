// Package ocf is the property layer of the Open Connector Framework. It lets a
// connector browse the metadata attached to an asset (certifications, comments,
// tags, ratings, schema attributes and more) without ever loading a whole
// collection into memory.
//
// # Architecture
//
// A property server holds assets and the collections attached to them. It is
// reached through one of the registered backends:
//
//	memory    - in-process store, optionally seeded from a JSON fixture
//	postgres  - pgx/v5 connection pool
//	mysql     - database/sql with go-sql-driver/mysql
//	mongodb   - mongo-driver
//	rest      - HTTP client for a remote server, with retries, a circuit
//	            breaker, rate limiting and OAuth2 client credentials
//
// A connected asset binds a backend to one asset and hands out paging
// iterators. Each iterator knows the size of its collection up front, keeps
// one page in memory and fetches the next page only when the read position
// leaves it. Elements are cloned on the way in and on the way out, and are
// exposed through read-only views.
//
// # Quick Start
//
//	server, err := propertyserver.Create(ctx, config.NewDefaultConfig(), log)
//	ca, err := connectedasset.New(ctx, server, guid, connectedasset.WithMaxCacheSize(50))
//	comments, err := ca.Comments(ctx)
//	for c, err := range comments.All(ctx) {
//	    ...
//	}
//
// # Key Packages
//
//	pkg/paging          - generic paging iterator
//	pkg/beans           - element types and element kinds
//	pkg/properties      - typed iterators and read-only views
//	pkg/propertyserver  - backend contract, registry and fixtures
//	pkg/connectedasset  - an asset together with its iterators
//	pkg/sink            - file, S3 and GCS export targets
//	internal/export     - JSON lines export of a connected asset
//	cmd/ocf             - command line browser, exporter and server
package ocf
