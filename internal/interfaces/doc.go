// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - records.PersistentStore: Row-level book storage (internal/records/store.go),
//     implemented by books.Repository on gorm.
//   - scan.RecordWriter: Saving confirmed books (internal/scan/coordinator.go)
//   - selection.Deleter: Bulk deletion (internal/selection/manager.go)
//   - http.RecordReader / http.RecordStore: Controller access to books (internal/http/stores.go)
//
// records.Store implements all of the consumer-side interfaces and publishes
// a snapshot to observers after every successful write.
//
// ## External Service Interfaces
//
//   - metadata.Provider: One bibliographic service (Google Books, OpenBD, Open Library)
//   - scan.Resolver: ISBN to summary, implemented by metadata.Gateway
//
// ## Background Work Interfaces
//
//   - covers.Source: Record snapshot stream consumed by the cover warmer
//   - covers.Enqueuer: Deferred cover downloads, implemented by tasks.Client
//   - tasks.CoverFetcher: Cover downloads run by the task queue, implemented by covers.Cache
//   - scheduler.Sweeper: Idle session expiry, implemented by sessions.Registry
//
// ## Metrics
//
//   - scan.Recorder: Detection, lookup and save counters, implemented by metrics.Metrics
//
// # Adding a Lookup Provider
//
//  1. Implement metadata.Provider in internal/metadata
//  2. Add a name constant in internal/config/constants.go
//  3. Return it from metadata.NewProvider
//  4. Add a compile-time check in checks.go
package interfaces
