// Package integrations provides the HTTP plumbing for package registry APIs.
//
// # Overview
//
// The registry client lives in a subpackage:
//
//   - [pypi]: Python Package Index JSON API
//
// # Client Pattern
//
//	client := pypi.NewClient(pypi.Options{Timeout: 10 * time.Second})
//	meta, err := client.FetchPackage(ctx, "pandas")
//
// # Shared Infrastructure
//
// [Client] issues one GET per call and decodes the JSON body. It never caches
// and never retries: a failed read is reported to the caller immediately.
// Failures are classified as structured errors:
//
//   - transport errors and non-200 statuses: REGISTRY_UNAVAILABLE, with
//     [ErrNetwork] or [ErrNotFound] in the chain
//   - undecodable bodies: MALFORMED_RESPONSE
//
// Every request is reported to [observability.HTTP].
//
// [pypi]: github.com/matzehuels/pydepgraph/pkg/integrations/pypi
// [observability.HTTP]: github.com/matzehuels/pydepgraph/pkg/observability.HTTP
package integrations
