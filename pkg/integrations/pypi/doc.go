// Package pypi provides an HTTP client for the Python Package Index JSON API.
//
// # Usage
//
//	client := pypi.NewClient(pypi.Options{})
//	meta, err := client.FetchPackage(ctx, "pandas")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(meta.Name, meta.Version, len(meta.RequiresDist))
//
// # Registry Contract
//
// The client issues GET <base>/<name>/json and relies on three fields of the
// response: info.name, info.version and info.requires_dist. A response
// missing any of them is a MALFORMED_RESPONSE. PyPI serves
// "requires_dist": null for packages without dependencies; that is read as an
// empty list, while an absent key is treated as malformed.
//
// Declarations are returned raw. Splitting them into name and version
// constraint is the job of [python.ParseRequirement].
//
// [python.ParseRequirement]: github.com/matzehuels/pydepgraph/pkg/deps/python.ParseRequirement
package pypi
