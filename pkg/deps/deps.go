package deps

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pydepgraph/pkg/dag"
	"github.com/matzehuels/pydepgraph/pkg/errors"
	"github.com/matzehuels/pydepgraph/pkg/integrations/pypi"
	"github.com/matzehuels/pydepgraph/pkg/observability"
)

const (
	DefaultPackage = "pandas" // Package graphed when none is given
	DefaultDepth   = 30       // Number of dependencies graphed when none is given
)

// Graph-level metadata keys set by [Assembler.Build].
const (
	MetaPackage   = "package"   // Queried package name as reported by the registry
	MetaVersion   = "version"   // Its version
	MetaDepth     = "depth"     // Number of dependency nodes in the graph
	MetaAvailable = "available" // Number of declarations the package lists
	MetaSummary   = "summary"   // Package summary, when the registry has one
	MetaLicense   = "license"   // License, when the registry has one
)

// MetaUnparsed marks a dependency node whose declaration could not be parsed
// under [PolicyPlaceholder].
const MetaUnparsed = "unparsed"

// ParsePolicy decides what happens to a declaration the parser rejects.
type ParsePolicy int

const (
	// PolicyStrict fails the whole build with UNPARSEABLE_DECLARATION.
	PolicyStrict ParsePolicy = iota
	// PolicyPlaceholder keeps the node: name is the raw declaration, version
	// is empty, and the node is marked with MetaUnparsed.
	PolicyPlaceholder
)

func (p ParsePolicy) String() string {
	if p == PolicyPlaceholder {
		return "placeholder"
	}
	return "strict"
}

// Fetcher retrieves package metadata from a registry.
// [*pypi.Client] is the production implementation.
type Fetcher interface {
	FetchPackage(ctx context.Context, name string) (*pypi.PackageMetadata, error)
}

// Options configures an Assembler.
type Options struct {
	Policy ParsePolicy // Handling of unparseable declarations (default: PolicyStrict)
	Logger *log.Logger // Debug output (default: log.Default())
}

// Assembler builds dependency graphs from registry metadata.
//
// An Assembler holds no per-build state and is safe for concurrent use if
// its Fetcher is.
type Assembler struct {
	fetcher Fetcher
	policy  ParsePolicy
	logger  *log.Logger
}

// NewAssembler creates an Assembler reading from fetcher.
func NewAssembler(fetcher Fetcher, opts Options) *Assembler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{fetcher: fetcher, policy: opts.Policy, logger: logger}
}

// Build fetches pkg and returns a graph of the package and its first depth
// declared dependencies.
//
// The result has depth+1 nodes and depth edges, all leaving node 0. Either a
// complete, validated graph is returned or an error and no graph:
//   - INVALID_INPUT for a negative depth
//   - any error from the Fetcher (REGISTRY_UNAVAILABLE, MALFORMED_RESPONSE, ...)
//   - INSUFFICIENT_DEPENDENCIES if the package declares fewer than depth
//     dependencies; the message names how many it does declare
//   - UNPARSEABLE_DECLARATION under PolicyStrict
func (a *Assembler) Build(ctx context.Context, pkg string, depth int) (g *dag.DAG, err error) {
	if err := errors.ValidateDepth(depth); err != nil {
		return nil, err
	}

	hooks := observability.Graph()
	hooks.OnBuildStart(ctx, pkg, depth)
	start := time.Now()
	defer func() {
		var n int
		if g != nil {
			n = g.NodeCount()
		}
		hooks.OnBuildComplete(ctx, pkg, n, time.Since(start), err)
	}()

	meta, err := a.fetcher.FetchPackage(ctx, pkg)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("fetched package metadata",
		"package", meta.Name,
		"version", meta.Version,
		"declarations", len(meta.RequiresDist))

	if available := len(meta.RequiresDist); depth > available {
		return nil, errors.New(errors.ErrCodeInsufficientDeps,
			"%s %s declares %d dependencies, cannot graph %d (use at most %d)",
			meta.Name, meta.Version, available, depth, available)
	}

	attrs, err := a.attributes(meta, depth)
	if err != nil {
		return nil, err
	}

	g, err = assemble(meta, attrs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "assemble graph for %s", meta.Name)
	}
	a.logger.Debug("assembled graph", "package", meta.Name, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}
