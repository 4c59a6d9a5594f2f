package deps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pydepgraph/pkg/dag"
	"github.com/matzehuels/pydepgraph/pkg/errors"
	"github.com/matzehuels/pydepgraph/pkg/integrations/pypi"
	"github.com/matzehuels/pydepgraph/pkg/observability"
)

type fakeFetcher struct {
	meta  *pypi.PackageMetadata
	err   error
	calls int
}

func (f *fakeFetcher) FetchPackage(_ context.Context, _ string) (*pypi.PackageMetadata, error) {
	f.calls++
	return f.meta, f.err
}

func pandas() *pypi.PackageMetadata {
	return &pypi.PackageMetadata{
		Name:    "pandas",
		Version: "2.2.3",
		RequiresDist: []string{
			`numpy>=1.22.4; python_version < "3.11"`,
			"python-dateutil>=2.8.2",
			"pytz>=2020.1",
			"tzdata>=2022.7",
			`certifi>=2020.1; python_version<"3.8"`,
		},
		Summary: "Powerful data structures for data analysis",
		License: "BSD License",
	}
}

func quietAssembler(f Fetcher, policy ParsePolicy) *Assembler {
	return NewAssembler(f, Options{Policy: policy, Logger: log.New(io.Discard)})
}

func TestBuildShape(t *testing.T) {
	meta := pandas()
	for depth := 0; depth <= len(meta.RequiresDist); depth++ {
		t.Run(fmt.Sprintf("depth=%d", depth), func(t *testing.T) {
			g, err := quietAssembler(&fakeFetcher{meta: meta}, PolicyStrict).Build(context.Background(), "pandas", depth)
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if got := g.NodeCount(); got != depth+1 {
				t.Errorf("NodeCount = %d, want %d", got, depth+1)
			}
			if got := g.EdgeCount(); got != depth {
				t.Errorf("EdgeCount = %d, want %d", got, depth)
			}
			for _, e := range g.Edges() {
				if e.From != dag.RootID {
					t.Errorf("edge %d->%d does not originate at the root", e.From, e.To)
				}
			}
			root, ok := g.Root()
			if !ok {
				t.Fatal("root node missing")
			}
			if root.Name() != "pandas" || root.Version() != "2.2.3" {
				t.Errorf("root = %s %s, want pandas 2.2.3", root.Name(), root.Version())
			}
			if len(root.Meta) != 2 {
				t.Errorf("root attributes = %v, want only name and version", root.Meta)
			}
		})
	}
}

func TestBuildDepthZero(t *testing.T) {
	g, err := quietAssembler(&fakeFetcher{meta: pandas()}, PolicyStrict).Build(context.Background(), "pandas", 0)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.NodeCount() != 1 || g.EdgeCount() != 0 {
		t.Errorf("got %d nodes %d edges, want a single isolated node", g.NodeCount(), g.EdgeCount())
	}
}

func TestBuildNodeAttributes(t *testing.T) {
	g, err := quietAssembler(&fakeFetcher{meta: pandas()}, PolicyStrict).Build(context.Background(), "pandas", 5)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want := []struct{ name, version string }{
		{"pandas", "2.2.3"},
		{"numpy", "1.22.4"},
		{"python-dateutil", "2.8.2"},
		{"pytz", "2020.1"},
		{"tzdata", "2022.7"},
		{"certifi", "2020.1"},
	}
	for id, w := range want {
		n, ok := g.Node(id)
		if !ok {
			t.Fatalf("node %d missing", id)
		}
		if n.Name() != w.name || n.Version() != w.version {
			t.Errorf("node %d = {%s %s}, want {%s %s}", id, n.Name(), n.Version(), w.name, w.version)
		}
		wantRow := 1
		if id == dag.RootID {
			wantRow = 0
		}
		if n.Row != wantRow {
			t.Errorf("node %d row = %d, want %d", id, n.Row, wantRow)
		}
	}

	gm := g.Meta()
	if gm[MetaPackage] != "pandas" || gm[MetaDepth] != 5 || gm[MetaAvailable] != 5 {
		t.Errorf("graph meta = %v", gm)
	}
	if gm[MetaLicense] != "BSD License" {
		t.Errorf("graph license = %v", gm[MetaLicense])
	}
}

func TestBuildPreservesDeclarationOrder(t *testing.T) {
	meta := &pypi.PackageMetadata{
		Name:         "demo",
		Version:      "1.0",
		RequiresDist: []string{"zeta>=1", "alpha>=2", "mid>=3"},
	}
	g, err := quietAssembler(&fakeFetcher{meta: meta}, PolicyStrict).Build(context.Background(), "demo", 3)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	for i, name := range []string{"zeta", "alpha", "mid"} {
		n, _ := g.Node(i + 1)
		if n.Name() != name {
			t.Errorf("node %d = %s, want %s", i+1, n.Name(), name)
		}
	}
}

func TestBuildInsufficientDependencies(t *testing.T) {
	f := &fakeFetcher{meta: pandas()}
	g, err := quietAssembler(f, PolicyStrict).Build(context.Background(), "pandas", 6)
	if g != nil {
		t.Errorf("expected no graph, got %d nodes", g.NodeCount())
	}
	if !errors.Is(err, errors.ErrCodeInsufficientDeps) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeInsufficientDeps)
	}
	if msg := errors.UserMessage(err); msg != "pandas 2.2.3 declares 5 dependencies, cannot graph 6 (use at most 5)" {
		t.Errorf("message = %q", msg)
	}
}

func TestBuildNegativeDepth(t *testing.T) {
	f := &fakeFetcher{meta: pandas()}
	_, err := quietAssembler(f, PolicyStrict).Build(context.Background(), "pandas", -1)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if f.calls != 0 {
		t.Error("negative depth must be rejected before fetching")
	}
}

func TestBuildFetchError(t *testing.T) {
	fetchErr := errors.New(errors.ErrCodeRegistryUnavailable, "pypi.org returned status 503")
	g, err := quietAssembler(&fakeFetcher{err: fetchErr}, PolicyStrict).Build(context.Background(), "pandas", 1)
	if g != nil {
		t.Error("expected no graph on fetch failure")
	}
	if err != fetchErr {
		t.Errorf("error = %v, want fetch error unchanged", err)
	}
}

func TestBuildUnparseablePolicies(t *testing.T) {
	meta := &pypi.PackageMetadata{
		Name:         "demo",
		Version:      "1.0",
		RequiresDist: []string{"ok>=1", "=== broken", "also-ok==2"},
	}

	t.Run("strict", func(t *testing.T) {
		g, err := quietAssembler(&fakeFetcher{meta: meta}, PolicyStrict).Build(context.Background(), "demo", 3)
		if g != nil {
			t.Error("strict policy must not return a partial graph")
		}
		if !errors.Is(err, errors.ErrCodeUnparseableDeclaration) {
			t.Errorf("error = %v, want %s", err, errors.ErrCodeUnparseableDeclaration)
		}
	})

	t.Run("strict ignores declarations beyond depth", func(t *testing.T) {
		g, err := quietAssembler(&fakeFetcher{meta: meta}, PolicyStrict).Build(context.Background(), "demo", 1)
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if g.NodeCount() != 2 {
			t.Errorf("NodeCount = %d, want 2", g.NodeCount())
		}
	})

	t.Run("placeholder", func(t *testing.T) {
		g, err := quietAssembler(&fakeFetcher{meta: meta}, PolicyPlaceholder).Build(context.Background(), "demo", 3)
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		if g.NodeCount() != 4 || g.EdgeCount() != 3 {
			t.Errorf("got %d nodes %d edges, want 4 and 3", g.NodeCount(), g.EdgeCount())
		}
		n, _ := g.Node(2)
		if n.Name() != "=== broken" || n.Version() != "" || n.Meta[MetaUnparsed] != true {
			t.Errorf("placeholder node = %v", n.Meta)
		}
		n3, _ := g.Node(3)
		if n3.Name() != "also-ok" || n3.Version() != "2" {
			t.Errorf("node 3 = %v", n3.Meta)
		}
	})
}

func TestBuildOtherComparators(t *testing.T) {
	meta := &pypi.PackageMetadata{
		Name:         "demo",
		Version:      "1.0",
		RequiresDist: []string{"a==1.0", "b~=2.1", "c", "d<3", "e!=4"},
	}
	g, err := quietAssembler(&fakeFetcher{meta: meta}, PolicyStrict).Build(context.Background(), "demo", 5)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := map[int][2]string{1: {"a", "1.0"}, 2: {"b", "2.1"}, 3: {"c", ""}, 4: {"d", "3"}, 5: {"e", "4"}}
	for id, w := range want {
		n, _ := g.Node(id)
		if n.Name() != w[0] || n.Version() != w[1] {
			t.Errorf("node %d = {%s %s}, want {%s %s}", id, n.Name(), n.Version(), w[0], w[1])
		}
	}
}

func TestBuildEmitsHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	h := &recordingGraphHooks{}
	observability.SetGraphHooks(h)

	_, _ = quietAssembler(&fakeFetcher{meta: pandas()}, PolicyStrict).Build(context.Background(), "pandas", 2)
	_, _ = quietAssembler(&fakeFetcher{meta: pandas()}, PolicyStrict).Build(context.Background(), "pandas", 99)

	if h.starts != 2 || len(h.completions) != 2 {
		t.Fatalf("starts=%d completions=%d, want 2 and 2", h.starts, len(h.completions))
	}
	if h.completions[0].nodes != 3 || h.completions[0].err != nil {
		t.Errorf("first completion = %+v", h.completions[0])
	}
	if h.completions[1].nodes != 0 || !errors.Is(h.completions[1].err, errors.ErrCodeInsufficientDeps) {
		t.Errorf("second completion = %+v", h.completions[1])
	}
}

func TestBuildThroughRegistryClient(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    errors.Code
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			code: errors.ErrCodeRegistryUnavailable,
		},
		{
			name: "missing requires_dist",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"info": {"name": "pandas", "version": "2.2.3"}}`))
			},
			code: errors.ErrCodeMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := pypi.NewClient(pypi.Options{BaseURL: server.URL, Timeout: 5 * time.Second})
			g, err := quietAssembler(client, PolicyStrict).Build(context.Background(), "pandas", 1)
			if g != nil {
				t.Error("expected no graph")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"info": {"name": "requests", "version": "2.32.3",
				"requires_dist": ["charset-normalizer<4,>=2", "idna<4,>=2.5", "urllib3<3,>=1.21.1", "certifi>=2017.4.17"]}}`))
		}))
		defer server.Close()

		client := pypi.NewClient(pypi.Options{BaseURL: server.URL})
		g, err := quietAssembler(client, PolicyStrict).Build(context.Background(), "requests", 4)
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		n, _ := g.Node(1)
		if n.Name() != "charset-normalizer" || n.Version() != "4,>=2" {
			t.Errorf("node 1 = %v", n.Meta)
		}
		n4, _ := g.Node(4)
		if n4.Name() != "certifi" || n4.Version() != "2017.4.17" {
			t.Errorf("node 4 = %v", n4.Meta)
		}
	})
}

func TestParsePolicyString(t *testing.T) {
	if PolicyStrict.String() != "strict" || PolicyPlaceholder.String() != "placeholder" {
		t.Errorf("String() = %q, %q", PolicyStrict, PolicyPlaceholder)
	}
}

type completion struct {
	nodes int
	err   error
}

type recordingGraphHooks struct {
	observability.NoopGraphHooks
	starts      int
	completions []completion
}

func (h *recordingGraphHooks) OnBuildStart(context.Context, string, int) { h.starts++ }

func (h *recordingGraphHooks) OnBuildComplete(_ context.Context, _ string, n int, _ time.Duration, err error) {
	h.completions = append(h.completions, completion{n, err})
}
