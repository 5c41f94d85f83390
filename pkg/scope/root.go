package scope

import (
	"context"
	"io/fs"
	"iter"
	"net/url"

	"github.com/matzehuels/scopegraph/pkg/artifact"
)

type empty struct{}

// Empty returns a Loader that never finds anything. It is the root context
// of graphs that do not name one.
func Empty() Loader { return empty{} }

func (empty) ResolveUnit(context.Context, string) (*artifact.Unit, bool, error) {
	return nil, false, nil
}

func (empty) ResolveResource(context.Context, string) (*url.URL, bool, error) {
	return nil, false, nil
}

func (empty) ResolveResources(context.Context, string) iter.Seq2[*url.URL, error] {
	return emptySeq
}

// NewBundleRoot returns a root context serving units and resources from
// fsys under the bundle name. Resources resolve to "bundle://name/..."
// locations, which an [artifact.Opener] can open when the same filesystem is
// registered in its Bundles.
func NewBundleRoot(name string, fsys fs.FS) (*Scope, error) {
	return New(Config{
		Name:      name,
		Artifacts: artifact.NewSet(artifact.NewBundleSource(name, fsys)),
		Strategy:  SPI,
	})
}
