package textimage

import "github.com/marcus/modeldeck/internal/adapter"

func init() {
	adapter.RegisterFactory(40, func(opts adapter.Options) adapter.Adapter {
		return New(opts.ArtifactDir, opts.Logger)
	})
}
