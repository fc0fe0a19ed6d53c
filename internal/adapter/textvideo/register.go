package textvideo

import "github.com/marcus/modeldeck/internal/adapter"

func init() {
	adapter.RegisterFactory(50, func(opts adapter.Options) adapter.Adapter {
		return New(opts.ArtifactDir, DefaultSettings(), opts.Logger)
	})
}
