package imageclass

import "github.com/marcus/modeldeck/internal/adapter"

func init() {
	adapter.RegisterFactory(20, func(opts adapter.Options) adapter.Adapter {
		return New(opts.Logger)
	})
}
