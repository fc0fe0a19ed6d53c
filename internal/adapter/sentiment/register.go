package sentiment

import "github.com/marcus/modeldeck/internal/adapter"

func init() {
	adapter.RegisterFactory(10, func(opts adapter.Options) adapter.Adapter {
		return New(opts.LexiconPath, opts.Logger)
	})
}
