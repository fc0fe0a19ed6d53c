package caption

import "github.com/marcus/modeldeck/internal/adapter"

func init() {
	adapter.RegisterFactory(30, func(opts adapter.Options) adapter.Adapter {
		return New(opts.Logger)
	})
}
