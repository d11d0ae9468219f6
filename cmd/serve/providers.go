package serve

import (
	"time"

	"github.com/sig-0/remesas/aggregate"
	"github.com/sig-0/remesas/provider/binance"
	"github.com/sig-0/remesas/provider/erapi"
	"github.com/sig-0/remesas/provider/ves"
)

// DefaultSources returns the default rate sources, in merge priority order
func DefaultSources(timeout time.Duration) []aggregate.Source {
	return []aggregate.Source{
		// DolarAPI official and parallel USD/VES
		ves.NewDolarAPIOfficialProvider(ves.DolarAPIOfficialURL, timeout),
		ves.NewDolarAPIParallelProvider(ves.DolarAPIParallelURL, timeout),

		// USD/COP and EUR/USD forex
		erapi.NewProvider(erapi.LatestUSDURL, timeout),

		// Official BCV EUR/VES (and USD/VES) rates
		ves.NewBCVAPIProvider(ves.BCVAPIURL, timeout),
		ves.NewBCVProvider(ves.BCVURL, timeout),

		// Binance P2P USDT medians
		binance.NewCOPBuyProvider(binance.P2PURL, timeout),
		binance.NewVESSellProvider(binance.P2PURL, timeout),
	}
}

// NewAggregator creates an aggregator with the default sources registered
func NewAggregator(timeout time.Duration, opts ...aggregate.Option) (*aggregate.Aggregator, error) {
	agg := aggregate.New(append([]aggregate.Option{aggregate.WithSourceTimeout(timeout)}, opts...)...)

	for _, src := range DefaultSources(timeout) {
		if err := agg.Register(src); err != nil {
			return nil, err
		}
	}

	return agg, nil
}
