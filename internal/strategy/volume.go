package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/imbonda/mm-bot/internal/domain"
)

// fallbackSpreadHeight is the relative height of the synthetic spread built
// around the oracle price when a book side has no resting liquidity.
const fallbackSpreadHeight = 0.01

// VolumeConfig holds the volume quoter parameters.
type VolumeConfig struct {
	Symbol       string  // managed-venue pair
	OracleSymbol string  // oracle pair, used only for the fallback spread
	Depth        int     // book levels fetched per side
	MarginLower  float64 // lower bound of the price point inside the spread
	MarginUpper  float64 // upper bound of the price point inside the spread
	MinAmount    float64 // minimum order amount, base asset
	MaxAmount    float64 // maximum order amount, base asset
}

// VolumeQuoter places one symmetric ask/bid pair at a random price inside the
// live spread. It never diffs against existing orders; every round only adds
// liquidity.
type VolumeQuoter struct {
	venue  domain.Exchange
	oracle domain.Oracle
	cfg    VolumeConfig
	rng    *rand.Rand
	logger *slog.Logger
}

var _ Strategy = (*VolumeQuoter)(nil)

// NewVolumeQuoter creates a volume quoter trading on venue.
func NewVolumeQuoter(venue domain.Exchange, oracle domain.Oracle, cfg VolumeConfig, logger *slog.Logger) *VolumeQuoter {
	return &VolumeQuoter{
		venue:  venue,
		oracle: oracle,
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logger.With(slog.String("component", "volume")),
	}
}

func (q *VolumeQuoter) Name() string { return "volume" }

// Run executes one volume round.
func (q *VolumeQuoter) Run(ctx context.Context) error {
	book, err := q.venue.GetOrderBook(ctx, q.cfg.Symbol, q.cfg.Depth)
	if err != nil {
		return fmt.Errorf("volume: fetch order book: %w", err)
	}

	bid, ask, err := q.spreadBounds(ctx, book)
	if err != nil {
		return err
	}

	price := randomInRange(q.rng,
		bid+(ask-bid)*q.cfg.MarginLower,
		bid+(ask-bid)*q.cfg.MarginUpper,
	)
	amount := randomInRange(q.rng, q.cfg.MinAmount, q.cfg.MaxAmount)

	q.logger.InfoContext(ctx, "adding volume",
		slog.String("symbol", q.cfg.Symbol),
		slog.Float64("price", price),
		slog.Float64("amount", amount),
	)

	pair := []domain.Order{
		{Symbol: q.cfg.Symbol, Price: price, Amount: amount, Side: domain.SideAsk, Type: domain.OrderTypeLimit},
		{Symbol: q.cfg.Symbol, Price: price, Amount: amount, Side: domain.SideBid, Type: domain.OrderTypeLimit},
	}
	for _, res := range q.venue.PlaceOrders(ctx, pair) {
		if res.Err != nil {
			q.logger.ErrorContext(ctx, "volume placement failed",
				slog.String("side", string(res.Order.Side)),
				slog.String("error", res.Err.Error()),
			)
		}
	}
	return nil
}

// spreadBounds returns the best bid and ask to quote between. When a side of
// the book is empty, a synthetic spread of fixed relative height is built
// around the oracle's last price, bid side first.
func (q *VolumeQuoter) spreadBounds(ctx context.Context, book domain.OrderBook) (bid, ask float64, err error) {
	bestBid, haveBid := book.BestBid()
	bestAsk, haveAsk := book.BestAsk()
	bid, ask = bestBid.Price, bestAsk.Price
	if haveBid && haveAsk {
		return bid, ask, nil
	}

	ticker, err := q.oracle.GetLastTicker(ctx, q.cfg.OracleSymbol)
	if err != nil {
		return 0, 0, fmt.Errorf("volume: fetch oracle ticker: %w", err)
	}
	if !ticker.HasLastPrice() {
		return 0, 0, fmt.Errorf("volume: oracle ticker %s: %w", q.cfg.OracleSymbol, domain.ErrNoTicker)
	}

	if !haveBid {
		bid = max(0, ticker.LastPrice) * (1 - fallbackSpreadHeight/2)
	}
	if !haveAsk {
		ask = max(bid, ticker.LastPrice) * (1 + fallbackSpreadHeight/2)
	}
	return bid, ask, nil
}
