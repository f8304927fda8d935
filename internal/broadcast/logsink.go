package broadcast

import "github.com/rs/zerolog"

// LogSink writes every event to a zerolog.Logger, the always-on local
// sink (spec.md §6: "Sinks may be remote... or local (logging)").
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "broadcast").Logger()}
}

func (s *LogSink) OnTradeExecuted(ev Event) {
	s.log.Info().
		Str("transactionId", ev.Trade.TransactionID).
		Str("product", ev.Trade.ProductID).
		Int("qty", ev.Trade.Quantity).
		Str("price", ev.Trade.PricePerUnit.String()).
		Str("buyer", ev.Trade.BuyerOutletID).
		Str("seller", ev.Trade.SellerOutletID).
		Msg("trade executed")
}

func (s *LogSink) OnBookUpdated(ev Event) {
	s.log.Debug().Str("product", ev.ProductID).Msg("book updated")
}

func (s *LogSink) OnCustomerPurchased(ev Event) {
	s.log.Info().
		Str("saleId", ev.Sale.SaleID).
		Str("outlet", ev.Sale.OutletID).
		Str("product", ev.Sale.ProductID).
		Int("qty", ev.Sale.Quantity).
		Str("revenue", ev.Sale.Revenue.String()).
		Str("profit", ev.Sale.Profit.String()).
		Msg("customer purchase")
}

func (s *LogSink) OnError(ev Event) {
	s.log.Error().Str("source", ev.Source).Msg(ev.Message)
}
