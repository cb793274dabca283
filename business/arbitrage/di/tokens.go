// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/arbitrage-scanner/business/arbitrage/app"
	"github.com/fd1az/arbitrage-scanner/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Calculator = di.NewToken[*app.Calculator]("arbitrage.Calculator")
	Detector   = di.NewToken[*app.Detector]("arbitrage.Detector")
)

// Private dependency tokens - internal to arbitrage module
var (
	Fees          = di.NewToken[*app.FeeTable]("arbitrage:fees")
	TransferCosts = di.NewToken[*app.TransferCostTable]("arbitrage:transferCosts")
	Reporter      = di.NewToken[app.Reporter]("arbitrage:reporter")
)

func GetCalculator(c di.ServiceRegistry) *app.Calculator {
	return di.GetToken(c, Calculator)
}

func GetDetector(c di.ServiceRegistry) *app.Detector {
	return di.GetToken(c, Detector)
}

func GetFees(c di.ServiceRegistry) *app.FeeTable {
	return di.GetToken(c, Fees)
}

func GetTransferCosts(c di.ServiceRegistry) *app.TransferCostTable {
	return di.GetToken(c, TransferCosts)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
