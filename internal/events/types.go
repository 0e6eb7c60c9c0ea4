// internal/events/types.go
package events

import (
	"math/big"
	"time"

	"github.com/pumpforge/launchpad/internal/types"
)

// EventType represents the type of event.
type EventType string

const (
	// TokenCreated is emitted once per factory createToken call.
	TokenCreated EventType = "token.created"

	// Bought and Sold are emitted once per successful trade, in call order.
	Bought EventType = "trade.bought"
	Sold   EventType = "trade.sold"

	// CurveCompleted is emitted exactly once per curve, at migration.
	CurveCompleted EventType = "curve.completed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now().UTC()}
}

// TokenCreatedEvent carries the addresses and metadata of a new launch pair.
type TokenCreatedEvent struct {
	BaseEvent
	Token       types.Address
	Curve       types.Address
	Name        string
	Symbol      string
	MetadataURI string
	Creator     types.Address
}

// NewTokenCreatedEvent builds a TokenCreatedEvent stamped with the current time.
func NewTokenCreatedEvent(token, curve types.Address, name, symbol, uri string, creator types.Address) TokenCreatedEvent {
	return TokenCreatedEvent{
		BaseEvent:   newBase(TokenCreated),
		Token:       token,
		Curve:       curve,
		Name:        name,
		Symbol:      symbol,
		MetadataURI: uri,
		Creator:     creator,
	}
}

// BoughtEvent is emitted for every successful buy.
type BoughtEvent struct {
	BaseEvent
	Curve     types.Address
	Token     types.Address
	Buyer     types.Address
	EthIn     *big.Int
	TokensOut *big.Int
	FeePaid   *big.Int
}

// NewBoughtEvent builds a BoughtEvent stamped with the current time.
func NewBoughtEvent(curve, token, buyer types.Address, ethIn, tokensOut, feePaid *big.Int) BoughtEvent {
	return BoughtEvent{
		BaseEvent: newBase(Bought),
		Curve:     curve,
		Token:     token,
		Buyer:     buyer,
		EthIn:     new(big.Int).Set(ethIn),
		TokensOut: new(big.Int).Set(tokensOut),
		FeePaid:   new(big.Int).Set(feePaid),
	}
}

// SoldEvent is emitted for every successful sell.
type SoldEvent struct {
	BaseEvent
	Curve    types.Address
	Token    types.Address
	Seller   types.Address
	TokensIn *big.Int
	EthOut   *big.Int
	FeePaid  *big.Int
}

// NewSoldEvent builds a SoldEvent stamped with the current time.
func NewSoldEvent(curve, token, seller types.Address, tokensIn, ethOut, feePaid *big.Int) SoldEvent {
	return SoldEvent{
		BaseEvent: newBase(Sold),
		Curve:     curve,
		Token:     token,
		Seller:    seller,
		TokensIn:  new(big.Int).Set(tokensIn),
		EthOut:    new(big.Int).Set(ethOut),
		FeePaid:   new(big.Int).Set(feePaid),
	}
}

// CurveCompletedEvent is emitted when a curve graduates to the external
// exchange.
type CurveCompletedEvent struct {
	BaseEvent
	Curve           types.Address
	Token           types.Address
	Pool            types.Address
	LiquidityEth    *big.Int
	LiquidityTokens *big.Int
}

// NewCurveCompletedEvent builds a CurveCompletedEvent stamped with the
// current time.
func NewCurveCompletedEvent(curve, token, pool types.Address, liquidityEth, liquidityTokens *big.Int) CurveCompletedEvent {
	return CurveCompletedEvent{
		BaseEvent:       newBase(CurveCompleted),
		Curve:           curve,
		Token:           token,
		Pool:            pool,
		LiquidityEth:    new(big.Int).Set(liquidityEth),
		LiquidityTokens: new(big.Int).Set(liquidityTokens),
	}
}
