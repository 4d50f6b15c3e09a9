package order

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mselser95/nft-market/internal/calldata"
	"github.com/mselser95/nft-market/pkg/hexcodec"
	"github.com/mselser95/nft-market/pkg/types"
)

// Reason is the outcome of a verification attempt.
type Reason int

const (
	ReasonVerified Reason = iota
	ReasonAlreadyVerified
	ReasonOrderMissing
	ReasonMalformedOrder
	ReasonProxyMissing
	ReasonNotApproved
	ReasonOwnershipMismatch
	ReasonInsufficientAllowance
	ReasonInsufficientBalance
	ReasonSignatureInvalid
	ReasonExternalCallFailed
	ReasonConflict
)

var reasonNames = map[Reason]string{
	ReasonVerified:              "verified",
	ReasonAlreadyVerified:       "already-verified",
	ReasonOrderMissing:          "order-missing",
	ReasonMalformedOrder:        "malformed-order",
	ReasonProxyMissing:          "proxy-missing",
	ReasonNotApproved:           "not-approved",
	ReasonOwnershipMismatch:     "ownership-mismatch",
	ReasonInsufficientAllowance: "insufficient-allowance",
	ReasonInsufficientBalance:   "insufficient-balance",
	ReasonSignatureInvalid:      "signature-invalid",
	ReasonExternalCallFailed:    "external-call-failed",
	ReasonConflict:              "conflict",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Result is the verdict of ValidateOrder. Err carries the underlying error
// for ExternalCallFailed and MalformedOrder.
type Result struct {
	Reason Reason
	Err    error
}

// OK reports whether the order is verified after the call.
func (r Result) OK() bool {
	return r.Reason == ReasonVerified || r.Reason == ReasonAlreadyVerified
}

// ValidateOrder checks the maker's on-chain preconditions and the exchange's
// signature check, then marks the order verified. Any failure leaves the
// stored order untouched.
func (s *Service) ValidateOrder(ctx context.Context, orderID string, sig types.OrderSig) Result {
	start := time.Now()

	res := s.validate(ctx, orderID, sig)

	VerificationDurationSeconds.Observe(time.Since(start).Seconds())
	VerificationsTotal.WithLabelValues(res.Reason.String()).Inc()

	if res.OK() {
		s.logger.Info("order-verified",
			zap.String("order-id", orderID),
			zap.Stringer("reason", res.Reason))
	} else {
		s.logger.Info("order-verification-failed",
			zap.String("order-id", orderID),
			zap.Stringer("reason", res.Reason),
			zap.Error(res.Err))
	}

	return res
}

func (s *Service) validate(ctx context.Context, orderID string, sig types.OrderSig) Result {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return Result{Reason: ReasonExternalCallFailed, Err: err}
	}

	if order == nil {
		return Result{Reason: ReasonOrderMissing}
	}

	if order.Verified {
		return Result{Reason: ReasonAlreadyVerified}
	}

	// Malformed signatures never reach the chain.
	if _, err = hexcodec.Bytes32(sig.R); err != nil {
		return Result{Reason: ReasonSignatureInvalid, Err: err}
	}
	if _, err = hexcodec.Bytes32(sig.S); err != nil {
		return Result{Reason: ReasonSignatureInvalid, Err: err}
	}

	so, err := DecodeRaw(order.Raw)
	if err != nil {
		return Result{Reason: ReasonMalformedOrder, Err: err}
	}

	err = checkMakerSlot(so, order.IsSell)
	if err != nil {
		return Result{Reason: ReasonMalformedOrder, Err: err}
	}

	var res Result
	if order.IsSell {
		res = s.checkSell(ctx, so)
	} else {
		res = s.checkOffer(ctx, so)
	}
	if res.Reason != ReasonVerified {
		return res
	}

	valid, err := s.chain.ValidateOrder(ctx, so, sig)
	if err != nil {
		return Result{Reason: ReasonExternalCallFailed, Err: err}
	}

	if !valid {
		return Result{Reason: ReasonSignatureInvalid}
	}

	updated, err := s.store.MarkVerified(ctx, orderID, sig.Concat())
	if err != nil {
		return Result{Reason: ReasonExternalCallFailed, Err: err}
	}

	if !updated {
		return Result{Reason: ReasonConflict}
	}

	return Result{Reason: ReasonVerified}
}

// checkSell requires a registered proxy with operator approval on the
// collection, and that the maker still owns the token.
func (s *Service) checkSell(ctx context.Context, so *types.SolidityOrder) Result {
	proxy, err := s.chain.ProxyOf(ctx, so.Maker)
	if err != nil {
		return Result{Reason: ReasonExternalCallFailed, Err: err}
	}

	if proxy == types.ZeroAddress {
		return Result{Reason: ReasonProxyMissing}
	}

	tokenID, err := calldata.TokenID(so.Calldata)
	if err != nil {
		return Result{Reason: ReasonMalformedOrder, Err: err}
	}

	var (
		approved bool
		owner    common.Address
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var callErr error
		approved, callErr = s.chain.IsApprovedForAll(gctx, so.Target, so.Maker, proxy)
		return callErr
	})
	g.Go(func() error {
		var callErr error
		owner, callErr = s.chain.OwnerOf(gctx, so.Target, tokenID)
		return callErr
	})

	err = g.Wait()
	if err != nil {
		return Result{Reason: ReasonExternalCallFailed, Err: err}
	}

	if !approved {
		return Result{Reason: ReasonNotApproved}
	}

	if addressInt(owner).Cmp(addressInt(so.Maker)) != 0 {
		return Result{Reason: ReasonOwnershipMismatch}
	}

	return Result{Reason: ReasonVerified}
}

// checkOffer requires the bidder to have approved and hold at least the
// offered amount of the payment token.
func (s *Service) checkOffer(ctx context.Context, so *types.SolidityOrder) Result {
	var allowance, balance *big.Int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var callErr error
		allowance, callErr = s.chain.Allowance(gctx, so.PaymentToken, so.Maker, s.exchange)
		return callErr
	})
	g.Go(func() error {
		var callErr error
		balance, callErr = s.chain.BalanceOf(gctx, so.PaymentToken, so.Maker)
		return callErr
	})

	err := g.Wait()
	if err != nil {
		return Result{Reason: ReasonExternalCallFailed, Err: err}
	}

	if allowance.Cmp(so.BasePrice) < 0 {
		return Result{Reason: ReasonInsufficientAllowance}
	}

	if balance.Cmp(so.BasePrice) < 0 {
		return Result{Reason: ReasonInsufficientBalance}
	}

	return Result{Reason: ReasonVerified}
}

// checkMakerSlot requires the maker in the fixed slot of the transfer: the
// sender for a sell, the recipient for an offer.
func checkMakerSlot(so *types.SolidityOrder, isSell bool) error {
	slot := calldata.SlotTo
	if isSell {
		slot = calldata.SlotFrom
	}

	party, err := calldata.Party(so.Calldata, slot)
	if err != nil {
		return fmt.Errorf("decode calldata: %w", err)
	}

	if party != so.Maker {
		return fmt.Errorf("calldata party %s does not match maker %s", party.Hex(), so.Maker.Hex())
	}

	return nil
}

func addressInt(a common.Address) *big.Int {
	return new(big.Int).SetBytes(a.Bytes())
}
