package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/nft-market/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verifyOrderCmd = &cobra.Command{
	Use:   "verify-order <order-id>",
	Short: "Verify a signed order against on-chain state",
	Long: `Runs the same verification as POST /orders/{id}/verify: proxy and approval
checks for sells, allowance and balance checks for offers, then the exchange's
own signature check. On success the order is marked verified.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifyOrder,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(verifyOrderCmd)
	verifyOrderCmd.Flags().String("r", "", "Signature r (32 bytes hex)")
	verifyOrderCmd.Flags().String("s", "", "Signature s (32 bytes hex)")
	verifyOrderCmd.Flags().Uint8("v", 27, "Signature recovery id")
	verifyOrderCmd.Flags().Duration("timeout", 30*time.Second, "Overall verification timeout")
	_ = verifyOrderCmd.MarkFlagRequired("r")
	_ = verifyOrderCmd.MarkFlagRequired("s")
}

func runVerifyOrder(cmd *cobra.Command, args []string) error {
	r, _ := cmd.Flags().GetString("r")
	s, _ := cmd.Flags().GetString("s")
	v, _ := cmd.Flags().GetUint8("v")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	application, logger, cleanup, err := loadApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res := application.Orders().ValidateOrder(ctx, args[0], types.OrderSig{R: r, S: s, V: v})
	if res.Err != nil {
		logger.Debug("verify-order-detail", zap.Error(res.Err))
	}

	fmt.Printf("Order:    %s\n", args[0])
	fmt.Printf("Verified: %v\n", res.OK())
	fmt.Printf("Reason:   %s\n", res.Reason)

	if !res.OK() {
		return fmt.Errorf("order not verified: %s", res.Reason)
	}

	return nil
}
