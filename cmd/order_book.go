package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mselser95/nft-market/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var orderBookCmd = &cobra.Command{
	Use:   "order-book",
	Short: "List live verified orders for a token",
	Long: `Prints the verified, unexpired orders for one token. Sells are listed
cheapest first and only include listings by the current owner; offers are
listed highest first.`,
	RunE: runOrderBook,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(orderBookCmd)
	orderBookCmd.Flags().StringP("contract", "c", "", "NFT contract address")
	orderBookCmd.Flags().StringP("token-id", "t", "", "Token id (decimal or 0x hex)")
	orderBookCmd.Flags().String("side", "sell", "Book side: sell or offer")
	_ = orderBookCmd.MarkFlagRequired("contract")
	_ = orderBookCmd.MarkFlagRequired("token-id")
}

func runOrderBook(cmd *cobra.Command, args []string) error {
	contract, _ := cmd.Flags().GetString("contract")
	tokenID, _ := cmd.Flags().GetString("token-id")
	side, _ := cmd.Flags().GetString("side")

	if side != "sell" && side != "offer" {
		return fmt.Errorf("invalid side: %s. Valid options: sell, offer", side)
	}

	application, _, cleanup, err := loadApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var orders []*types.Order
	if side == "sell" {
		orders, err = application.Orders().GetSellOrders(ctx, contract, tokenID)
	} else {
		orders, err = application.Orders().GetOfferOrders(ctx, contract, tokenID)
	}
	if err != nil {
		return fmt.Errorf("get %s orders: %w", side, err)
	}

	if len(orders) == 0 {
		fmt.Println("No live orders found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tMAKER\tPRICE (WEI)\tEXPIRES\n")
	fmt.Fprintf(w, "--\t-----\t-----------\t-------\n")

	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			o.ID, o.Maker, formatWei(o.Price), time.Unix(o.ExpirationTime, 0).UTC().Format(time.RFC3339))
	}

	w.Flush()

	fmt.Printf("\nTotal: %d %s orders\n", len(orders), side)

	return nil
}

// formatWei renders a 64-hex-digit price as a decimal string.
func formatWei(hexPrice string) string {
	n, ok := new(big.Int).SetString(hexPrice, 16)
	if !ok {
		return hexPrice
	}
	return n.String()
}
