package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/mselser95/nft-market/internal/mint"
	"github.com/mselser95/nft-market/pkg/hexcodec"
)

//nolint:gochecknoglobals // Cobra boilerplate
var lazyTokenIDCmd = &cobra.Command{
	Use:   "lazy-token-id",
	Short: "Compute a lazy-mint token id for a creator",
	Long: `Computes creator || index token ids for lazily minted tokens. Pass --index
for an explicit index, or --last with the creator's most recent token id to
get the next one.`,
	RunE: runLazyTokenID,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(lazyTokenIDCmd)
	lazyTokenIDCmd.Flags().StringP("creator", "c", "", "Creator address")
	lazyTokenIDCmd.Flags().Uint64P("index", "i", 0, "Token index (starts at 1)")
	lazyTokenIDCmd.Flags().String("last", "", "Creator's most recent lazy token id")
	_ = lazyTokenIDCmd.MarkFlagRequired("creator")
}

func runLazyTokenID(cmd *cobra.Command, args []string) error {
	creatorHex, _ := cmd.Flags().GetString("creator")
	index, _ := cmd.Flags().GetUint64("index")
	last, _ := cmd.Flags().GetString("last")

	creator, err := hexcodec.ParseAddress(creatorHex)
	if err != nil {
		return fmt.Errorf("parse creator: %w", err)
	}

	index, encoded, err := resolveLazyTokenID(creator, index, last)
	if err != nil {
		return err
	}

	id, err := hexcodec.DecodeUint256(encoded)
	if err != nil {
		return fmt.Errorf("decode token id: %w", err)
	}

	fmt.Printf("Index:    %d\n", index)
	fmt.Printf("Token id: %s\n", id.String())
	fmt.Printf("Hex:      %s\n", encoded)

	return nil
}

// resolveLazyTokenID picks the explicit index, or the one after last, and
// returns it with the encoded token id.
func resolveLazyTokenID(creator common.Address, index uint64, last string) (uint64, string, error) {
	if index == 0 {
		next, err := nextLazyIndex(creator, last)
		if err != nil {
			return 0, "", err
		}
		index = next
	}

	encoded, err := mint.EncodeLazyTokenID(creator, index)
	if err != nil {
		return 0, "", fmt.Errorf("compute token id: %w", err)
	}

	return index, encoded, nil
}

func nextLazyIndex(creator common.Address, last string) (uint64, error) {
	if last == "" {
		return mint.NextIndex(creator, nil)
	}

	lastID, err := hexcodec.ParseUint256(last)
	if err != nil {
		return 0, fmt.Errorf("parse last token id: %w", err)
	}

	return mint.NextIndex(creator, lastID)
}
