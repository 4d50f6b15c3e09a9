package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var nftContractCmd = &cobra.Command{
	Use:   "nft-contract <address>",
	Short: "Show collection metadata for an ERC-721 contract",
	Long: `Looks up collection metadata the same way the HTTP API does: cache, then
storage, then the NFT metadata API. Contracts that are not ERC-721 are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runNFTContract,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(nftContractCmd)
}

func runNFTContract(cmd *cobra.Command, args []string) error {
	application, _, cleanup, err := loadApp()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	contract, err := application.NFTs().GetNFTContract(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get nft contract: %w", err)
	}

	fmt.Printf("Address:      %s\n", contract.ContractAddress)
	fmt.Printf("Name:         %s\n", contract.Name)
	fmt.Printf("Symbol:       %s\n", contract.Symbol)
	if contract.TotalSupply != "" {
		fmt.Printf("Total supply: %s\n", contract.TotalSupply)
	}
	if contract.Description != "" {
		fmt.Printf("Description:  %s\n", contract.Description)
	}
	fmt.Printf("Synced:       %v\n", contract.Synced)

	return nil
}
