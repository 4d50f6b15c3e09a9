// Package nft resolves ERC-721 collection metadata through the NFT API
// provider and keeps it in the local store and cache.
package nft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mselser95/nft-market/pkg/types"
)

const tokenTypeERC721 = "ERC721"

// MetadataClient fetches collection metadata from the provider's
// getContractMetadata endpoint.
type MetadataClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewMetadataClient creates a new metadata client.
func NewMetadataClient(baseURL, apiKey string, timeout time.Duration) *MetadataClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &MetadataClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type contractMetadataResponse struct {
	Address          string `json:"address"`
	ContractMetadata struct {
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		TotalSupply string `json:"totalSupply"`
		TokenType   string `json:"tokenType"`
		OpenSea     *struct {
			ImageURL    string `json:"imageUrl"`
			Description string `json:"description"`
		} `json:"openSea"`
	} `json:"contractMetadata"`
}

// FetchContractMetadata returns the collection's metadata. Any transport or
// provider failure is reported as types.ErrNotNFTContract; a contract that is
// not ERC-721 as types.ErrNotERC721.
func (c *MetadataClient) FetchContractMetadata(ctx context.Context, address string) (*types.NFTContract, error) {
	start := time.Now()
	defer func() {
		MetadataFetchDuration.Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/nft/v2/%s/getContractMetadata?contractAddress=%s",
		c.baseURL, url.PathEscape(c.apiKey), url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		MetadataFetchErrorsTotal.Inc()
		return nil, fmt.Errorf("%w: %v", types.ErrNotNFTContract, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		MetadataFetchErrorsTotal.Inc()
		return nil, fmt.Errorf("%w: API status %d", types.ErrNotNFTContract, resp.StatusCode)
	}

	var data contractMetadataResponse
	err = json.NewDecoder(resp.Body).Decode(&data)
	if err != nil {
		MetadataFetchErrorsTotal.Inc()
		return nil, fmt.Errorf("%w: decode response: %v", types.ErrNotNFTContract, err)
	}

	meta := data.ContractMetadata
	if meta.TokenType != tokenTypeERC721 {
		return nil, fmt.Errorf("%w: token type %q", types.ErrNotERC721, meta.TokenType)
	}

	contract := &types.NFTContract{
		ContractAddress: address,
		Name:            meta.Name,
		Symbol:          meta.Symbol,
		TotalSupply:     meta.TotalSupply,
		Synced:          false,
	}
	if meta.OpenSea != nil {
		contract.Description = meta.OpenSea.Description
		contract.Image = meta.OpenSea.ImageURL
	}

	return contract, nil
}
