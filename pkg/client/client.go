// Package client is the Go adapter for an Nftmart marketplace server.
// It resolves the server from a deployment file, authenticates with a
// secp256k1 wallet key and exposes the marketplace operations with
// ether-denominated prices.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/nftmart/nftmart-api/internal/models"
	"github.com/nftmart/nftmart-api/internal/services"
)

// ErrNotAuthenticated is returned by mutating calls before Login has
// succeeded, or when no private key was configured.
var ErrNotAuthenticated = errors.New("client is not authenticated, call Login first")

// Config configures the marketplace client. BaseURL wins over
// DeploymentFile when both are set. PrivateKeyHex may be empty for a
// read-only client.
type Config struct {
	BaseURL        string
	DeploymentFile string
	PrivateKeyHex  string
	Timeout        time.Duration
}

// Nft is the client-side view of a listing with prices in ether.
type Nft struct {
	ID          uint64
	Name        string
	Description string
	ImageURL    string
	Owner       string
	Price       float64
	Timestamp   int64
	EndTime     int64
	Deleted     bool
	Minted      bool
	PaidOut     bool
	Refunded    bool
}

// Sale is the client-side view of a sale record with prices in ether.
type Sale struct {
	ID        uint64
	NftID     uint64
	Owner     string
	Price     float64
	Timestamp int64
	EndTime   int64
	Minted    bool
	Refunded  bool
}

// NftParams describes a listing to create or reprice.
type NftParams struct {
	Name        string
	Description string
	ImageURL    string
	Price       float64
	EndTime     int64
}

// Client talks to a marketplace server.
type Client struct {
	baseURL string
	http    *http.Client
	priv    *btcec.PrivateKey

	token   string
	address string
}

// New constructs a client. The server address comes from cfg.BaseURL or,
// failing that, the deployment file written by the server on boot.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		resolved, err := LoadDeployment(cfg.DeploymentFile)
		if err != nil {
			return nil, err
		}
		baseURL = resolved
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}

	if cfg.PrivateKeyHex != "" {
		raw, err := hex.DecodeString(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		priv, _ := btcec.PrivKeyFromBytes(raw)
		c.priv = priv
		c.address = services.AddressFromPubKey(priv.PubKey())
	}
	return c, nil
}

// Address returns the wallet address derived from the configured key,
// or the empty string for a read-only client.
func (c *Client) Address() string {
	return c.address
}

// Login performs the challenge/response handshake and stores the
// resulting token for subsequent calls.
func (c *Client) Login(ctx context.Context) error {
	if c.priv == nil {
		return ErrNotAuthenticated
	}

	var challenge models.AuthChallenge
	err := c.do(ctx, http.MethodPost, "/api/auth/challenge", models.ChallengeRequest{Address: c.address}, &challenge)
	if err != nil {
		return err
	}

	var token models.AuthToken
	err = c.do(ctx, http.MethodPost, "/api/auth/verify", models.VerifyRequest{
		ID:        challenge.ID,
		Address:   c.address,
		Signature: services.SignMessage(c.priv, challenge.Message),
	}, &token)
	if err != nil {
		return err
	}

	c.token = token.Token
	return nil
}

// CreateNft lists an nft for sale and returns it.
func (c *Client) CreateNft(ctx context.Context, params NftParams) (*Nft, error) {
	body, err := toWireParams(params)
	if err != nil {
		return nil, err
	}
	var nft models.Nft
	if err := c.doAuth(ctx, http.MethodPost, "/api/nfts", body, &nft); err != nil {
		return nil, err
	}
	return fromWireNft(&nft), nil
}

// UpdateNft changes the price of a listing the caller owns.
func (c *Client) UpdateNft(ctx context.Context, id uint64, params NftParams) (*Nft, error) {
	body, err := toWireParams(params)
	if err != nil {
		return nil, err
	}
	var nft models.Nft
	if err := c.doAuth(ctx, http.MethodPut, fmt.Sprintf("/api/nfts/%d", id), body, &nft); err != nil {
		return nil, err
	}
	return fromWireNft(&nft), nil
}

// DeleteNft takes a listing the caller owns off the market.
func (c *Client) DeleteNft(ctx context.Context, id uint64) error {
	return c.doAuth(ctx, http.MethodDelete, fmt.Sprintf("/api/nfts/%d", id), nil, nil)
}

// BuyNft purchases a listing at its asking price.
func (c *Client) BuyNft(ctx context.Context, nft *Nft) (*Nft, error) {
	value, err := EtherToWei(nft.Price)
	if err != nil {
		return nil, err
	}
	var bought models.Nft
	err = c.doAuth(ctx, http.MethodPost, fmt.Sprintf("/api/nfts/%d/buy", nft.ID), models.BuyRequest{Value: value}, &bought)
	if err != nil {
		return nil, err
	}
	return fromWireNft(&bought), nil
}

// Payout releases the escrowed proceeds of a sold nft to its seller.
func (c *Client) Payout(ctx context.Context, id uint64) error {
	return c.doAuth(ctx, http.MethodPost, fmt.Sprintf("/api/nfts/%d/payout", id), nil, nil)
}

// MintNft marks an nft the caller owns as minted.
func (c *Client) MintNft(ctx context.Context, id uint64) error {
	return c.doAuth(ctx, http.MethodPost, fmt.Sprintf("/api/nfts/%d/mint", id), nil, nil)
}

// TransferOwnership hands an nft the caller owns to another wallet.
func (c *Client) TransferOwnership(ctx context.Context, id uint64, newOwner string) error {
	return c.doAuth(ctx, http.MethodPost, fmt.Sprintf("/api/nfts/%d/transfer", id), models.TransferRequest{NewOwner: newOwner}, nil)
}

// GetAllNfts returns every active listing, newest first.
func (c *Client) GetAllNfts(ctx context.Context) ([]*Nft, error) {
	var nfts []*models.Nft
	if err := c.do(ctx, http.MethodGet, "/api/nfts", nil, &nfts); err != nil {
		return nil, err
	}
	return fromWireNfts(nfts), nil
}

// GetSingleNft returns one listing by id.
func (c *Client) GetSingleNft(ctx context.Context, id uint64) (*Nft, error) {
	var nft models.Nft
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/nfts/%d", id), nil, &nft); err != nil {
		return nil, err
	}
	return fromWireNft(&nft), nil
}

// GetMyNfts returns the authenticated wallet's listings.
func (c *Client) GetMyNfts(ctx context.Context) ([]*Nft, error) {
	var nfts []*models.Nft
	if err := c.doAuth(ctx, http.MethodGet, "/api/nfts/mine", nil, &nfts); err != nil {
		return nil, err
	}
	return fromWireNfts(nfts), nil
}

// GetAllSales returns the full sales ledger, newest first.
func (c *Client) GetAllSales(ctx context.Context) ([]*Sale, error) {
	var sales []*models.Sale
	if err := c.do(ctx, http.MethodGet, "/api/sales", nil, &sales); err != nil {
		return nil, err
	}
	return fromWireSales(sales), nil
}

// GetSale returns the sale history of one nft.
func (c *Client) GetSale(ctx context.Context, nftID uint64) ([]*Sale, error) {
	var sales []*models.Sale
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/sales/nft/%d", nftID), nil, &sales); err != nil {
		return nil, err
	}
	return fromWireSales(sales), nil
}

// GetMySales returns sales where the authenticated wallet was the buyer.
func (c *Client) GetMySales(ctx context.Context) ([]*Sale, error) {
	var sales []*models.Sale
	if err := c.doAuth(ctx, http.MethodGet, "/api/sales/mine", nil, &sales); err != nil {
		return nil, err
	}
	return fromWireSales(sales), nil
}

// Balance returns the settled ether balance of a wallet address.
func (c *Client) Balance(ctx context.Context, address string) (float64, error) {
	var balance models.Balance
	if err := c.do(ctx, http.MethodGet, "/api/balances/"+address, nil, &balance); err != nil {
		return 0, err
	}
	return WeiToEther(balance.Amount), nil
}

func (c *Client) doAuth(ctx context.Context, method, path string, body, out interface{}) error {
	if c.token == "" {
		return ErrNotAuthenticated
	}
	return c.do(ctx, method, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the server's error text unchanged
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("unexpected status %d from %s %s", resp.StatusCode, method, path)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func toWireParams(p NftParams) (*models.NftParams, error) {
	price, err := EtherToWei(p.Price)
	if err != nil {
		return nil, err
	}
	return &models.NftParams{
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       price,
		EndTime:     p.EndTime,
	}, nil
}

func fromWireNft(n *models.Nft) *Nft {
	return &Nft{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
		ImageURL:    n.ImageURL,
		Owner:       n.Owner,
		Price:       WeiToEther(n.Price),
		Timestamp:   n.Timestamp,
		EndTime:     n.EndTime,
		Deleted:     n.Deleted,
		Minted:      n.Minted,
		PaidOut:     n.PaidOut,
		Refunded:    n.Refunded,
	}
}

func fromWireNfts(nfts []*models.Nft) []*Nft {
	out := make([]*Nft, 0, len(nfts))
	for _, n := range nfts {
		out = append(out, fromWireNft(n))
	}
	return out
}

func fromWireSales(sales []*models.Sale) []*Sale {
	out := make([]*Sale, 0, len(sales))
	for _, s := range sales {
		out = append(out, &Sale{
			ID:        s.ID,
			NftID:     s.NftID,
			Owner:     s.Owner,
			Price:     WeiToEther(s.Price),
			Timestamp: s.Timestamp,
			EndTime:   s.EndTime,
			Minted:    s.Minted,
			Refunded:  s.Refunded,
		})
	}
	return out
}
