// Command gateway runs the JSON-RPC front end over a Substrate-family
// chain: one HTTP server exposing the flat eth_* method set plus a
// websocket endpoint for eth_subscribe("newHeads").
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/subclone/subeth/blockcache"
	"github.com/subclone/subeth/chainbackend"
	"github.com/subclone/subeth/ethapi"
	"github.com/subclone/subeth/gateway"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "subeth",
		Short: "Ethereum JSON-RPC gateway fronting a Substrate-family chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v)
		},
	}

	flags := cmd.Flags()
	flags.String("chain-spec", "", "path to a chain-spec file; mutually exclusive with --url")
	flags.String("url", "", "websocket URL of a Substrate JSON-RPC endpoint; mutually exclusive with --chain-spec")
	flags.Uint64("chain-id", 42, "chain id reported by eth_chainId")
	flags.Uint8("wrapper-pallet-index", 6, "pallet index of the on-chain adapter's dispatch call")
	flags.Uint8("wrapper-call-index", 0, "call index of the on-chain adapter's dispatch call")
	flags.Uint8("balances-pallet-index", 5, "pallet index of the Balances pallet")
	flags.Uint8("balances-transfer-allow-death-index", 0, "call index of Balances::transfer_allow_death")
	flags.Uint8("balances-transfer-keep-alive-index", 3, "call index of Balances::transfer_keep_alive")
	flags.Uint8("timestamp-pallet-index", 3, "pallet index of the Timestamp pallet")
	flags.Uint8("timestamp-set-call-index", 0, "call index of Timestamp::set")
	flags.Uint8("token-decimals", 12, "decimal exponent scaling the native balance up to wei")
	flags.String("rpc-bind", "0.0.0.0", "HTTP server bind address")
	flags.Int("rpc-port", 8545, "HTTP server port")
	flags.Int("max-connections", 0, "maximum concurrent connections, 0 for unlimited")
	flags.StringSlice("cors-domain", nil, "allowed CORS origins")
	flags.Int("ws-buffer-capacity", 64, "per-subscription websocket send buffer size")
	flags.Int("rate-limit", 0, "requests per second per connection, 0 to disable")
	flags.Int("cache-capacity", blockcache.DefaultCapacity, "number of recent blocks kept in the block cache")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	v.AutomaticEnv()

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	chainSpec := v.GetString("chain-spec")
	url := v.GetString("url")
	if (chainSpec == "") == (url == "") {
		return fmt.Errorf("exactly one of --chain-spec or --url must be set")
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, 30*time.Second)
	defer cancelDial()

	var backend chainbackend.Backend
	var err error
	switch {
	case url != "":
		backend, err = chainbackend.DialURL(dialCtx, url)
	default:
		backend, err = dialChainSpec(dialCtx, chainSpec)
	}
	if err != nil {
		return fmt.Errorf("connect to chain: %w", err)
	}

	client := gateway.New(backend, blockcache.New(v.GetInt("cache-capacity")), gateway.WrapperPallet{
		PalletIndex: uint8(v.GetUint("wrapper-pallet-index")),
		CallIndex:   uint8(v.GetUint("wrapper-call-index")),
	}, gateway.BalancesPallet{
		PalletIndex:             uint8(v.GetUint("balances-pallet-index")),
		TransferAllowDeathIndex: uint8(v.GetUint("balances-transfer-allow-death-index")),
		TransferKeepAliveIndex:  uint8(v.GetUint("balances-transfer-keep-alive-index")),
	}, gateway.TimestampPallet{
		PalletIndex:  uint8(v.GetUint("timestamp-pallet-index")),
		SetCallIndex: uint8(v.GetUint("timestamp-set-call-index")),
	}, v.GetUint64("chain-id"))

	meta := newMetadataCache(backend)
	svc := &ethapi.Service{
		Client:         client,
		TokenDecimals:  uint8(v.GetUint("token-decimals")),
		MetadataLookup: meta.lookup,
	}

	srv, err := newServer(svc, client, serverOptions{
		corsOrigins:      v.GetStringSlice("cors-domain"),
		maxConnections:   v.GetInt("max-connections"),
		messageBuffer:    v.GetInt("ws-buffer-capacity"),
		rateLimitPerConn: v.GetInt("rate-limit"),
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", v.GetString("rpc-bind"), v.GetInt("rpc-port"))
	httpServer := &http.Server{Addr: addr, Handler: srv}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-sigCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Close()
	return httpServer.Shutdown(shutdownCtx)
}

// dialChainSpec validates the chain-spec file but cannot itself stand up a
// light client: bootstrapping sync and producing a ChainSpecChannel is a
// separate collaborator's responsibility, not implemented in this build.
func dialChainSpec(ctx context.Context, path string) (chainbackend.Backend, error) {
	if _, err := chainbackend.DialChainSpec(ctx, path, nil); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("--chain-spec %s: no light-client implementation is wired into this build; use --url", path)
}
