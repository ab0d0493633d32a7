// Package neoclient provides a Go client for Neo N3 JSON-RPC nodes.
//
// The client speaks JSON-RPC 2.0 over three interchangeable transports and
// layers cross-cutting behaviors (retry, rate limiting, nonce management,
// fee estimation, signing, observability) around one uniform provider
// interface. This package is the root of the library, providing convenient
// exports of the core components from the sub-packages.
//
// # Overview
//
// The library consists of several sub-packages:
//
//   - pkg/provider: The client facade, the provider interface and the
//     middleware layers
//   - pkg/transport: HTTP, WebSocket and IPC transports with reconnecting
//     connection management
//   - pkg/protocol: The JSON-RPC 2.0 wire types and frame classification
//   - pkg/signer: P-256 transaction signing and witness construction
//   - pkg/types: Neo domain types (hashes, fixed-point GAS, transactions)
//   - pkg/config: File and environment configuration loading
//
// # Creating a Client
//
// To connect to a node over HTTP:
//
//	import (
//	    "context"
//
//	    "github.com/RustForNeo/neoclient"
//	)
//
//	func main() {
//	    ctx := context.Background()
//	    client, err := neoclient.NewHTTPClient(ctx, "http://localhost:10332")
//	    if err != nil {
//	        // Handle error
//	    }
//	    defer client.Close()
//
//	    height, err := client.GetBlockCount(ctx)
//	    // ...
//	}
//
// # Subscriptions
//
// Stream transports push events for standing subscriptions. To stream
// newly committed blocks over WebSocket:
//
//	client, err := neoclient.NewWebSocketClient(ctx, "ws://localhost:10334")
//	if err != nil {
//	    // Handle error
//	}
//	defer client.Close()
//
//	sub, err := client.SubscribeBlocks(ctx)
//	if err != nil {
//	    // Handle error
//	}
//	for event := range sub.Events() {
//	    // Decode and process the block
//	}
//	if err := sub.Err(); err != nil {
//	    // The sequence ended abnormally, e.g. the connection dropped
//	}
//
// # Submitting Transactions
//
// The middleware stack fills in what a bare transaction is missing: the
// nonce layer assigns per-sender nonces, the gas layer estimates fees, the
// signer layer attaches the sender and witness. The canonical order keeps
// signing innermost so the signature covers every filled field:
//
//	key, _ := neoclient.NewSignerFromHex(privateKeyHex)
//	sm := provider.NewSignerMiddleware(key, networkMagic)
//	client, err := neoclient.NewHTTPClient(ctx, endpoint, neoclient.DefaultStack(sm)...)
//	if err != nil {
//	    // Handle error
//	}
//
//	hash, err := client.SendTransaction(ctx, &types.Transaction{Script: script})
package neoclient
