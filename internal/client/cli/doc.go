// Package cli provides the interactive command-line client for the
// discussions account.
//
// It wires configuration, the local cache, the account store client and
// an interactive REPL. Typical flow: prompt for the wallet password,
// assemble the session, pull the remote snapshot and execute user
// commands until exit.
//
// Key features:
//   - Login with offline fallback when the store is unreachable
//   - Moderation commands: follow, watch, block, pin, delegate
//   - Wallet commands: transfer, deposit, withdraw, newaccount, airdrop
//   - Transaction approval: pending / approve / cancel
//
// The REPL is started via App.Run(ctx), which blocks until the user
// exits.
package cli
