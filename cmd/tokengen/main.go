// Package main provides a CLI tool for local aprovame development: it issues
// bearer tokens signed with a given key and hashes passwords for AUTH_PASSWORD_HASH.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"aprovame/internal/auth/token"
	"aprovame/pkg/secrets"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultSubject = "aprovame"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	hashCmd := flag.NewFlagSet("hash", flag.ExitOnError)

	tokenSubject := tokenCmd.String("sub", defaultSubject, "Token subject (the login)")
	tokenKey := tokenCmd.String("key", envOr("JWT_SIGNING_KEY", devSigningKey), "HS256 signing key")
	tokenTTL := tokenCmd.Duration("ttl", token.DefaultTTL, "Token time-to-live")
	tokenJSON := tokenCmd.Bool("json", false, "Output as JSON")

	hashPassword := hashCmd.String("password", "", "Password to hash (required)")
	hashCost := hashCmd.Int("cost", bcrypt.DefaultCost, "bcrypt cost")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "token":
		tokenCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generateToken(*tokenSubject, *tokenKey, *tokenTTL, *tokenJSON)
	case "hash":
		hashCmd.Parse(os.Args[2:]) //nolint:errcheck // ExitOnError
		generateHash(*hashPassword, *hashCost)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate tokens and password hashes for aprovame

WARNING: Tokens signed with the dev key will NOT work in production.

Usage:
  tokengen <command> [flags]

Commands:
  token     Issue a bearer token (JWT, HS256)
  hash      Print a bcrypt hash for AUTH_PASSWORD_HASH

Examples:
  # Token for the default login with the dev key
  tokengen token

  # Short-lived token signed with a custom key
  tokengen token -key "$JWT_SIGNING_KEY" -ttl 1h

  # Hash a password
  tokengen hash -password 's3cret'

Use "tokengen <command> -h" for more information about a command.`)
}

func generateToken(subject, key string, ttl time.Duration, jsonOutput bool) {
	svc := token.NewService(key, ttl)
	tok, err := svc.Issue(context.Background(), subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	keyType := "custom"
	if key == devSigningKey {
		keyType = "dev"
	}

	if jsonOutput {
		printJSON(tokenOutput{
			Token:     tok.Value,
			Type:      "access_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub": subject,
				"jti": tok.JTI,
				"exp": tok.ExpiresAt.Unix(),
			},
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Subject:     %s\n", subject)
	fmt.Printf("Expires At:  %s\n", tok.ExpiresAt.Format(time.RFC3339))
	fmt.Printf("JTI:         %s\n", tok.JTI)
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(tok.Value)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/integrations/assignor")
}

func generateHash(password string, cost int) {
	if password == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		os.Exit(1)
	}
	hash, err := secrets.Hash(password, cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
