// Package main issues service tokens for the driver lookup API. The token is
// signed with AUTH_JWT_SECRET, the same secret the service verifies with.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/swiftlogistics/driver-service/internal/auth"
	"github.com/swiftlogistics/driver-service/internal/config"
)

type tokenOutput struct {
	Token     string   `json:"token"`
	Subject   string   `json:"subject"`
	Scopes    []string `json:"scopes"`
	ExpiresAt string   `json:"expires_at"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	subject := flag.String("subject", "internal-service", "Calling service name (sub claim)")
	scopes := flag.String("scopes", auth.ScopeDriversRead, "Comma-separated scopes")
	ttl := flag.Duration("ttl", cfg.Auth.TokenTTL(), "Token time-to-live")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Parse()

	if cfg.Auth.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_JWT_SECRET is not set; lookup routes are unauthenticated and need no token")
		os.Exit(1)
	}

	scopeList := parseScopes(*scopes)
	tm := auth.NewTokenManager(cfg.Auth.JWTSecret, *ttl)
	token, expiresAt, err := tm.GenerateToken(*subject, strings.Join(scopeList, " "))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			Subject:   *subject,
			Scopes:    scopeList,
			ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		})
		return
	}

	fmt.Println("Service Token (JWT)")
	fmt.Println("===================")
	fmt.Printf("Subject:    %s\n", *subject)
	fmt.Printf("Scopes:     %v\n", scopeList)
	fmt.Printf("Expires At: %s\n", expiresAt.UTC().Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H \"Authorization: Bearer <token>\" http://localhost:%s/api/drivers/<driverId>\n", cfg.App.Port)
}

func parseScopes(scopes string) []string {
	parts := strings.Split(scopes, ",")
	result := make([]string, 0, len(parts))
	for _, s := range parts {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
