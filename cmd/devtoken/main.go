// Command devtoken prints a bearer token accepted by a server running with
// AUTH_MODE=dev.  The signing secret is read from DEV_JWT_SECRET (or .env).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/automarket/marketplace-api/internal/identity"
)

func main() {
	sub := flag.String("sub", "", "subject id (required)")
	email := flag.String("email", "", "email claim")
	name := flag.String("name", "", "display name claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("DEV_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "DEV_JWT_SECRET is not set")
		os.Exit(1)
	}
	if *sub == "" {
		fmt.Fprintln(os.Stderr, "-sub is required")
		flag.Usage()
		os.Exit(2)
	}

	token, exp, err := identity.IssueDevToken(secret, identity.Principal{
		Subject:       *sub,
		Email:         *email,
		EmailVerified: *email != "",
		Name:          *name,
	}, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
	fmt.Println(token)
}
