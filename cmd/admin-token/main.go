// admin-token mints a bearer token for the /admin routes.
// API_SECRET must match the server's.
//
// Usage:
//
//	API_SECRET=... go run ./cmd/admin-token --user-id 1 --ttl 1h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mmdatafocus/pos_ledger/utils"
)

func main() {
	userId := flag.Int("user-id", 1, "User id recorded in the token")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	flag.Parse()

	if *userId <= 0 || *ttl <= 0 {
		fmt.Fprintln(os.Stderr, "user-id and ttl must be positive")
		os.Exit(2)
	}

	token, err := utils.JwtGenerate(*userId, utils.RoleAdmin, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
