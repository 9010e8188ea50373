// Command admintoken mints an HS256 admin token for the gateway's
// /v1/admin endpoints. The signing secret is read from ADMIN_JWT_SECRET
// (or a .env file) so it never appears in shell history.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
)

func main() {
	subject := flag.String("subject", "", "operator identity placed in the sub claim (required)")
	scopes := flag.String("scopes", "admin:read", "comma separated scopes, e.g. admin:read,admin:write")
	ttl := flag.Duration("ttl", jwtx.DefaultAdminTokenTTL, "token lifetime")
	issuer := flag.String("issuer", "", "issuer claim (default: ADMIN_JWT_ISSUER or search-gateway)")
	flag.Parse()

	_ = godotenv.Load()

	if *subject == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *issuer == "" {
		*issuer = os.Getenv("ADMIN_JWT_ISSUER")
	}
	if *issuer == "" {
		*issuer = "search-gateway"
	}

	signer, err := jwtx.NewSignerHS256([]byte(os.Getenv("ADMIN_JWT_SECRET")))
	if err != nil {
		log.Fatalf("invalid ADMIN_JWT_SECRET: %v", err)
	}

	claims := jwtx.NewAdminClaims(*subject, splitScopes(*scopes), *ttl, *issuer, time.Now())
	token, err := signer.Sign(claims)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	fmt.Println(token)
}

func splitScopes(raw string) []string {
	var scopes []string
	for s := range strings.SplitSeq(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
