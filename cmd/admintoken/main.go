// Command admintoken mints an HS256 admin bearer token for the guarded
// delete routes.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"github.com/assetverse/asset-management/internal/core/domain"
)

func main() {
	secret := pflag.StringP("secret", "s", os.Getenv("JWT_SECRET"), "signing secret (defaults to $JWT_SECRET)")
	subject := pflag.String("subject", "admin", "token subject")
	ttl := pflag.Duration("ttl", time.Hour, "token lifetime")
	pflag.Parse()

	token, err := mint(*secret, *subject, *ttl, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "admintoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func mint(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("a signing secret is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(domain.RoleAdmin),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
