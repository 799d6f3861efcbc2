package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"artcontest/config"
	"artcontest/crypto"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	args := os.Args[1:]
	if len(args) < 1 {
		printUsage()
		return
	}

	var err error
	switch args[0] {
	case "generate-key":
		fileName := "wallet.key"
		if len(args) > 1 {
			fileName = args[1]
		}
		err = generateKey(fileName)
	case "address":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a key file.")
			printUsage()
			return
		}
		err = printAddress(args[1])
	case "token":
		if len(args) < 2 {
			fmt.Println("Error: Please provide a key file.")
			printUsage()
			return
		}
		ttl := time.Hour
		if len(args) > 2 {
			ttl, err = time.ParseDuration(args[2])
			if err != nil {
				err = fmt.Errorf("invalid ttl %q: %w", args[2], err)
				break
			}
		}
		err = printToken(args[1], ttl)
	default:
		printUsage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: contestctl <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  generate-key [file]      create a secp256k1 key and print its address")
	fmt.Println("  address <keyfile>        print the bech32 address of a key")
	fmt.Println("  token <keyfile> [ttl]    mint a bearer token for the key's address using CONTEST_AUTH_SECRET")
}

func generateKey(fileName string) error {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	if err := os.WriteFile(fileName, key.Bytes(), 0o600); err != nil {
		return fmt.Errorf("save key to %s: %w", fileName, err)
	}
	fmt.Printf("Generated new key and saved to %s\n", fileName)
	fmt.Printf("Your address is: %s\n", key.PubKey().Address().String())
	return nil
}

func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return crypto.PrivateKeyFromBytes(raw)
}

func printAddress(path string) error {
	key, err := loadKey(path)
	if err != nil {
		return err
	}
	fmt.Println(key.PubKey().Address().String())
	return nil
}

func printToken(path string, ttl time.Duration) error {
	key, err := loadKey(path)
	if err != nil {
		return err
	}
	token, err := mintToken(key.PubKey().Address(), tokenSettings{
		Secret:   os.Getenv("CONTEST_AUTH_SECRET"),
		Issuer:   os.Getenv("CONTEST_AUTH_ISSUER"),
		Audience: os.Getenv("CONTEST_AUTH_AUDIENCE"),
		TTL:      ttl,
	}, time.Now())
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

type tokenSettings struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// mintToken signs an HS256 token whose subject is the principal address.
func mintToken(subject crypto.Address, s tokenSettings, now time.Time) (string, error) {
	secret := strings.TrimSpace(s.Secret)
	if len(secret) < config.MinSecretLength {
		return "", fmt.Errorf("auth secret must be at least %d characters", config.MinSecretLength)
	}
	if s.TTL <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
	}
	if s.Issuer != "" {
		claims.Issuer = s.Issuer
	}
	if s.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
