package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: hash-operator-key <operator-key>")
		fmt.Println("Example: hash-operator-key 'k9x-2mQ8-wEr7'")
		os.Exit(1)
	}

	key := os.Args[1]

	hash, err := bcrypt.GenerateFromPassword([]byte(key), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash operator key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Operator key hashed successfully!\n\n")
	fmt.Printf("Add this line to your .env:\n")
	fmt.Printf("OPERATOR_KEY_HASH='%s'\n", string(hash))
	fmt.Printf("\n⚠️  IMPORTANT: Save the key itself securely - it cannot be recovered from the hash!\n")
	fmt.Printf("\nOperators authenticate with:\n")
	fmt.Printf("Authorization: Bearer %s\n", key)
}
