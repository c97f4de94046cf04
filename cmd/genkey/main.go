// Command genkey prints a random JWT_SECRET line for .env.
package main

import (
	"fmt"
	"log"

	"github.com/dmitrijs2005/storeauth/internal/cryptox"
)

func main() {
	key, err := cryptox.MakeRandHexString(32)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("JWT_SECRET=%s\n", key)
}
