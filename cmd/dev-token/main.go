// dev-token prints a signed bearer token for local testing of the sync
// service endpoints.
//
// Usage:
//
//	API_SECRET=... go run ./cmd/dev-token -user u1 -name "Ko Aung" -email aung@example.com
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ScepterCode/Storemaster-sub000/utils"
)

func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "email address")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}
	if *email != "" && !utils.IsValidEmail(*email) {
		fmt.Fprintf(os.Stderr, "invalid email %q\n", *email)
		os.Exit(2)
	}

	token, err := utils.JwtGenerate(*userID, *name, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
