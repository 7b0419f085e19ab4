// Command hashpasscode prints the bcrypt hash of a passcode for use as
// HANZI_AUTH_PASSCODE_HASH. The passcode is read from stdin so it never
// lands in shell history.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	fmt.Fprint(os.Stderr, "Passcode: ")
	reader := bufio.NewReader(os.Stdin)
	passcode, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read passcode: %v\n", err)
		os.Exit(1)
	}
	passcode = strings.TrimRight(passcode, "\r\n")
	if passcode == "" {
		fmt.Fprintln(os.Stderr, "passcode cannot be empty")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash passcode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
