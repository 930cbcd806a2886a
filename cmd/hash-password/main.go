package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/vcscsvcscs/nutrifast/internal/auth"
	"go.uber.org/zap"
)

// hash-password prints a bcrypt hash for ADMIN_PASSWORD_HASH. The password
// is read from the first argument or, when absent, from stdin.
func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logger.Fatal("Failed to read password from stdin", zap.Error(err))
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		logger.Fatal("Usage: hash-password <password> (or pipe it on stdin)")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Fatal("Failed to hash password", zap.Error(err))
	}
	fmt.Println(hash)
}
