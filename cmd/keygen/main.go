// Command keygen prints a random secret suitable for secretKey.access.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"

	"postly/internal/errors"
)

const recommendedBytes = 32

func main() {
	size := flag.Int("bytes", recommendedBytes, "Number of random bytes in the secret")
	flag.Parse()

	if err := run(os.Stdout, os.Stderr, rand.Reader, *size); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(stdout, stderr io.Writer, random io.Reader, size int) error {
	if size <= 0 {
		return errors.Errorf("-bytes must be positive, got %d", size)
	}
	if size < recommendedBytes {
		fmt.Fprintf(stderr, "Warning: %d bytes is below the recommended %d for HS256 keys\n", size, recommendedBytes)
	}

	secret, err := generate(random, size)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, secret)

	return errors.WithStack(err)
}

// generate returns size random bytes encoded as unpadded URL-safe base64.
func generate(random io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
