package utils

import (
	"context"
	"fmt"
	"math/rand"

	petname "github.com/dustinkirkland/golang-petname"
)

const sessionIDWords = 3

// GenerateSessionID returns a readable id such as "gladly-brave-otter-42"
func GenerateSessionID() string {
	return fmt.Sprintf("%s-%d", petname.Generate(sessionIDWords, "-"), rand.Intn(100))
}

// GenerateUniqueSessionID keeps drawing ids until taken reports one as free
func GenerateUniqueSessionID(ctx context.Context, taken func(ctx context.Context, id string) (bool, error)) (string, error) {
	maxAttempts := 20
	for i := 0; i < maxAttempts; i++ {
		id := GenerateSessionID()
		exists, err := taken(ctx, id)
		if err != nil {
			return "", fmt.Errorf("checking session id: %w", err)
		}
		if !exists {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique session id after %d attempts", maxAttempts)
}
