package core

import (
	"strings"

	"github.com/google/uuid"
)

// CLIStackPrefix marks stack ids of events synthesized outside CloudFormation.
const CLIStackPrefix = "trainingctl/"

// NewRequestID returns a time-ordered id for synthesized events and
// gateway requests. CloudFormation events carry their own.
func NewRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// CLIStackID names the pseudo stack a synthesized event belongs to.
func CLIStackID(scope string) string {
	return CLIStackPrefix + scope
}

// Synthesized reports whether stackID came from CLIStackID.
func Synthesized(stackID string) bool {
	return strings.HasPrefix(stackID, CLIStackPrefix)
}
