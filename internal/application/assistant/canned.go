package assistant

import (
	"crypto/subtle"
	"fmt"
)

const (
	ActionViewRecords = "view-records"
	ActionVerifyClaim = "verify-claim"

	demoEmail    = "test@example.com"
	demoPassword = "password123"
	// LoginToken is the fixed token handed out to the demo account.
	LoginToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
)

// BlockchainAction returns canned ledger text. No provider is called.
func (s *Service) BlockchainAction(cmd BlockchainCommand) (Result, error) {
	var text string
	switch cmd.Action {
	case ActionViewRecords:
		text = "This feature would connect to a blockchain explorer to show immutable policy records. (Conceptual: No actual blockchain integration here)."
		if cmd.RecordID != "" {
			text += fmt.Sprintf("\nAttempting to retrieve record for ID: %s", cmd.RecordID)
		}
		text += "\n\nExample: Transaction Hash: 0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b\nData Hash: abcdef1234567890"
	case ActionVerifyClaim:
		text = "This feature would verify a claim's status against a blockchain ledger for tamper-proof validation. (Conceptual: No actual blockchain integration here)."
		if cmd.RecordID != "" {
			text += fmt.Sprintf("\nVerifying claim with ID: %s", cmd.RecordID)
		}
		text += "\n\nExample: Claim Status: Approved on Blockchain (Transaction: 0x...)"
	default:
		return Result{}, ErrInvalidAction
	}
	return success("result", text), nil
}

// Login checks the demo credentials. It is not an authentication system.
func (s *Service) Login(cmd LoginCommand) (Result, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(cmd.Email), []byte(demoEmail))
	passOK := subtle.ConstantTimeCompare([]byte(cmd.Password), []byte(demoPassword))
	if emailOK&passOK != 1 {
		return Result{}, ErrInvalidCredentials
	}
	return Result{
		Status:  StatusSuccess,
		Message: "Login successful!",
		Extra:   map[string]string{"token": LoginToken},
	}, nil
}
