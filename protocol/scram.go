package protocol

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	clientChallengeSize = 64
	clientProofSize     = 32
	minPBKDF2Iterations = 15000
)

func clientChallenge() ([]byte, error) {
	b := make([]byte, clientChallengeSize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("protocol: generating client challenge: %w", err)
	}
	return b, nil
}

func sha256Sum(b []byte) []byte {
	h := sha256.Sum256(b)
	return h[:]
}

func hmacSum(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// scramSHA256ClientProof computes the client proof and expected server
// proof for the SCRAMSHA256 authentication method, given the server's salt
// and server key (split out of its challenge) and our client challenge.
//
// salted_password = hmac(password, salt)
// client_key      = sha256(salted_password)
// sig             = hmac(sha256(client_key), salt || server_key || client_challenge)
// client_proof    = sig XOR client_key
// server_verifier = hmac(salted_password, salt)
// server_proof    = hmac(server_verifier, client_key || salt || server_key)
func scramSHA256ClientProof(password, salt, serverKey, challenge []byte) (clientProof, serverProof []byte) {
	saltedPassword := hmacSum(password, salt)
	clientKey := sha256Sum(saltedPassword)

	sigInput := make([]byte, 0, len(salt)+len(serverKey)+len(challenge))
	sigInput = append(sigInput, salt...)
	sigInput = append(sigInput, serverKey...)
	sigInput = append(sigInput, challenge...)
	sig := hmacSum(sha256Sum(clientKey), sigInput)

	clientProof = xorBytes(sig, clientKey)

	serverVerifier := hmacSum(saltedPassword, salt)
	proofInput := make([]byte, 0, len(clientKey)+len(salt)+len(serverKey))
	proofInput = append(proofInput, clientKey...)
	proofInput = append(proofInput, salt...)
	proofInput = append(proofInput, serverKey...)
	serverProof = hmacSum(serverVerifier, proofInput)
	return clientProof, serverProof
}

// scramPBKDF2SHA256ClientProof computes the client proof and expected
// server proof for the SCRAMPBKDF2SHA256 authentication method.
//
// salted_password = pbkdf2(password, salt, iterations, 32, sha256)
// server_verifier = hmac(salted_password, salt)
// client_key      = sha256(salted_password)
// client_verifier = sha256(client_key)
// shared_key      = hmac(client_verifier, salt || server_nonce || client_nonce)
// client_proof    = shared_key XOR client_key
// server_proof    = hmac(server_verifier, client_nonce || salt || server_nonce)
func scramPBKDF2SHA256ClientProof(password, salt, serverNonce, clientNonce []byte, iterations int) (clientProof, serverProof []byte, err error) {
	if iterations < minPBKDF2Iterations {
		return nil, nil, fmt.Errorf("protocol: server-supplied PBKDF2 iteration count %d is below the minimum of %d", iterations, minPBKDF2Iterations)
	}
	saltedPassword := pbkdf2.Key(password, salt, iterations, clientProofSize, sha256.New)
	serverVerifier := hmacSum(saltedPassword, salt)
	clientKey := sha256Sum(saltedPassword)
	clientVerifier := sha256Sum(clientKey)

	sharedInput := make([]byte, 0, len(salt)+len(serverNonce)+len(clientNonce))
	sharedInput = append(sharedInput, salt...)
	sharedInput = append(sharedInput, serverNonce...)
	sharedInput = append(sharedInput, clientNonce...)
	sharedKey := hmacSum(clientVerifier, sharedInput)

	clientProof = xorBytes(sharedKey, clientKey)

	proofInput := make([]byte, 0, len(clientNonce)+len(salt)+len(serverNonce))
	proofInput = append(proofInput, clientNonce...)
	proofInput = append(proofInput, salt...)
	proofInput = append(proofInput, serverNonce...)
	serverProof = hmacSum(serverVerifier, proofInput)
	return clientProof, serverProof, nil
}
