package protocol

import "fmt"

const (
	authMethodSCRAMSHA256       = "SCRAMSHA256"
	authMethodSCRAMPBKDF2SHA256 = "SCRAMPBKDF2SHA256"
)

// authNegotiator drives the two-roundtrip authentication handshake:
// an Authenticate request offering every supported method's client
// challenge, followed (once the server has picked one) by a Connect
// request carrying that method's client proof.
type authNegotiator struct {
	user     string
	password []byte

	scramChallenge  []byte // SCRAMSHA256 client challenge
	pbkdf2ClientNonce []byte // SCRAMPBKDF2SHA256 client nonce

	chosenMethod string
}

func newAuthNegotiator(user, password string) (*authNegotiator, error) {
	scramChallenge, err := clientChallenge()
	if err != nil {
		return nil, err
	}
	pbkdf2Nonce, err := clientChallenge()
	if err != nil {
		return nil, err
	}
	return &authNegotiator{
		user:              user,
		password:          []byte(password),
		scramChallenge:    scramChallenge,
		pbkdf2ClientNonce: pbkdf2Nonce,
	}, nil
}

// buildInitialRequest assembles the first Authenticate message: a
// ClientContext part advertising the driver, followed by an Authentication
// part offering every method this driver supports along with each
// method's client challenge/nonce.
func (a *authNegotiator) buildInitialRequest(clientVersion, driverName string) *request {
	req := newRequest(mtAuthenticate)

	cc := &partClientContext{opts: options{
		int8(ccoVersion):                optString(clientVersion),
		int8(ccoClientType):             optString("go"),
		int8(ccoClientApplicationProgram): optString(driverName),
	}}
	req.addPart(partClientContextRequest{cc})

	fields := authFields{
		[]byte(a.user),
		[]byte(authMethodSCRAMSHA256),
		a.scramChallenge,
		[]byte(authMethodSCRAMPBKDF2SHA256),
		a.pbkdf2ClientNonce,
	}
	req.addPart(&partAuthentication{fields: fields})
	return req
}

// partClientContextRequest adapts partClientContext to the requestPart
// encode/size interface used by message.go.
type partClientContextRequest struct{ p *partClientContext }

func (r partClientContextRequest) kind() partKind  { return pkClientContext }
func (r partClientContextRequest) encode(e *encoder) { encodeOptions(e, r.p.opts) }
func (r partClientContextRequest) size() int         { return optionsEncodedSize(r.p.opts) }

// authInitReply is the server's reply to the initial Authenticate request:
// the method it picked plus that method's server challenge payload.
type authInitReply struct {
	method    string
	challenge []byte // SCRAMSHA256: salt||server_key ; SCRAMPBKDF2SHA256: salt||server_nonce||rounds(4 BE)
}

func parseAuthInitReply(rp *reply) (*authInitReply, error) {
	p, ok := rp.findPart(pkAuthentication)
	if !ok {
		return nil, fmt.Errorf("protocol: authenticate reply missing Authentication part")
	}
	fields := decodeAuthFields(p.decoder())
	if len(fields) != 2 {
		return nil, fmt.Errorf("protocol: authenticate reply has %d auth fields, want 2", len(fields))
	}
	return &authInitReply{method: string(fields[0]), challenge: fields[1]}, nil
}

// buildFinalRequest assembles the second, Connect message: the chosen
// method's client proof plus ConnectOptions.
func (a *authNegotiator) buildFinalRequest(init *authInitReply, connOpts options) (*request, error) {
	a.chosenMethod = init.method

	var proof []byte
	switch init.method {
	case authMethodSCRAMSHA256:
		if len(init.challenge) < 2 {
			return nil, fmt.Errorf("protocol: SCRAMSHA256 server challenge too short")
		}
		salt, serverKey := splitSaltServerKey(init.challenge)
		proof, _ = scramSHA256ClientProof(a.password, salt, serverKey, a.scramChallenge)
	case authMethodSCRAMPBKDF2SHA256:
		salt, serverNonce, rounds, err := splitPBKDF2Challenge(init.challenge)
		if err != nil {
			return nil, err
		}
		proof, _, err = scramPBKDF2SHA256ClientProof(a.password, salt, serverNonce, a.pbkdf2ClientNonce, rounds)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("protocol: server selected unsupported authentication method %q", init.method)
	}

	req := newRequest(mtConnect)
	req.addPart(&partAuthentication{fields: authFields{
		[]byte(a.user),
		[]byte(init.method),
		proof,
	}})
	req.addPart(partConnectOptionsRequest{&partConnectOptions{opts: connOpts}})
	return req, nil
}

type partConnectOptionsRequest struct{ p *partConnectOptions }

func (r partConnectOptionsRequest) kind() partKind    { return pkConnectOptions }
func (r partConnectOptionsRequest) encode(e *encoder) { encodeOptions(e, r.p.opts) }
func (r partConnectOptionsRequest) size() int         { return optionsEncodedSize(r.p.opts) }

// splitSaltServerKey splits a SCRAMSHA256 server challenge's single
// authField into its two length-prefixed sub-values (salt, server_key),
// each itself length-prefixed per the auth sub-field framing.
func splitSaltServerKey(challenge []byte) (salt, serverKey []byte) {
	parts := splitSubFields(challenge)
	if len(parts) < 2 {
		return nil, nil
	}
	return parts[0], parts[1]
}

// splitPBKDF2Challenge splits a SCRAMPBKDF2SHA256 server challenge into
// (salt, server_nonce, iteration count).
func splitPBKDF2Challenge(challenge []byte) (salt, serverNonce []byte, rounds int, err error) {
	parts := splitSubFields(challenge)
	if len(parts) < 3 {
		return nil, nil, 0, fmt.Errorf("protocol: malformed SCRAMPBKDF2SHA256 challenge")
	}
	salt, serverNonce = parts[0], parts[1]
	roundsField := parts[2]
	if len(roundsField) != 4 {
		return nil, nil, 0, fmt.Errorf("protocol: malformed SCRAMPBKDF2SHA256 iteration count field")
	}
	rounds = int(roundsField[0])<<24 | int(roundsField[1])<<16 | int(roundsField[2])<<8 | int(roundsField[3])
	return salt, serverNonce, rounds, nil
}

// splitSubFields parses a sequence of 1-byte-length-prefixed sub-fields
// packed inside a single auth field's payload.
func splitSubFields(b []byte) [][]byte {
	var out [][]byte
	for len(b) > 0 {
		n := int(b[0])
		b = b[1:]
		if n > len(b) {
			break
		}
		out = append(out, b[:n])
		b = b[n:]
	}
	return out
}
