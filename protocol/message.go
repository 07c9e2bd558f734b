package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// part is one decoded-but-not-yet-typed part: its header plus the raw body
// bytes, still padded to the part's declared length. Callers re-decode the
// body against the concrete part type once they know what they're looking
// for (parameter/result metadata, prior parts, etc).
type part struct {
	header partHeader
	body   []byte
}

// request is everything needed to assemble one client->server message:
// a message type plus an ordered list of part bodies to emit.
type request struct {
	messageType messageType
	commit      bool
	parts       []requestPart
}

type requestPart interface {
	kind() partKind
	encode(e *encoder)
	size() int
}

func newRequest(mt messageType) *request { return &request{messageType: mt} }

func (r *request) addPart(p requestPart) { r.parts = append(r.parts, p) }

// writeMessage frames r as a 32-byte message header, a 24-byte request
// segment header, and one part (header+body, 8-byte padded) per entry in
// r.parts, per spec §6's exact byte layouts.
func writeMessage(w io.Writer, sessionID int64, seq int32, r *request) error {
	var segBuf bytes.Buffer
	for _, rp := range r.parts {
		var bodyBuf bytes.Buffer
		be := newEncoder(&bodyBuf)
		rp.encode(be)
		if err := be.error(); err != nil {
			return err
		}
		body := bodyBuf.Bytes()
		ph := partHeader{
			kind:   rp.kind(),
			length: int32(len(body)),
		}
		pe := newEncoder(&segBuf)
		ph.encode(pe)
		if err := pe.error(); err != nil {
			return err
		}
		segBuf.Write(body)
		if pad := padBytes(len(body)); pad > 0 {
			segBuf.Write(make([]byte, pad))
		}
	}

	sh := segmentHeader{
		segmentLength: int32(segmentHeaderSize + segBuf.Len()),
		segmentOfs:    0,
		noOfParts:     int16(len(r.parts)),
		segmentNo:     1,
		messageType:   r.messageType,
		commit:        r.commit,
	}

	var msgBuf bytes.Buffer
	se := newEncoder(&msgBuf)
	sh.encodeRequest(se)
	if err := se.error(); err != nil {
		return err
	}
	msgBuf.Write(segBuf.Bytes())

	mh := messageHeader{
		sessionID:     sessionID,
		packetSeq:     seq,
		varPartLength: int32(msgBuf.Len()),
		varPartSize:   int32(msgBuf.Len()),
		noOfSegm:      1,
	}
	me := newEncoder(w)
	mh.encode(me)
	if err := me.error(); err != nil {
		return err
	}
	if _, err := w.Write(msgBuf.Bytes()); err != nil {
		return err
	}
	return nil
}

// reply is a fully-parsed server->client message: one segment's worth of
// raw parts, the reply's function code, and any warnings/errors extracted
// from Error parts along the way.
type reply struct {
	sessionID    int64
	functionCode functionCode
	parts        []part
	warnings     []wireError
}

// SessionID returns the session id the server assigned, carried in every
// reply's message header. It is only meaningful once set by the Connect
// reply; callers outside this package read it once, right after
// authentication, to learn the session id for all later requests.
func (r *reply) SessionID() int64 { return r.sessionID }

// errorReply is returned by readMessage when the reply's Error part(s)
// contain at least one non-warning entry; it satisfies the error interface
// and carries the full decoded error list for callers that want detail.
type errorReply struct{ errs []wireError }

func (e *errorReply) Error() string {
	if len(e.errs) == 0 {
		return "protocol: server error"
	}
	return fmt.Sprintf("protocol: server error %d: %s", e.errs[0].Code, e.errs[0].Text)
}

// Messages exposes the decoded Error-part entries to callers outside the
// protocol package.
func (e *errorReply) Messages() []ServerMessage {
	out := make([]ServerMessage, len(e.errs))
	for i, we := range e.errs {
		out[i] = we.toServerMessage()
	}
	return out
}

// ServerMessages extracts the decoded Error-part entries from err if err
// (or something it wraps) came from a server Error part, so callers
// outside this package never need to know the concrete error type.
func ServerMessages(err error) ([]ServerMessage, bool) {
	var er *errorReply
	if !errors.As(err, &er) {
		return nil, false
	}
	return er.Messages(), true
}

// Warnings exposes a reply's accumulated non-fatal Error-part entries.
func (r *reply) Warnings() []ServerMessage {
	out := make([]ServerMessage, len(r.warnings))
	for i, we := range r.warnings {
		out[i] = we.toServerMessage()
	}
	return out
}

// readMessage reads one full server reply off rd: the 32-byte message
// header, the 24-byte reply segment header (multiple segments in one
// reply is treated as a protocol error, matching the single-segment
// request/reply discipline this driver relies on), and noOfParts raw
// parts. Error parts whose entries are all warnings are collected into
// reply.warnings rather than failing the call; any hard error aborts with
// *errorReply.
func readMessage(rd io.Reader) (*reply, error) {
	d := newDecoder(rd)
	var mh messageHeader
	mh.decode(d)
	if err := d.error(); err != nil {
		return nil, err
	}

	limited := io.LimitReader(rd, int64(mh.varPartLength))
	ld := newDecoder(limited)

	var sh segmentHeader
	sh.decode(ld)
	if err := ld.error(); err != nil {
		return nil, err
	}
	if sh.segmentKind != segmentKindReply && sh.segmentKind != segmentKindInvalid {
		return nil, fmt.Errorf("protocol: unexpected segment kind %d in reply", sh.segmentKind)
	}
	if mh.noOfSegm != 1 {
		return nil, fmt.Errorf("protocol: multi-segment replies are not supported (noOfSegm=%d)", mh.noOfSegm)
	}

	rp := &reply{sessionID: mh.sessionID, functionCode: sh.functionCode}
	for i := int16(0); i < sh.noOfParts; i++ {
		var ph partHeader
		ph.decode(ld)
		if err := ld.error(); err != nil {
			return nil, err
		}
		body := ld.bytes(int(ph.length))
		if err := ld.error(); err != nil {
			return nil, err
		}
		if pad := padBytes(int(ph.length)); pad > 0 {
			ld.skip(pad)
		}
		if ph.kind == pkError {
			bd := newDecoder(bytes.NewReader(body))
			pe := decodePartError(bd, ph.argCount)
			if pe.isWarningOnly() {
				rp.warnings = append(rp.warnings, pe.errs...)
				continue
			}
			return nil, &errorReply{errs: pe.errs}
		}
		rp.parts = append(rp.parts, part{header: ph, body: body})
	}
	return rp, nil
}

// findPart returns the first decoded part of the given kind, if any.
func (r *reply) findPart(k partKind) (part, bool) {
	for _, p := range r.parts {
		if p.header.kind == k {
			return p, true
		}
	}
	return part{}, false
}

func (p part) decoder() *decoder { return newDecoder(bytes.NewReader(p.body)) }

// FunctionCode returns the reply segment's function code.
func (r *reply) FunctionCode() int16 { return int16(r.functionCode) }

// Request and Reply are the exported names for this package's message
// types, used by callers (see hdb/connection.go) that drive a Transport
// directly without needing access to part internals.
type (
	Request = request
	Reply   = reply
)
