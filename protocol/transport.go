package protocol

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/hdbgo/hdb/dial"
)

// TransportOptions configures how a transport connects and frames traffic.
type TransportOptions struct {
	Dialer        dial.Dialer
	DialerOptions dial.DialerOptions
	TLSConfig     *tls.Config // nil disables TLS
	Compress      bool        // LZ4-frame compress outgoing messages (not negotiated with the server)
	// MaxBufferSize is the threshold the reusable scratch buffer is
	// shrunk back down to once a message grows it past this size. Zero
	// disables shrinking (the buffer only ever grows).
	MaxBufferSize int
}

// Transport is the Wire I/O layer: it owns the raw connection, performs
// the 14-byte hello handshake, and frames/unframes messages. It does not
// understand parts or values; message.go builds on top of it.
//
// buf is the reusable scratch buffer spec.md's Connection Core names: each
// message is encoded into it before being written (and, when compression
// is on, before being LZ4-framed), instead of allocating a fresh buffer
// per roundtrip. Once a message grows buf past maxSize, it is replaced
// with a freshly allocated buffer sized to maxSize and shrinks is
// incremented.
type Transport struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	compress bool
	seq      int32

	buf     plainBuffer
	maxSize int
	shrinks uint64
}

// Connect dials address, optionally upgrades to TLS, and performs the
// fixed 14-byte hello handshake required before any message framing.
func Connect(ctx context.Context, address string, opts TransportOptions) (*Transport, error) {
	d := opts.Dialer
	if d == nil {
		d = dial.DefaultDialer
	}
	conn, err := d.DialContext(ctx, address, opts.DialerOptions)
	if err != nil {
		return nil, fmt.Errorf("protocol: dial %s: %w", address, err)
	}
	if opts.TLSConfig != nil {
		tlsConn := tls.Client(conn, opts.TLSConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("protocol: TLS handshake: %w", err)
		}
		conn = tlsConn
	}

	t := &Transport{
		conn:     conn,
		r:        bufio.NewReaderSize(conn, 64*1024),
		w:        bufio.NewWriterSize(conn, 64*1024),
		compress: opts.Compress,
		maxSize:  opts.MaxBufferSize,
	}
	if err := t.sendHello(); err != nil {
		conn.Close()
		return nil, err
	}
	return t, nil
}

func (t *Transport) sendHello() error {
	if _, err := t.w.Write(helloRequest[:]); err != nil {
		return fmt.Errorf("protocol: sending hello: %w", err)
	}
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("protocol: sending hello: %w", err)
	}
	reply := make([]byte, helloSize)
	if _, err := io.ReadFull(t.r, reply); err != nil {
		return fmt.Errorf("protocol: reading hello reply: %w", err)
	}
	return nil
}

// nextSeq returns the next packet sequence number for an outgoing message.
func (t *Transport) nextSeq() int32 { return atomic.AddInt32(&t.seq, 1) }

// Send frames and writes one request under sessionID. When compression is
// on, the variable part of every message is LZ4-frame compressed, whatever
// its size. The message is
// first encoded into the transport's reusable scratch buffer, per the
// Connection Core's buffer discipline, rather than a fresh allocation.
func (t *Transport) Send(sessionID int64, r *Request) error {
	t.buf.reset()
	defer t.shrinkBuffer()

	if !t.compress {
		if err := writeMessage(&t.buf, sessionID, t.nextSeq(), r); err != nil {
			return err
		}
		if _, err := t.w.Write(t.buf.Bytes()); err != nil {
			return err
		}
		return t.w.Flush()
	}

	if err := writeMessage(&t.buf, sessionID, t.nextSeq(), r); err != nil {
		return err
	}
	plain := t.buf.Bytes()[messageHeaderSize:]
	compressed, err := lz4CompressFrame(plain)
	if err != nil {
		return err
	}
	mh := messageHeader{
		sessionID:     sessionID,
		varPartLength: int32(len(compressed)),
		varPartSize:   int32(len(plain)),
		noOfSegm:      1,
		packetOptions: packetOptionsCompressed,
	}
	// packetSeq/noOfSegm were already baked into t.buf by writeMessage; a
	// compressed frame replaces only the variable part, so re-derive the
	// fixed 32-byte header fields that differ (length, compression flag)
	// and reuse the sequence number writeMessage already consumed.
	mh.packetSeq = t.seq
	e := newEncoder(t.w)
	mh.encode(e)
	if err := e.error(); err != nil {
		return err
	}
	if _, err := t.w.Write(compressed); err != nil {
		return err
	}
	return t.w.Flush()
}

// shrinkBuffer replaces the scratch buffer with a freshly allocated one
// sized to maxSize once the last message has grown it past that
// threshold, counting the event.
func (t *Transport) shrinkBuffer() {
	if t.maxSize <= 0 || cap(t.buf.b) <= t.maxSize {
		return
	}
	t.buf.b = make([]byte, 0, t.maxSize)
	t.shrinks++
}

// BufferShrinks returns how many times the scratch buffer has been shrunk
// back to its configured maximum size.
func (t *Transport) BufferShrinks() uint64 { return t.shrinks }

// Recv reads and fully decodes the next reply, transparently decompressing
// it first if the message header's compressed flag is set.
func (t *Transport) Recv() (*Reply, error) {
	var hdrBuf [messageHeaderSize]byte
	if _, err := io.ReadFull(t.r, hdrBuf[:]); err != nil {
		return nil, fmt.Errorf("protocol: reading message header: %w", err)
	}
	hd := newDecoder(fixedReader{hdrBuf[:]})
	var mh messageHeader
	mh.decode(hd)

	body := make([]byte, mh.varPartLength)
	if _, err := io.ReadFull(t.r, body); err != nil {
		return nil, fmt.Errorf("protocol: reading message body: %w", err)
	}
	if mh.packetOptions&packetOptionsCompressed != 0 {
		plain, err := lz4DecompressFrame(body, int(mh.varPartSize))
		if err != nil {
			return nil, err
		}
		body = plain
	}

	// readMessage decodes its own message header, so replay a canonical
	// one describing the (now decompressed) body length rather than the
	// raw wire bytes, which may have described the compressed length.
	canonical := mh
	canonical.varPartLength = int32(len(body))
	canonical.varPartSize = int32(len(body))
	canonical.packetOptions = 0
	var hdrOut plainBuffer
	he := newEncoder(&hdrOut)
	canonical.encode(he)
	if err := he.error(); err != nil {
		return nil, err
	}
	return readMessage(&prefixedReader{header: hdrOut.Bytes(), body: body})
}

func (t *Transport) Close() error { return t.conn.Close() }

// fixedReader adapts a byte slice already in memory to io.Reader.
type fixedReader struct{ b []byte }

func (f fixedReader) Read(p []byte) (int, error) {
	n := copy(p, f.b)
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// prefixedReader replays the already-consumed 32-byte message header
// followed by body, so readMessage (which expects to read the header
// itself) can be reused uniformly by both the compressed and
// plain paths.
type prefixedReader struct {
	header     []byte
	body       []byte
	hpos, bpos int
}

func (p *prefixedReader) Read(buf []byte) (int, error) {
	if p.hpos < len(p.header) {
		n := copy(buf, p.header[p.hpos:])
		p.hpos += n
		return n, nil
	}
	if p.bpos >= len(p.body) {
		return 0, io.EOF
	}
	n := copy(buf, p.body[p.bpos:])
	p.bpos += n
	return n, nil
}

// plainBuffer is a growable byte buffer used to assemble an uncompressed
// message before optionally LZ4-compressing it.
type plainBuffer struct{ b []byte }

func (p *plainBuffer) Write(b []byte) (int, error) {
	p.b = append(p.b, b...)
	return len(b), nil
}

func (p *plainBuffer) Bytes() []byte { return p.b }

// reset empties the buffer for reuse without releasing its capacity.
func (p *plainBuffer) reset() { p.b = p.b[:0] }
