package protocol

// Wire-level header layouts. All multi-byte integers are little-endian
// unless a field is explicitly documented otherwise (SCRAM auth sub-fields
// use big-endian, see auth.go).

const (
	messageHeaderSize = 32
	segmentHeaderSize = 24
	partHeaderSize    = 16

	// helloSize is the length of the fixed initial handshake exchanged
	// before any message framing; no authentication may occur before it.
	helloSize = 14
)

var helloRequest = [helloSize]byte{0xff, 0xff, 0xff, 0xff, 0x04, 0x20, 0x00, 0x04, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01}

const packetOptionsCompressed = 0x01

// messageHeader is the 32-byte frame that starts every request or reply.
type messageHeader struct {
	sessionID     int64
	packetSeq     int32
	varPartLength int32
	varPartSize   int32
	noOfSegm      int16
	packetOptions uint8
}

func (h *messageHeader) encode(e *encoder) {
	e.int64(h.sessionID)
	e.int32(h.packetSeq)
	e.int32(h.varPartLength)
	e.int32(h.varPartSize)
	e.int16(h.noOfSegm)
	e.byte(h.packetOptions)
	e.zeroes(9) // reserved
}

func (h *messageHeader) decode(d *decoder) {
	h.sessionID = d.int64()
	h.packetSeq = d.int32()
	h.varPartLength = d.int32()
	h.varPartSize = d.int32()
	h.noOfSegm = d.int16()
	h.packetOptions = d.byte()
	d.skip(9)
}

const (
	segmentKindInvalid = 0
	segmentKindRequest = 1
	segmentKindReply   = 2
)

// segmentHeader is the 24-byte segment that follows the message header.
// The request and reply variants share the first 12 bytes and diverge in
// the remaining 12 (message type/commit/command-options vs. function code).
type segmentHeader struct {
	segmentLength int32
	segmentOfs    int32
	noOfParts     int16
	segmentNo     int16
	segmentKind   int8

	// request fields
	messageType    messageType
	commit         bool
	commandOptions uint8

	// reply fields
	functionCode functionCode
}

func (h *segmentHeader) encodeRequest(e *encoder) {
	e.int32(h.segmentLength)
	e.int32(h.segmentOfs)
	e.int16(h.noOfParts)
	e.int16(h.segmentNo)
	e.int8(segmentKindRequest)
	e.int8(int8(h.messageType))
	e.bool(h.commit)
	e.byte(h.commandOptions)
	e.zeroes(8)
}

func (h *segmentHeader) decode(d *decoder) {
	h.segmentLength = d.int32()
	h.segmentOfs = d.int32()
	h.noOfParts = d.int16()
	h.segmentNo = d.int16()
	h.segmentKind = d.int8()
	switch h.segmentKind {
	case segmentKindRequest:
		h.messageType = messageType(d.int8())
		h.commit = d.bool()
		h.commandOptions = d.byte()
		d.skip(8)
	case segmentKindReply, segmentKindInvalid:
		d.skip(1) // reserved
		h.functionCode = functionCode(d.int16())
		d.skip(8)
	}
}

// partAttributes reflects the bit-flags carried in a part header's
// attribute byte.
type partAttributes uint8

const (
	paLastPacket        partAttributes = 0x01
	paNoOfRowsUncertain partAttributes = 0x02
	paResultSetClosed   partAttributes = 0x04
	paFirstResultset    partAttributes = 0x20
)

func (a partAttributes) lastPacket() bool        { return a&paLastPacket != 0 }
func (a partAttributes) resultsetClosed() bool   { return a&paResultSetClosed != 0 }
func (a partAttributes) rowsUncertain() bool     { return a&paNoOfRowsUncertain != 0 }

const maxPartArgsInt16 = 32767

// partHeader is the 16-byte header preceding every part body.
type partHeader struct {
	kind                partKind
	attributes          partAttributes
	argCount            int32
	length              int32
	remainingBufferSize int32
}

func (h *partHeader) encode(e *encoder) {
	e.int8(int8(h.kind))
	e.byte(byte(h.attributes))
	if h.argCount > maxPartArgsInt16 {
		e.int16(-1)
		e.int32(h.argCount)
	} else {
		e.int16(int16(h.argCount))
		e.zeroes(4)
	}
	e.int32(h.length)
	e.int32(h.remainingBufferSize)
}

func (h *partHeader) decode(d *decoder) {
	h.kind = partKind(d.int8())
	h.attributes = partAttributes(d.byte())
	argCount16 := d.int16()
	if argCount16 == -1 {
		h.argCount = d.int32()
	} else {
		h.argCount = int32(argCount16)
		d.skip(4)
	}
	h.length = d.int32()
	h.remainingBufferSize = d.int32()
}

// padBytes returns the number of padding bytes needed to align size to an
// 8-byte boundary.
func padBytes(size int) int {
	if r := size % 8; r != 0 {
		return 8 - r
	}
	return 0
}
