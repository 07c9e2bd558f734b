package protocol

import (
	"fmt"

	"github.com/hdbgo/hdb/cesu8"
)

// partReadWriter is implemented by every concrete part body; it knows how
// to decode itself from a part of argCount elements and how to report the
// kind it belongs under.
type partReadWriter interface {
	kind() partKind
}

// ---- Authentication ------------------------------------------------------

// authField is one length-prefixed sub-field inside an Authentication part
// (field count is itself length-prefixed, see spec's auth field layout).
type authFields [][]byte

func decodeAuthFields(d *decoder) authFields {
	count := int(d.uint16())
	fields := make(authFields, count)
	for i := range fields {
		n, _ := readLength(d)
		fields[i] = d.bytes(n)
	}
	return fields
}

func encodeAuthFields(e *encoder, fields authFields) {
	e.int16(int16(len(fields)))
	for _, f := range fields {
		writeLength(e, len(f))
		e.bytes(f)
	}
}

func authFieldsSize(fields authFields) int {
	n := 2
	for _, f := range fields {
		n += lengthIndicatorSize(len(f)) + len(f)
	}
	return n
}

type partAuthentication struct{ fields authFields }

func (*partAuthentication) kind() partKind { return pkAuthentication }

func decodePartAuthentication(d *decoder) *partAuthentication {
	return &partAuthentication{fields: decodeAuthFields(d)}
}

func (p *partAuthentication) encode(e *encoder) { encodeAuthFields(e, p.fields) }
func (p *partAuthentication) size() int         { return authFieldsSize(p.fields) }

// ---- ClientContext / ClientInfo / ConnectOptions / SessionContext -------

type partClientContext struct{ opts options }

func (*partClientContext) kind() partKind { return pkClientContext }

type partConnectOptions struct{ opts options }

func (*partConnectOptions) kind() partKind { return pkConnectOptions }

type partClientInfo struct{ opts options }

func (*partClientInfo) kind() partKind { return pkClientInfo }

type partSessionContext struct{ opts options }

func (*partSessionContext) kind() partKind { return pkSessionContext }

type partStatementContext struct{ opts options }

func (*partStatementContext) kind() partKind    { return pkStatementContext }
func (p *partStatementContext) encode(e *encoder) { encodeOptions(e, p.opts) }
func (p *partStatementContext) size() int         { return optionsEncodedSize(p.opts) }

func decodePartStatementContext(d *decoder, argCount int32) *partStatementContext {
	return &partStatementContext{opts: decodeOptions(d, argCount)}
}

type partTransactionFlags struct{ opts options }

func (*partTransactionFlags) kind() partKind { return pkTransactionFlags }

func decodePartTransactionFlags(d *decoder, argCount int32) *partTransactionFlags {
	return &partTransactionFlags{opts: decodeOptions(d, argCount)}
}

type partTopology struct{ opts options }

func (*partTopology) kind() partKind { return pkTopology }

// XatOptions has no generic-options-map representation here: see xa.go's
// dedicated partXatOptions/partXARecoverRequest, which model its two
// distinct request shapes (single Xid+flags; scan flags only) directly.

type partDBConnectInfo struct{ opts options }

func (*partDBConnectInfo) kind() partKind { return pkDBConnectInfo }

// ---- StatementId / ResultSetId / RowsAffected ----------------------------

type partStatementID struct{ id uint64 }

func (*partStatementID) kind() partKind { return pkStatementID }

func decodePartStatementID(d *decoder) *partStatementID {
	return &partStatementID{id: d.uint64()}
}

func (p *partStatementID) encode(e *encoder) { e.uint64(p.id) }
func (p *partStatementID) size() int         { return 8 }

type partResultSetID struct{ id uint64 }

func (*partResultSetID) kind() partKind { return pkResultSetID }

func decodePartResultSetID(d *decoder) *partResultSetID {
	return &partResultSetID{id: d.uint64()}
}

func (p *partResultSetID) encode(e *encoder) { e.uint64(p.id) }
func (p *partResultSetID) size() int         { return 8 }

type partRowsAffected struct{ counts []int32 }

func (*partRowsAffected) kind() partKind { return pkRowsAffected }

// Per-row sentinels for executeBatch results.
const (
	rowsAffectedSuccessNoInfo int32 = -2
	rowsAffectedExecFailed    int32 = -3
)

func decodePartRowsAffected(d *decoder, argCount int32) *partRowsAffected {
	counts := make([]int32, argCount)
	for i := range counts {
		counts[i] = d.int32()
	}
	return &partRowsAffected{counts: counts}
}

// ---- FetchSize ------------------------------------------------------------

type partFetchSize struct{ size int32 }

func (*partFetchSize) kind() partKind { return pkFetchSize }

func (p *partFetchSize) encode(e *encoder) { e.int32(p.size) }
func (p *partFetchSize) size() int         { return 4 }

// ---- Error ----------------------------------------------------------------

// errorSeverity mirrors the HANA wire severity codes carried in the Error
// part, used to distinguish warnings from hard errors.
type errorSeverity int8

const (
	esWarning errorSeverity = 0
	esError   errorSeverity = 1
	esFatal   errorSeverity = 2
)

type wireError struct {
	Code       int32
	Position   int32
	TextLength int32
	Severity   errorSeverity
	SQLState   [5]byte
	Text       string
}

// ServerMessage is the exported view of one Error-part entry, used by
// callers outside the protocol package (see errors.go) to build a
// user-facing Error/Warning without reaching into wire internals.
type ServerMessage struct {
	Code     int32
	SQLState string
	Text     string
	Warning  bool
}

func (we wireError) toServerMessage() ServerMessage {
	return ServerMessage{
		Code:     we.Code,
		SQLState: string(we.SQLState[:]),
		Text:     we.Text,
		Warning:  we.Severity == esWarning,
	}
}

type partError struct{ errs []wireError }

func (*partError) kind() partKind { return pkError }

func decodePartError(d *decoder, argCount int32) *partError {
	errs := make([]wireError, argCount)
	for i := range errs {
		var we wireError
		we.Code = d.int32()
		we.Position = d.int32()
		we.TextLength = d.int32()
		we.Severity = errorSeverity(d.int8())
		var state [5]byte
		copy(state[:], d.bytes(5))
		we.SQLState = state
		n := int(we.TextLength)
		we.Text = string(cesu8.ToUTF8(d.bytes(n)))
		if pad := padBytes(18 + n); pad > 0 {
			d.skip(pad)
		}
		errs[i] = we
	}
	return &partError{errs: errs}
}

// isWarningOnly reports whether every error entry in the part is a warning
// rather than a hard failure, so message.go can surface warnings without
// aborting the request.
func (p *partError) isWarningOnly() bool {
	for _, e := range p.errs {
		if e.Severity != esWarning {
			return false
		}
	}
	return true
}

// ---- Parameter / ResultSet metadata ---------------------------------------

type parameterDescriptor struct {
	TypeCode     typeCode
	Mode         int8 // 1=IN, 2=INOUT, 4=OUT
	Nullable     bool
	Length       int16
	Fraction     int16
	NameOffset   int32
	Name         string
}

type partParameterMetadata struct{ descs []parameterDescriptor }

func (*partParameterMetadata) kind() partKind { return pkParameterMetadata }

func decodePartParameterMetadata(d *decoder, argCount int32) *partParameterMetadata {
	descs := make([]parameterDescriptor, argCount)
	for i := range descs {
		opt := d.int8()
		tc := typeCode(d.int8())
		length := d.int16()
		fraction := d.int16()
		d.skip(2) // reserved
		nameOffset := d.int32()
		descs[i] = parameterDescriptor{
			TypeCode: tc,
			Mode:     opt & 0x07,
			Nullable: opt&0x08 != 0,
			Length:   length,
			Fraction: fraction,
			NameOffset: nameOffset,
		}
	}
	resolveNames(d, descs, func(i int) int32 { return descs[i].NameOffset }, func(i int, s string) { descs[i].Name = s })
	return &partParameterMetadata{descs: descs}
}

type columnDescriptor struct {
	TypeCode   typeCode
	Nullable   bool
	Length     int16
	Fraction   int16
	NameOffset int32
	Name       string
}

type partResultSetMetadata struct{ cols []columnDescriptor }

func (*partResultSetMetadata) kind() partKind { return pkResultSetMetadata }

func decodePartResultSetMetadata(d *decoder, argCount int32) *partResultSetMetadata {
	cols := make([]columnDescriptor, argCount)
	for i := range cols {
		opt := d.int8()
		tc := typeCode(d.int8())
		length := d.int16()
		fraction := d.int16()
		d.skip(2)
		nameOffset := d.int32()
		cols[i] = columnDescriptor{
			TypeCode:   tc,
			Nullable:   opt&0x02 != 0,
			Length:     length,
			Fraction:   fraction,
			NameOffset: nameOffset,
		}
	}
	resolveNames(d, cols, func(i int) int32 { return cols[i].NameOffset }, func(i int, s string) { cols[i].Name = s })
	return &partResultSetMetadata{cols: cols}
}

// resolveNames reads the variable-length name pool that trails a metadata
// part: each referenced offset points at a length-prefixed CESU-8 string
// relative to the start of the pool. The pool immediately follows the last
// fixed-size descriptor record, so this must run right after those reads.
func resolveNames[T any](d *decoder, descs []T, offsetOf func(int) int32, setName func(int, string)) {
	// Names are read in ascending-offset order as they stream off the wire;
	// offsets equal to 0xFFFFFFFF mean "no name".
	type ref struct {
		idx int
		off int32
	}
	refs := make([]ref, 0, len(descs))
	for i := range descs {
		if off := offsetOf(i); off != -1 {
			refs = append(refs, ref{idx: i, off: off})
		}
	}
	pos := int32(0)
	for _, r := range refs {
		if r.off < pos {
			continue // already consumed out of order; best effort
		}
		if gap := r.off - pos; gap > 0 {
			d.skip(int(gap))
		}
		n, _ := readLength(d)
		s := string(cesu8.ToUTF8(d.bytes(n)))
		setName(r.idx, s)
		pos = r.off + int32(lengthIndicatorSize(n)) + int32(n)
	}
}

// ---- Parameters / ResultSet rows ------------------------------------------

// partParameters carries one or more rows of bound parameter values, each
// row encoded positionally according to descs.
type partParameters struct {
	descs []parameterDescriptor
	rows  [][]any
}

func (*partParameters) kind() partKind { return pkParameters }

func decodePartParameters(d *decoder, descs []parameterDescriptor, rowCount int32) (*partParameters, error) {
	rows := make([][]any, rowCount)
	for r := range rows {
		row := make([]any, len(descs))
		for c, desc := range descs {
			v, err := decodeValue(d, desc.TypeCode, int(desc.Fraction), desc.Nullable, 0)
			if err != nil {
				return nil, fmt.Errorf("protocol: parameter %d: %w", c, err)
			}
			row[c] = v
		}
		rows[r] = row
	}
	return &partParameters{descs: descs, rows: rows}, nil
}

func encodePartParameters(e *encoder, descs []parameterDescriptor, rows [][]any) error {
	for _, row := range rows {
		for c, desc := range descs {
			if err := encodeValue(e, desc.TypeCode, int(desc.Fraction), desc.Nullable, row[c]); err != nil {
				return fmt.Errorf("protocol: parameter %d: %w", c, err)
			}
		}
	}
	return nil
}

// partResultSet carries one fetch's worth of rows, decoded against cols.
type partResultSet struct {
	cols []columnDescriptor
	rows [][]any
}

func (*partResultSet) kind() partKind { return pkResultSet }

func decodePartResultSet(d *decoder, cols []columnDescriptor, rowCount int32) (*partResultSet, error) {
	rows := make([][]any, rowCount)
	for r := range rows {
		row := make([]any, len(cols))
		for c, col := range cols {
			v, err := decodeValue(d, col.TypeCode, int(col.Fraction), col.Nullable, 0)
			if err != nil {
				return nil, fmt.Errorf("protocol: column %d (%s): %w", c, col.Name, err)
			}
			row[c] = v
		}
		rows[r] = row
	}
	return &partResultSet{cols: cols, rows: rows}, nil
}

// ---- LOB request/reply ----------------------------------------------------

// lobOptions bit flags on ReadLobRequest/WriteLobRequest.
const (
	loDataIncluded uint8 = 0x02
	loLastData     uint8 = 0x04
	loNoData       uint8 = 0x01
)

type partReadLobRequest struct {
	locatorID uint64
	offset    int64 // 1-based
	length    int32
}

func (*partReadLobRequest) kind() partKind { return pkReadLobRequest }

func (p *partReadLobRequest) encode(e *encoder) {
	e.uint64(p.locatorID)
	e.int64(p.offset)
	e.int32(p.length)
	e.zeroes(4)
}

func (p *partReadLobRequest) size() int { return 8 + 8 + 4 + 4 }

type partReadLobReply struct {
	locatorID uint64
	isLast    bool
	data      []byte
}

func (*partReadLobReply) kind() partKind { return pkReadLobReply }

func decodePartReadLobReply(d *decoder) *partReadLobReply {
	id := d.uint64()
	opt := d.byte()
	n := int(d.int32())
	d.skip(3)
	data := d.bytes(n)
	return &partReadLobReply{locatorID: id, isLast: opt&loLastData != 0, data: data}
}

// writeLobDescriptor is one element of a WriteLobRequest part: offset -1
// always means append, per the wire's append-only write contract.
type writeLobDescriptor struct {
	locatorID uint64
	options   uint8
	data      []byte
}

type partWriteLobRequest struct{ descs []writeLobDescriptor }

func (*partWriteLobRequest) kind() partKind { return pkWriteLobRequest }

func (p *partWriteLobRequest) encode(e *encoder) {
	for _, wd := range p.descs {
		e.uint64(wd.locatorID)
		e.byte(wd.options)
		e.int64(-1) // offset: append
		e.int32(int32(len(wd.data)))
		e.bytes(wd.data)
	}
}

func (p *partWriteLobRequest) size() int {
	n := 0
	for _, wd := range p.descs {
		n += 8 + 1 + 8 + 4 + len(wd.data)
	}
	return n
}

type partWriteLobReply struct{ locatorIDs []uint64 }

func (*partWriteLobReply) kind() partKind { return pkWriteLobReply }

func decodePartWriteLobReply(d *decoder, argCount int32) *partWriteLobReply {
	ids := make([]uint64, argCount)
	for i := range ids {
		ids[i] = d.uint64()
	}
	return &partWriteLobReply{locatorIDs: ids}
}

// ---- CommandInfo ------------------------------------------------------------

// partCommandInfo carries the optional debugger-facing source location
// (line, module) a caller can attach to an Execute/ExecuteDirect request,
// per the original driver's CommandInfo::new(line, module). It is
// client-to-server only; the server never sends one back.
type partCommandInfo struct{ opts options }

func (*partCommandInfo) kind() partKind      { return pkCommandInfo }
func (p *partCommandInfo) encode(e *encoder) { encodeOptions(e, p.opts) }
func (p *partCommandInfo) size() int         { return optionsEncodedSize(p.opts) }

// newPartCommandInfo builds the wire part for a CommandInfo{line, module}.
func newPartCommandInfo(line int32, module string) *partCommandInfo {
	return &partCommandInfo{opts: options{
		int8(ciLineNumber): optInt(line),
		int8(ciModuleName): optString(module),
	}}
}

// ---- ExecutionResult (procedure OUT parameters of a function/procedure call) -

type partExecutionResult struct{ results []int32 }

func (*partExecutionResult) kind() partKind { return pkOutputParameters }
