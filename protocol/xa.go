package protocol

// Xid is an X/Open XA transaction branch identifier: a format id plus the
// global transaction id and branch qualifier byte strings, exactly as a
// caller's external transaction manager hands it to the resource manager.
type Xid struct {
	FormatID int32
	Gtrid    []byte
	Bqual    []byte
}

func (x Xid) size() int { return 4 + 4 + len(x.Gtrid) + 4 + len(x.Bqual) }

func (x Xid) encode(e *encoder) {
	e.int32(x.FormatID)
	e.int32(int32(len(x.Gtrid)))
	e.bytes(x.Gtrid)
	e.int32(int32(len(x.Bqual)))
	e.bytes(x.Bqual)
}

func decodeXid(d *decoder) Xid {
	formatID := d.int32()
	gtridLen := int(d.int32())
	gtrid := d.bytes(gtridLen)
	bqualLen := int(d.int32())
	bqual := d.bytes(bqualLen)
	return Xid{FormatID: formatID, Gtrid: gtrid, Bqual: bqual}
}

// XA flags, per the X/Open XA C API (xa.h): the caller composes these with
// bitwise OR the same way a tx resource manager would.
const (
	XATMNoFlags    int32 = 0x00000000
	XATMJoin       int32 = 0x00200000
	XATMResume     int32 = 0x08000000
	XATMSuccess    int32 = 0x04000000
	XATMFail       int32 = 0x20000000
	XATMOnePhase   int32 = 0x40000000
	XATMStartScan  int32 = 0x01000000 // xa_recover: begin a fresh scan
	XATMEndScan    int32 = 0x00800000
)

// partXatOptions carries one Xid plus a flags word for the XA request
// types that operate on a single branch (Start, End, Prepare, Commit,
// Rollback, Forget).
type partXatOptions struct {
	xid   Xid
	flags int32
}

func (*partXatOptions) kind() partKind { return pkXatOptions }
func (p *partXatOptions) encode(e *encoder) {
	p.xid.encode(e)
	e.int32(p.flags)
}
func (p *partXatOptions) size() int { return p.xid.size() + 4 }

func newXARequest(mt messageType, xid Xid, flags int32) *Request {
	req := newRequest(mt)
	req.addPart(&partXatOptions{xid: xid, flags: flags})
	return req
}

// NewXAStartRequest begins (or, with XATMJoin/XATMResume, rejoins) work on
// behalf of xid within the session's current transaction branch.
func NewXAStartRequest(xid Xid, flags int32) *Request { return newXARequest(mtXAStart, xid, flags) }

// NewXAEndRequest marks the end of the session's association with xid.
// flags should include XATMSuccess or XATMFail to report the branch's local
// outcome.
func NewXAEndRequest(xid Xid, flags int32) *Request { return newXARequest(mtXAEnd, xid, flags) }

// NewXAPrepareRequest asks the server to vote on whether xid can commit, the
// first phase of two-phase commit.
func NewXAPrepareRequest(xid Xid) *Request { return newXARequest(mtXAPrepare, xid, XATMNoFlags) }

// NewXACommitRequest commits xid. onePhase collapses prepare+commit into a
// single roundtrip, valid only when xid is the sole participating resource
// manager.
func NewXACommitRequest(xid Xid, onePhase bool) *Request {
	flags := XATMNoFlags
	if onePhase {
		flags = XATMOnePhase
	}
	return newXARequest(mtXACommit, xid, flags)
}

// NewXARollbackRequest rolls back xid's branch.
func NewXARollbackRequest(xid Xid) *Request { return newXARequest(mtXARollback, xid, XATMNoFlags) }

// NewXAForgetRequest releases any server-side bookkeeping for a
// heuristically-completed xid.
func NewXAForgetRequest(xid Xid) *Request { return newXARequest(mtXAForget, xid, XATMNoFlags) }

// NewXAJoinRequest joins an existing transaction branch, used when a second
// session within the same global transaction needs to participate.
func NewXAJoinRequest(xid Xid) *Request { return newXARequest(mtXAJoin, xid, XATMJoin) }

// partXARecoverRequest carries the scan flags for XARecover; it has no Xid,
// since recovery enumerates whatever branches the server is holding.
type partXARecoverRequest struct{ flags int32 }

func (*partXARecoverRequest) kind() partKind      { return pkXatOptions }
func (p *partXARecoverRequest) encode(e *encoder) { e.int32(p.flags) }
func (p *partXARecoverRequest) size() int         { return 4 }

// NewXARecoverRequest asks the server to report in-doubt branches it is
// holding; flags is XATMStartScan for the first call in a scan, XATMNoFlags
// for subsequent calls, XATMEndScan for the last.
func NewXARecoverRequest(flags int32) *Request {
	req := newRequest(mtXARecover)
	req.addPart(&partXARecoverRequest{flags: flags})
	return req
}

// XARecoverReply decodes a reply's XatOptions part into the list of Xids
// the server is currently holding in a prepared state.
func (r *Reply) XARecoverReply() ([]Xid, bool) {
	p, ok := r.findPart(pkXatOptions)
	if !ok {
		return nil, false
	}
	d := p.decoder()
	xids := make([]Xid, 0, p.header.argCount)
	for i := int32(0); i < p.header.argCount; i++ {
		xids = append(xids, decodeXid(d))
	}
	if err := d.error(); err != nil {
		return nil, false
	}
	return xids, true
}
