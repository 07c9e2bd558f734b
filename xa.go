// SPDX-FileCopyrightText: 2014-2022 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdb

import (
	"context"
	"time"

	"github.com/hdbgo/hdb/protocol"
)

// Xid is an X/Open XA transaction branch identifier, as handed to a
// ResourceManager by an external transaction coordinator.
type Xid struct {
	FormatID int32
	Gtrid    []byte
	Bqual    []byte
}

func (x Xid) toProtocol() protocol.Xid {
	return protocol.Xid{FormatID: x.FormatID, Gtrid: x.Gtrid, Bqual: x.Bqual}
}

// ResourceManager issues the wire-level XA commands a distributed
// transaction coordinator drives a participating resource through. It does
// not itself coordinate a two-phase commit across resource managers; that
// is the coordinator's job. ResourceManager only translates XA verbs into
// HDB protocol roundtrips on one Connection.
type ResourceManager struct {
	conn *Connection
}

// NewResourceManager wraps conn as an XA resource manager. The connection
// must not be used for ordinary statement execution while participating in
// an XA transaction branch.
func NewResourceManager(conn *Connection) *ResourceManager { return &ResourceManager{conn: conn} }

// Start associates the connection with xid, beginning (flags ==
// protocol.XATMNoFlags) or rejoining/resuming (XATMJoin/XATMResume) work on
// that branch.
func (rm *ResourceManager) Start(ctx context.Context, xid Xid, flags int32) error {
	start := time.Now()
	_, err := rm.conn.roundtrip(ctx, protocol.NewXAStartRequest(xid.toProtocol(), flags))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	return err
}

// Join rejoins the connection to a branch another resource manager already
// started, via the dedicated XAJoin wire command rather than Start with
// XATMJoin set.
func (rm *ResourceManager) Join(ctx context.Context, xid Xid) error {
	start := time.Now()
	_, err := rm.conn.roundtrip(ctx, protocol.NewXAJoinRequest(xid.toProtocol()))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	return err
}

// End reports the branch's local outcome (XATMSuccess or XATMFail in
// flags) and disassociates the connection from xid.
func (rm *ResourceManager) End(ctx context.Context, xid Xid, flags int32) error {
	start := time.Now()
	_, err := rm.conn.roundtrip(ctx, protocol.NewXAEndRequest(xid.toProtocol(), flags))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	return err
}

// Prepare casts the branch's vote on whether xid can commit.
func (rm *ResourceManager) Prepare(ctx context.Context, xid Xid) error {
	start := time.Now()
	_, err := rm.conn.roundtrip(ctx, protocol.NewXAPrepareRequest(xid.toProtocol()))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	return err
}

// Commit commits xid. onePhase skips the prepare phase, valid only when
// this is the sole resource manager participating in the global
// transaction.
func (rm *ResourceManager) Commit(ctx context.Context, xid Xid, onePhase bool) error {
	start := time.Now()
	_, err := rm.conn.roundtrip(ctx, protocol.NewXACommitRequest(xid.toProtocol(), onePhase))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	return err
}

// Rollback rolls back xid's branch.
func (rm *ResourceManager) Rollback(ctx context.Context, xid Xid) error {
	start := time.Now()
	_, err := rm.conn.roundtrip(ctx, protocol.NewXARollbackRequest(xid.toProtocol()))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	return err
}

// Forget releases server-side bookkeeping for a heuristically-completed
// xid.
func (rm *ResourceManager) Forget(ctx context.Context, xid Xid) error {
	start := time.Now()
	_, err := rm.conn.roundtrip(ctx, protocol.NewXAForgetRequest(xid.toProtocol()))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	return err
}

// Recover enumerates the branches the server is currently holding in a
// prepared state, for crash recovery. Callers scan by passing
// protocol.XATMStartScan on the first call, protocol.XATMNoFlags on
// subsequent calls, and protocol.XATMEndScan to close the scan.
func (rm *ResourceManager) Recover(ctx context.Context, flags int32) ([]Xid, error) {
	start := time.Now()
	rep, err := rm.conn.roundtrip(ctx, protocol.NewXARecoverRequest(flags))
	rm.conn.recordTime(StatsTimeXA, time.Since(start))
	if err != nil {
		return nil, err
	}
	pxids, ok := rep.XARecoverReply()
	if !ok {
		return nil, nil
	}
	xids := make([]Xid, len(pxids))
	for i, x := range pxids {
		xids[i] = Xid{FormatID: x.FormatID, Gtrid: x.Gtrid, Bqual: x.Bqual}
	}
	return xids, nil
}
