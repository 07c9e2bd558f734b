// SPDX-FileCopyrightText: 2014-2022 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hdbgo/hdb/common"
	"github.com/hdbgo/hdb/protocol"
	"github.com/hdbgo/hdb/wgroup"
)

// minimalServerVersion is the oldest HANA server version this driver
// negotiates the documented wire protocol against.
var minimalServerVersion = common.ParseHDBVersion("2.00.042")

// Connection is a single session against a HANA instance: one TCP (or TLS)
// connection, one negotiated authentication, one sequence of request/reply
// roundtrips. It is not safe for concurrent use by multiple goroutines,
// mirroring the server's one-roundtrip-at-a-time session model.
type Connection struct {
	cfg *Config

	// id is a client-generated correlation id (not sent over the wire),
	// attached to this connection's log lines so a multi-connection host
	// application can tell them apart.
	id string

	mu        sync.Mutex
	transport *protocol.Transport
	sessionID int64
	bad       atomic.Bool // set once a protocol/transport error poisons the connection

	connOpts      connOptions
	databaseName  string
	serverVersion common.HDBVersion
	inTx          bool

	// stmtSequenceInfo is the last statement_sequence_info token the
	// server sent in a StatementContext part; it must be echoed back on
	// the next request within the same logical sequence, per the
	// Connection Core's roundtrip discipline.
	stmtSequenceInfo []byte

	warnings []Warning

	// openResultSets tracks every not-yet-complete ResultSet spawned from
	// this connection, so Commit/Rollback can locally invalidate them per
	// cfg.CursorHoldability without a server roundtrip.
	openResultSets []*ResultSet

	// lastBufferShrinks is the transport shrink count last folded into
	// metrics, so only the delta since the previous roundtrip is added to
	// the counterBufferShrinks counter.
	lastBufferShrinks uint64

	metrics *metrics

	wg *sync.WaitGroup // tracks the in-flight roundtrip goroutine, for ctx cancellation
}

// connOptions mirrors the handful of ConnectOptions negotiated at connect
// time that later requests need to remember: the client locale and the
// data format version.
type connOptions struct {
	clientLocale string
	dataFormat   int32
}

// clientVersion is reported to the server in ClientContext during the
// initial Authenticate request.
const clientVersion = "1.0.0"

// Connect dials cfg.Host:cfg.Port, performs the hello handshake, negotiates
// authentication, and opens a session. If cfg.DatabaseName names a tenant
// other than the one the initial host:port serves, Connect follows the
// server's DBConnectInfo redirect to the tenant's own host:port before
// authenticating, per the Connection Core's redirect contract.
func Connect(ctx context.Context, cfg *Config) (*Connection, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	c := &Connection{cfg: cfg, id: uuid.NewString(), metrics: newMetrics(nil, defaultTimeBuckets()), wg: &sync.WaitGroup{}}

	topts := protocol.TransportOptions{
		Dialer:        cfg.Dialer,
		DialerOptions: cfg.DialerOptions,
		TLSConfig:     cfg.TLSConfig,
		Compress:      cfg.Compress,
		MaxBufferSize: cfg.maxBufferSize(),
	}

	addr := cfg.address()
	if cfg.DatabaseName != "" {
		redirected, err := resolveTenantAddress(ctx, addr, cfg.DatabaseName, topts)
		if err != nil {
			return nil, newError(ClassTransport, err)
		}
		addr = redirected
	}

	t, err := protocol.Connect(ctx, addr, topts)
	if err != nil {
		return nil, newError(ClassTransport, err)
	}
	result, err := protocol.Authenticate(ctx, t, protocol.ConnectParams{
		User:          cfg.Username,
		Password:      cfg.Password,
		ClientVersion: clientVersion,
		DriverName:    DriverName,
		ClientLocale:  cfg.Locale,
	})
	if err != nil {
		t.Close()
		return nil, newError(ClassSecurity, err)
	}

	c.transport = t
	c.sessionID = result.SessionID
	c.connOpts = connOptions{clientLocale: result.ClientLocale, dataFormat: result.DataFormat}
	c.databaseName = cfg.DatabaseName
	c.serverVersion = result.ServerVersion
	if !c.serverVersion.IsEmpty() && c.serverVersion.Compare(minimalServerVersion) == -1 {
		t.Close()
		return nil, newError(ClassUsage, fmt.Errorf("hdb: server version %s is not supported - minimal server version: %s", c.serverVersion, minimalServerVersion))
	}
	if cfg.DefaultSchema != "" {
		if _, _, err := c.ExecuteDirect(ctx, "SET SCHEMA "+cfg.DefaultSchema); err != nil {
			c.Close()
			return nil, newError(ClassUsage, fmt.Errorf("hdb: setting default schema %s: %w", cfg.DefaultSchema, err))
		}
	}
	c.metrics.chGauges <- gaugeMsg{v: 1, idx: gaugeConn}
	return c, nil
}

// Spawn opens a fresh Connection against the same parameters and
// Config this one was built from, independent of this connection's
// transport/session state, per the Connection Core's spawn() operation.
func (c *Connection) Spawn(ctx context.Context) (*Connection, error) {
	return Connect(ctx, c.cfg)
}

// SetAutoCommit changes whether a successful ExecuteDirect/ExecuteBatch
// implicitly commits, taking effect on the next execute.
func (c *Connection) SetAutoCommit(on bool) { c.cfg.AutoCommit = on }

// SetCursorHoldability changes whether open ResultSet cursors survive
// Commit/Rollback on this connection, taking effect on the next
// Commit/Rollback.
func (c *Connection) SetCursorHoldability(h CursorHoldability) { c.cfg.CursorHoldability = h }

// SetReadTimeout changes the per-roundtrip reply deadline, taking effect
// on the next roundtrip.
func (c *Connection) SetReadTimeout(d time.Duration) { c.cfg.ReadTimeout = d }

// DumpConnectionID returns this connection's client-generated correlation
// id, a diagnostic synonym for ID.
func (c *Connection) DumpConnectionID() string { return c.id }

// DumpServerVersion returns the negotiated HANA server version, a
// diagnostic synonym for ServerVersion.
func (c *Connection) DumpServerVersion() common.HDBVersion { return c.serverVersion }

// DumpStats returns a snapshot of this connection's counters, a
// diagnostic synonym for Stats.
func (c *Connection) DumpStats() Stats { return c.Stats() }

// resolveTenantAddress asks the server at addr (typically the SYSTEMDB or a
// load balancer endpoint) where databaseName is actually served, following
// one DBConnectInfo redirect, per the Connection Core's tenant-redirect
// contract. The probe connection is closed before returning; the caller
// dials the resolved address fresh.
func resolveTenantAddress(ctx context.Context, addr, databaseName string, topts protocol.TransportOptions) (string, error) {
	t, err := protocol.Connect(ctx, addr, topts)
	if err != nil {
		return "", err
	}
	defer t.Close()

	req := protocol.NewDBConnectInfoRequest(databaseName)
	if err := t.Send(0, req); err != nil {
		return "", err
	}
	rep, err := t.Recv()
	if err != nil {
		return "", err
	}
	redirect, err := protocol.ParseDBConnectInfoReply(rep)
	if err != nil {
		return "", err
	}
	if redirect.Connected {
		return addr, nil
	}
	if redirect.Host == "" || redirect.Port == 0 {
		return "", fmt.Errorf("hdb: server did not return a redirect address for database %q", databaseName)
	}
	return fmt.Sprintf("%s:%d", redirect.Host, redirect.Port), nil
}

func defaultTimeBuckets() []uint64 {
	return []uint64{1, 5, 10, 50, 100, 500, 1000, 5000}
}

// poisoned reports whether the connection has already failed in a way
// that makes every further operation on it invalid without a roundtrip,
// per the Connection Core's poisoning rule (ErrFatal).
func (c *Connection) poisoned() bool { return c.bad.Load() }

func (c *Connection) poison(err error) error {
	c.bad.Store(true)
	return err
}

// Close releases the underlying connection. It does not attempt a polite
// Disconnect message if the connection is already poisoned: per the
// best-effort-disconnect design decision (see DESIGN.md), a poisoned or
// otherwise broken transport is simply dropped.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport == nil {
		return nil
	}
	c.metrics.chGauges <- gaugeMsg{v: -1, idx: gaugeConn}
	if !c.poisoned() {
		req := protocol.NewDisconnectRequest()
		if err := c.transport.Send(c.sessionID, req); err != nil {
			c.logger().Warn("best-effort disconnect failed", "error", err)
		}
	}
	err := c.transport.Close()
	c.transport = nil
	return err
}

// DatabaseName returns the tenant database name the session was finally
// authenticated against (after any redirect).
func (c *Connection) DatabaseName() string { return c.databaseName }

// ID returns this connection's client-generated correlation id, useful for
// matching its log lines across a host application that holds several
// connections concurrently.
func (c *Connection) ID() string { return c.id }

// logger returns the package logger tagged with this connection's
// correlation id.
func (c *Connection) logger() *slog.Logger { return dlog.With("conn_id", c.id) }

// ServerVersion returns the HANA server's full version, as reported in
// ConnectOptions' FullVersionString entry during authentication.
func (c *Connection) ServerVersion() common.HDBVersion { return c.serverVersion }

// InTransaction reports whether the most recent roundtrip's
// TransactionFlags indicated an open transaction (no commit/rollback
// flag set since the last one). It reflects only what the server has
// reported so far, not a local auto-commit computation.
func (c *Connection) InTransaction() bool { return c.inTx }

// Warnings drains and returns every non-fatal server warning accumulated
// since the last call, per the Error/Warning Plumbing's pop_warnings
// contract: warnings never interrupt the call that produced them, but
// callers that care can retrieve them afterward.
func (c *Connection) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.warnings
	c.warnings = nil
	return w
}

// roundtrip sends req and waits for the matching reply, poisoning the
// connection on any transport- or protocol-level failure (never on a
// server-reported SQL error, which is a normal, recoverable outcome).
//
// The send/receive pair runs on a tracked goroutine so that a ctx
// cancellation can return control to the caller without waiting for a
// blocked socket read, mirroring the teacher's wgroup-tracked
// query/exec/prepare cancellation. This driver has no grounded wire-level
// "cancel the current statement" command, so a ctx cancellation poisons the
// connection outright: the in-flight reply can no longer be reliably
// correlated to anything once the caller has stopped waiting for it.
func (c *Connection) roundtrip(ctx context.Context, req *protocol.Request) (*protocol.Reply, error) {
	if c.poisoned() {
		return nil, &Error{Class: ClassPoisoned, Err: ErrFatal}
	}

	if c.cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ReadTimeout)
		defer cancel()
	}

	protocol.AttachStatementSequence(req, c.stmtSequenceInfo)

	var rep *protocol.Reply
	var err error
	done := make(chan struct{})
	wgroup.Go(c.wg, func() {
		defer close(done)
		if sendErr := c.transport.Send(c.sessionID, req); sendErr != nil {
			err = c.poison(newError(ClassTransport, sendErr))
			return
		}
		r, recvErr := c.transport.Recv()
		if recvErr != nil {
			if sms, ok := protocol.ServerMessages(recvErr); ok {
				err = firstServerError(sms)
				return
			}
			err = c.poison(newError(ClassProtocol, recvErr))
			return
		}
		rep = r
	})

	select {
	case <-ctx.Done():
		c.poison(ctx.Err())
		return nil, ctx.Err()
	case <-done:
		if err == nil && rep != nil {
			c.mergeReplyState(rep)
			c.reportBufferShrinks()
		}
		return rep, err
	}
}

// reportBufferShrinks folds any new Transport scratch-buffer shrinks since
// the last roundtrip into the counterBufferShrinks counter, so Stats()
// surfaces the buffer discipline's shrink count the same way every other
// counter is collected: through the metrics actor rather than a bypass
// read of the transport.
func (c *Connection) reportBufferShrinks() {
	if c.transport == nil {
		return
	}
	n := c.transport.BufferShrinks()
	if n > c.lastBufferShrinks {
		c.metrics.chCounters <- counterMsg{v: n - c.lastBufferShrinks, idx: counterBufferShrinks}
		c.lastBufferShrinks = n
	}
}

// mergeReplyState applies the roundtrip discipline spec.md's Connection
// Core requires after every successful reply: remember the echoed
// statement-sequence token for the next request, and fold TransactionFlags
// into the session's in-transaction bookkeeping.
func (c *Connection) mergeReplyState(rep *protocol.Reply) {
	if sms := rep.Warnings(); len(sms) > 0 {
		c.mu.Lock()
		for _, sm := range sms {
			c.warnings = append(c.warnings, Warning{Code: sm.Code, SQLState: sm.SQLState, Text: sm.Text})
		}
		c.mu.Unlock()
	}
	if info, ok := rep.StatementSequenceInfo(); ok {
		c.stmtSequenceInfo = info
	}
	rolledBack, committed, sessionClosing, ok := rep.TransactionFlags()
	if !ok {
		return
	}
	if sessionClosing {
		c.poison(newError(ClassProtocol, fmt.Errorf("hdb: server closed the session due to a transaction error")))
		return
	}
	wasInTx := c.inTx
	c.inTx = !rolledBack && !committed
	if c.inTx != wasInTx {
		v := int64(1)
		if !c.inTx {
			v = -1
		}
		c.metrics.chGauges <- gaugeMsg{v: v, idx: gaugeTx}
	}
}

// trackResultSet registers rs as open, so a later Commit/Rollback can
// locally invalidate it per cfg.CursorHoldability.
func (c *Connection) trackResultSet(rs *ResultSet) {
	c.mu.Lock()
	c.openResultSets = append(c.openResultSets, rs)
	c.mu.Unlock()
}

// untrackResultSet removes rs once it no longer needs an implicit
// Commit/Rollback invalidation (already closed, or the server reported the
// cursor complete).
func (c *Connection) untrackResultSet(rs *ResultSet) {
	c.mu.Lock()
	for i, r := range c.openResultSets {
		if r == rs {
			c.openResultSets = append(c.openResultSets[:i], c.openResultSets[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

// invalidateResultSets locally closes every still-open ResultSet without a
// CloseResultSet roundtrip, for the Commit/Rollback event cfg.
// CursorHoldability says the server has already implicitly ended cursors
// for.
func (c *Connection) invalidateResultSets() {
	c.mu.Lock()
	rss := c.openResultSets
	c.openResultSets = nil
	c.mu.Unlock()
	for _, rs := range rss {
		rs.invalidate()
	}
}

func firstServerError(sms []protocol.ServerMessage) *Error {
	if len(sms) == 0 {
		return newError(ClassServer, fmt.Errorf("hdb: server reported an error with no detail"))
	}
	return newServerError(sms[0])
}

// Stats returns a snapshot of this connection's I/O and timing counters.
func (c *Connection) Stats() Stats {
	return c.metrics.stats()
}

// recordTime feeds one measurement into the connection's per-category
// timing histogram (query, fetch, exec, prepare, ...), see stats.go.
func (c *Connection) recordTime(category int, d time.Duration) {
	c.metrics.chHistograms <- gaugeMsg{v: int64(d), idx: category}
}
