package protocol

import (
	"context"
	"fmt"

	"github.com/hdbgo/hdb/common"
)

// ConnectParams carries everything Authenticate needs beyond the dialed
// Transport: credentials, the driver's self-identification, and the
// ConnectOptions this session wants to negotiate.
type ConnectParams struct {
	User          string
	Password      string
	ClientVersion string
	DriverName    string
	ClientLocale  string
}

// ConnectResult is what a successful Authenticate roundtrip establishes:
// the session id every later request must carry, plus the handful of
// negotiated ConnectOptions later requests need to remember.
type ConnectResult struct {
	SessionID     int64
	ClientLocale  string
	DataFormat    int32
	ServerVersion common.HDBVersion
}

// Authenticate drives the two-roundtrip SCRAM handshake (Authenticate,
// then Connect) over an already-dialed Transport and returns the session
// the server opened.
func Authenticate(ctx context.Context, t *Transport, p ConnectParams) (ConnectResult, error) {
	neg, err := newAuthNegotiator(p.User, p.Password)
	if err != nil {
		return ConnectResult{}, fmt.Errorf("protocol: building auth challenge: %w", err)
	}

	initReq := neg.buildInitialRequest(p.ClientVersion, p.DriverName)
	if err := t.Send(0, initReq); err != nil {
		return ConnectResult{}, err
	}
	initReply, err := t.Recv()
	if err != nil {
		return ConnectResult{}, err
	}
	authInit, err := parseAuthInitReply(initReply)
	if err != nil {
		return ConnectResult{}, err
	}

	locale := p.ClientLocale
	if locale == "" {
		locale = "en_US"
	}
	connOpts := options{
		int8(coClientLocale):           optString(locale),
		int8(coDataFormatVersion2):     optInt(int32(common.DfvLevel8)),
		int8(coCompleteArrayExecution): optBool(true),
		int8(coClientDistributionMode): optInt(0), // off: this driver does not follow topology redirects mid-session
	}
	finalReq, err := neg.buildFinalRequest(authInit, connOpts)
	if err != nil {
		return ConnectResult{}, err
	}
	if err := t.Send(0, finalReq); err != nil {
		return ConnectResult{}, err
	}
	connReply, err := t.Recv()
	if err != nil {
		return ConnectResult{}, err
	}

	result := ConnectResult{SessionID: connReply.SessionID(), ClientLocale: locale, DataFormat: int32(common.DfvLevel8)}
	if cp, ok := connReply.findPart(pkConnectOptions); ok {
		d := cp.decoder()
		negotiated := decodeOptions(d, cp.header.argCount)
		if locale, ok := negotiated.getString(int8(coClientLocale)); ok {
			result.ClientLocale = locale
		}
		if dfv, ok := negotiated.getInt(int8(coDataFormatVersion2)); ok && common.IsSupportedDfv(int(dfv)) {
			result.DataFormat = dfv
		}
		if fv, ok := negotiated.getString(int8(coFullVersionString)); ok {
			result.ServerVersion = common.ParseHDBVersion(fv)
		}
	}
	return result, nil
}

// NewDBConnectInfoRequest builds a DBConnectInfo message asking the server
// whether databaseName is served locally or must be redirected to, used by
// the tenant-redirect step before authentication when a database name was
// configured.
func NewDBConnectInfoRequest(databaseName string) *Request {
	req := newRequest(mtDBConnectInfo)
	req.addPart(partDBConnectInfoRequest{opts: options{
		int8(dciDatabaseName): optString(databaseName),
	}})
	return req
}

// dbConnectInfoOptionID enumerates DBConnectInfo part entries.
type dbConnectInfoOptionID int8

const (
	dciDatabaseName  dbConnectInfoOptionID = 1
	dciHost          dbConnectInfoOptionID = 2
	dciPort          dbConnectInfoOptionID = 3
	dciIsConnected   dbConnectInfoOptionID = 4
)

type partDBConnectInfoRequest struct{ opts options }

func (partDBConnectInfoRequest) kind() partKind           { return pkDBConnectInfo }
func (r partDBConnectInfoRequest) encode(e *encoder)      { encodeOptions(e, r.opts) }
func (r partDBConnectInfoRequest) size() int              { return optionsEncodedSize(r.opts) }

// DBRedirect is the outcome of a DBConnectInfo roundtrip: either the
// current host:port already serves the requested tenant (Connected=true),
// or Host/Port name where to reconnect.
type DBRedirect struct {
	Connected bool
	Host      string
	Port      int
}

// ParseDBConnectInfoReply extracts the redirect decision from a
// DBConnectInfo reply.
func ParseDBConnectInfoReply(rp *Reply) (DBRedirect, error) {
	p, ok := rp.findPart(pkDBConnectInfo)
	if !ok {
		return DBRedirect{}, fmt.Errorf("protocol: DBConnectInfo reply missing DBConnectInfo part")
	}
	d := p.decoder()
	opts := decodeOptions(d, p.header.argCount)
	if err := d.error(); err != nil {
		return DBRedirect{}, err
	}
	var redirect DBRedirect
	if connected, ok := opts.getBool(int8(dciIsConnected)); ok {
		redirect.Connected = connected
	}
	if host, ok := opts.getString(int8(dciHost)); ok {
		redirect.Host = host
	}
	if port, ok := opts.getInt(int8(dciPort)); ok {
		redirect.Port = int(port)
	}
	return redirect, nil
}
