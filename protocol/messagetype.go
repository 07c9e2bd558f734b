package protocol

// messageType is the request discriminator carried in a request segment
// header.
type messageType int8

const (
	mtNil              messageType = 0
	mtExecuteDirect    messageType = 2
	mtPrepare          messageType = 3
	mtAbapStream       messageType = 4
	mtXAStart          messageType = 5
	mtXAJoin           messageType = 6
	mtExecute          messageType = 13
	mtWriteLob         messageType = 16
	mtReadLob          messageType = 17
	mtFindLob          messageType = 18
	mtAuthenticate     messageType = 65
	mtConnect          messageType = 66
	mtCommit           messageType = 67
	mtRollback         messageType = 68
	mtCloseResultSet   messageType = 69
	mtDropStatementID  messageType = 70
	mtFetchNext        messageType = 71
	mtDisconnect       messageType = 77
	mtDBConnectInfo    messageType = 82
	mtXACommit         messageType = 83
	mtXARollback       messageType = 84
	mtXARecover        messageType = 85
	mtXAForget         messageType = 86
	mtXAPrepare        messageType = 87
	mtXAEnd            messageType = 88
)

func (mt messageType) isProcedureCall() bool { return false }

// functionCode identifies the kind of reply the server returned, and, when
// negative, signals that the reply carries an Error part.
type functionCode int16

const (
	fcNil             functionCode = 0
	fcDDL             functionCode = 1
	fcInsert          functionCode = 2
	fcUpdate          functionCode = 3
	fcDelete          functionCode = 4
	fcSelect          functionCode = 5
	fcSelectForUpdate functionCode = 6
	fcExplain         functionCode = 7
	fcDBProcedureCall functionCode = 8
	fcFetch           functionCode = 9
	fcCommit          functionCode = 10
	fcRollback        functionCode = 11
	fcSavepoint       functionCode = 12
	fcConnect         functionCode = 13
	fcWriteLob        functionCode = 14
	fcReadLob         functionCode = 15
	fcDisconnect      functionCode = 18
	fcCloseCursor     functionCode = 19
	fcFindLob         functionCode = 20
	fcAuthenticate    functionCode = 33
	fcDBConnectInfo   functionCode = 39
	fcXAStart         functionCode = 40
	fcXAJoin          functionCode = 41
	fcXASend          functionCode = 42
)

// isError reports whether a (signed) function code signals an error reply.
// On the wire the server uses the sign bit, but go-hdb's reference client
// relies on the presence of an Error part rather than the sign, which is
// what this driver does too (see message.go).
func (fc functionCode) isError() bool { return fc < 0 }
