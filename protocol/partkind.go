package protocol

// partKind identifies the body layout carried after a part header. Values
// follow the HANA SQL command network protocol reference.
type partKind int8

const (
	pkNil                    partKind = 0
	pkCommand                partKind = 3
	pkResultSet              partKind = 5
	pkError                  partKind = 6
	pkStatementID            partKind = 10
	pkTransactionID          partKind = 11
	pkRowsAffected           partKind = 12
	pkResultSetID            partKind = 13
	pkTopology               partKind = 15
	pkTableLocation          partKind = 16
	pkReadLobRequest         partKind = 17
	pkReadLobReply           partKind = 18
	pkAbapIStream            partKind = 25
	pkAbapOStream            partKind = 26
	pkCommandInfo            partKind = 27
	pkWriteLobRequest        partKind = 28
	pkClientContext          partKind = 29
	pkWriteLobReply          partKind = 30
	pkParameters             partKind = 32
	pkAuthentication         partKind = 33
	pkSessionContext         partKind = 34
	pkClientID               partKind = 35
	pkProfileRecord          partKind = 38
	pkCommandOptions         partKind = 40
	pkConnectOptions         partKind = 42
	pkOutputParameters       partKind = 43
	pkFetchSize              partKind = 45
	pkParameterMetadata      partKind = 47
	pkResultSetMetadata      partKind = 48
	pkFindLobRequest         partKind = 49
	pkFindLobReply           partKind = 50
	pkItabShm                partKind = 51
	pkItabShmInfo            partKind = 52
	pkItabChunkMetadata      partKind = 55
	pkItabMetadata           partKind = 56
	pkItabResultChunk        partKind = 57
	pkClientInfo             partKind = 58
	pkStreamData             partKind = 59
	pkOStreamResult          partKind = 60
	pkFdaRequestMetadata     partKind = 61
	pkFdaReplyMetadata       partKind = 62
	pkBatchPrepare           partKind = 63
	pkTransactionFlags       partKind = 64
	pkRowSlotImageParam      partKind = 65
	pkResultsetOptions       partKind = 70
	pkXatOptions             partKind = 77
	pkDBConnectInfo          partKind = 82
	pkStatementContext       partKind = 39
)
