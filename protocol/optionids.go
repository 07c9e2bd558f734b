package protocol

// connectOptionID enumerates the ConnectOptions part's well-known entries
// exchanged during the Connect roundtrip of authentication.
type connectOptionID int8

const (
	coConnectionID            connectOptionID = 1
	coCompleteArrayExecution  connectOptionID = 2
	coClientLocale            connectOptionID = 3
	coSupportsLargeBulkOps    connectOptionID = 4
	coDistributionEnabled     connectOptionID = 5
	coDataFormatVersion2      connectOptionID = 23
	coClientDistributionMode  connectOptionID = 19
	coEngineDataFormatVersion connectOptionID = 24
	coSelectForUpdateSupported connectOptionID = 14
	coClientInfoNullValue     connectOptionID = 30
	coFdaEnabled              connectOptionID = 31
	coOSUser                  connectOptionID = 32
	coRowSlotImageParameter   connectOptionID = 33
	coEnableArrayType         connectOptionID = 39
	coFullVersionString       connectOptionID = 44
)

// clientContextOptionID enumerates ClientContext part entries sent ahead
// of the first Authenticate request.
type clientContextOptionID int8

const (
	ccoVersion        clientContextOptionID = 1
	ccoClientType     clientContextOptionID = 2
	ccoClientApplicationProgram clientContextOptionID = 3
)

// transactionFlagID enumerates TransactionFlags part entries returned on
// replies that open/close/modify the current transaction state.
type transactionFlagID int8

const (
	tfRolledback                transactionFlagID = 0
	tfCommitted                 transactionFlagID = 1
	tfNewIsolationLevel         transactionFlagID = 2
	tfDdlCommitModeChanged      transactionFlagID = 3
	tfWriteTransactionStarted   transactionFlagID = 4
	tfNoWriteTransactionPending transactionFlagID = 5
	tfSessionClosingTransactionError transactionFlagID = 6
)

// statementContextOptionID enumerates StatementContext part entries.
type statementContextOptionID int8

const (
	scStatementSequenceInfo statementContextOptionID = 1
	scServerProcessingTime  statementContextOptionID = 2
	scSchemaName            statementContextOptionID = 3
	scFlagSet               statementContextOptionID = 4
	scServerCPUTime         statementContextOptionID = 5
	scServerMemoryUsage     statementContextOptionID = 6
)

// commandInfoID enumerates CommandInfo part entries: debugger-facing
// source location attached to an Execute/ExecuteDirect request, mirroring
// the original driver's CommandInfo::new(line, module).
type commandInfoID int8

const (
	ciLineNumber commandInfoID = 1
	ciModuleName commandInfoID = 2
)

// clientInfoKey is a user-supplied free-form key in a ClientInfo part.
type clientInfoKey = string
