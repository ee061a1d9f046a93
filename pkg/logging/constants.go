package logging

// Shortcuts for event types.
// Any event that happens multiple times should have a single character representation
const (
	ServiceStarted        = "start"
	ServiceStopped        = "stop"
	UnitCreated           = "U"
	PrimeUnitCreated      = "P"
	NewTimingUnit         = "T"
	UnitOrdered           = "O"
	OwnUnitOrdered        = "OO"
	LinearOrderExtended   = "L"
	ConnectionReceived    = "R"
	ConnectionEstablished = "E"
	ConnectionClosed      = "EC"
	TooManyIncoming       = "ZI"
	NotEnoughParents      = "Z"
	TooManyParents        = "ZM"
	ReadyToAdd            = "A"
	UnknownParents        = "AU"
	DuplicatedUnits       = "AD"
	DuplicatedPreunits    = "ADP"
	MemoryUsage           = "M"
	SyncStarted           = "SS"
	SyncCompleted         = "SC"
	GetDagInfo            = "GDI"
	SendDagInfo           = "SDI"
	SendUnits             = "SU"
	SentUnits             = "SUD"
	SendFreshUnits        = "SFU"
	SentFreshUnits        = "SFUD"
	SendRequests          = "SRQ"
	GetPreunits           = "GPU"
	ReceivedPreunits      = "RPU"
	GetRequests           = "GRQ"
	AdditionalExchange    = "AE"
	AddUnits              = "ADU"
)

// eventTypeDict maps short event names to human readable form
var eventTypeDict = map[string]string{
	UnitCreated:           "new regular unit created",
	PrimeUnitCreated:      "new prime unit created",
	NewTimingUnit:         "new timing unit",
	UnitOrdered:           "unit added to linear order",
	OwnUnitOrdered:        "own unit added to linear order",
	LinearOrderExtended:   "linear order extended",
	ConnectionReceived:    "listener received a TCP connection",
	ConnectionEstablished: "dialer established a TCP connection",
	ConnectionClosed:      "connection closed",
	TooManyIncoming:       "incoming connection dropped, listen queue full",
	NotEnoughParents:      "unit creation failed (not enough parents)",
	TooManyParents:        "unit creation failed (too many parent candidates)",
	ReadyToAdd:            "preunits added to dag",
	UnknownParents:        "preunits with unknown parents",
	DuplicatedUnits:       "duplicate units skipped",
	DuplicatedPreunits:    "duplicate preunits skipped",
	MemoryUsage:           "memory usage sample",
	SyncStarted:           "sync started",
	SyncCompleted:         "sync completed",
	GetDagInfo:            "receiving dag info",
	SendDagInfo:           "sending dag info",
	SendUnits:             "sending units",
	SentUnits:             "units sent",
	SendFreshUnits:        "sending fresh units",
	SentFreshUnits:        "fresh units sent",
	SendRequests:          "sending requests",
	GetPreunits:           "receiving preunits",
	ReceivedPreunits:      "preunits received",
	GetRequests:           "receiving requests",
	AdditionalExchange:    "extra request-driven exchange",
	AddUnits:              "adding received units to dag",
}

// Field names
const (
	Time    = "T"
	Level   = "L"
	Event   = "E"
	Service = "S"
	Size    = "N"
	Txs     = "X"
	Height  = "H"
	Round   = "R"
	PID     = "P"
	SID     = "Y"
	Creator = "C"
	Memory  = "M"
	Sent      = "SN"
	Recv      = "RV"
	FreshSent = "FSN"
	FreshRecv = "FRV"
)

// fieldNameDict maps short field names to human readable form
var fieldNameDict = map[string]string{
	Time:    "time",
	Level:   "level",
	Event:   "event",
	Service: "service",
	Size:    "size",
	Txs:     "txs",
	Height:  "height",
	Round:   "round",
	PID:     "PID",
	SID:     "SyncID",
	Creator: "creator",
	Memory:  "memory",
	Sent:      "bytesSent",
	Recv:      "bytesRecv",
	FreshSent: "freshBytesSent",
	FreshRecv: "freshBytesRecv",
}

// Service types
const (
	CreateService int = iota
	OrderService
	SyncService
	ValidateService
	GenerateService
	ExtenderService
	SchedulerService
)

// serviceTypeDict maps integer service types to human readable names
var serviceTypeDict = map[int]string{
	CreateService:    "CREATE",
	OrderService:     "ORDER",
	SyncService:      "SYNC",
	ValidateService:  "VALID",
	GenerateService:  "GENER",
	ExtenderService:  "EXTND",
	SchedulerService: "SCHED",
}

// Genesis was better with Phil Collins
const Genesis = "genesis"
