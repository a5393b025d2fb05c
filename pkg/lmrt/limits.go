package lmrt

// Table sizing constants.
const (
	// DefaultTableSize is used when the controller reports no table size.
	// It also sizes the AID arena for tables below MinTableSize.
	DefaultTableSize = 720

	// MinTableSize is the smallest table the AID arena is derived from.
	MinTableSize = 45

	// TechProtoReserve is kept free of AID entries when dynamic AID
	// sizing is enabled.
	TechProtoReserve = 60

	// MinAIDEntrySize bounds the number of AID entries per arena byte.
	MinAIDEntrySize = 5

	// MaxAPDUEntries is the number of APDU patterns the arena holds.
	MaxAPDUEntries = 5

	// APDUArenaSize is the APDU pattern arena size.
	APDUArenaSize = 250
)

// Limits are the arena limits derived from the controller's table size.
type Limits struct {
	TableSize      int
	AIDConfigLen   int
	MaxAIDEntries  int
	APDUConfigLen  int
	MaxAPDUEntries int
}

// NewLimits derives arena limits from a reported table size. TableSize is
// the reported size unless none was reported. With dynamic sizing the AID
// arena leaves TechProtoReserve bytes for technology and protocol entries.
func NewLimits(tableSize int, dynamic bool) Limits {
	if tableSize <= 0 {
		tableSize = DefaultTableSize
	}

	arena := tableSize
	if arena < MinTableSize {
		arena = DefaultTableSize
	}
	aidLen := arena
	if dynamic && arena > 2*TechProtoReserve {
		aidLen = arena - TechProtoReserve
	}

	return Limits{
		TableSize:      tableSize,
		AIDConfigLen:   aidLen,
		MaxAIDEntries:  aidLen / MinAIDEntrySize,
		APDUConfigLen:  min(APDUArenaSize, aidLen),
		MaxAPDUEntries: MaxAPDUEntries,
	}
}
