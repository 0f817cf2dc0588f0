package log

const (
	KeyError      = "error"
	KeyPath       = "path"
	KeyTempPath   = "temp_path"
	KeyKind       = "kind"
	KeyDims       = "dims"
	KeyCompressor = "compressor"
	KeyLevel      = "level"
	KeyBlocks     = "blocks"
	KeyBytes      = "bytes"
	KeyStored     = "stored_bytes"
	KeyThreads    = "threads"
)
