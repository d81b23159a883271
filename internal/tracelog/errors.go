package tracelog

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptLogFile is matched by errors reporting a framing violation in
	// a trace file.
	ErrCorruptLogFile = errors.New("corrupt log file")

	// ErrUnknownEventID is matched by errors reporting a record whose event id
	// is not declared in the preamble.
	ErrUnknownEventID = errors.New("unknown event id")
)

// CorruptFileError reports a record which could not be read. Offset is the
// position of the record header in the file.
type CorruptFileError struct {
	Path   string
	Offset int64
	Reason string
}

func (e *CorruptFileError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d: %s", e.Path, ErrCorruptLogFile, e.Offset, e.Reason)
}

func (e *CorruptFileError) Is(target error) bool { return target == ErrCorruptLogFile }

type UnknownEventError struct {
	Path   string
	Offset int64
	Value  uint16
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("%s: %s %d in record at offset %d", e.Path, ErrUnknownEventID, e.Value, e.Offset)
}

func (e *UnknownEventError) Is(target error) bool { return target == ErrUnknownEventID }
