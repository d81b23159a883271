package decoder

import "strconv"

// Names of the CamxResult and CDKResult codes, indexed by value.
var resultNames = [...]string{
	"Success",
	"EFailed",
	"EUnsupported",
	"EInvalidState",
	"EInvalidArg",
	"EInvalidPointer",
	"ENoSuch",
	"EOutOfBounds",
	"ENoMemory",
	"ETimeout",
	"ENoMore",
	"ENeedMore",
	"EExists",
	"EPrivLevel",
	"EResource",
	"EUnableToLoad",
	"EInProgress",
	"ETryAgain",
	"EBusy",
	"EReentered",
	"EReadOnly",
	"EOverflow",
	"EOutOfDomain",
	"EInterrupted",
	"EWouldBlock",
	"ETooManyUsers",
	"ENotImplemented",
	"EDisabled",
	"ECancelledRequest",
}

func resultName(code int64) string {
	if code >= 0 && code < int64(len(resultNames)) {
		return resultNames[code]
	}
	return "Unknown(" + strconv.FormatInt(code, 10) + ")"
}
