package errors

import (
	"github.com/pingcap/errors"
)

// all jobsweep errors
var (
	// backend related errors
	ErrBackendClosed         = errors.Normalize("job backend has been closed", errors.RFCCodeText("JOBSWEEP:ErrBackendClosed"))
	ErrTaskNotFound          = errors.Normalize("task %s is not registered", errors.RFCCodeText("JOBSWEEP:ErrTaskNotFound"))
	ErrTaskAlreadyRegistered = errors.Normalize("task %s has already been registered", errors.RFCCodeText("JOBSWEEP:ErrTaskAlreadyRegistered"))
	ErrTaskPanicked          = errors.Normalize("task %s panicked: %v", errors.RFCCodeText("JOBSWEEP:ErrTaskPanicked"))
	ErrJobNotTerminal        = errors.Normalize("job %s has not reached a terminal state", errors.RFCCodeText("JOBSWEEP:ErrJobNotTerminal"))

	// dispatch related errors
	ErrSubmitJob  = errors.Normalize("submit job for item %d failed", errors.RFCCodeText("JOBSWEEP:ErrSubmitJob"))
	ErrEmptyTask  = errors.Normalize("task name is empty", errors.RFCCodeText("JOBSWEEP:ErrEmptyTask"))
	ErrNilBackend = errors.Normalize("job backend is nil", errors.RFCCodeText("JOBSWEEP:ErrNilBackend"))

	// poll related errors
	ErrPollTimeout = errors.Normalize("%d of %d jobs still pending after %s", errors.RFCCodeText("JOBSWEEP:ErrPollTimeout"))

	// config related errors
	ErrDecodeConfigFile      = errors.Normalize("decode config file %s failed", errors.RFCCodeText("JOBSWEEP:ErrDecodeConfigFile"))
	ErrConfigUnknownItem     = errors.Normalize("unknown config items: %s", errors.RFCCodeText("JOBSWEEP:ErrConfigUnknownItem"))
	ErrConfigUnsupportedFile = errors.Normalize("unsupported config file format %s", errors.RFCCodeText("JOBSWEEP:ErrConfigUnsupportedFile"))
	ErrInvalidDuration       = errors.Normalize("invalid duration %s", errors.RFCCodeText("JOBSWEEP:ErrInvalidDuration"))
)
