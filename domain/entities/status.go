package entities

import "fmt"

// Status is the result code of an SDK operation. Negative values are
// errors, positive values are warnings and zero is success.
type Status int32

const (
	StatusNoError Status = 0

	StatusFeatureUnsupported Status = -1
	StatusParamUnsupported   Status = -2
	StatusItemUnavailable    Status = -3

	StatusHandleInvalid Status = -101
	StatusAllocFailed   Status = -102

	StatusDeviceFailed Status = -201
	StatusDeviceLost   Status = -202
	StatusDeviceBusy   Status = -203

	StatusExecAborted    Status = -301
	StatusExecInProgress Status = -302
	StatusExecTimeout    Status = -303

	StatusFileWriteFailed Status = -401
	StatusFileReadFailed  Status = -402
	StatusFileCloseFailed Status = -403

	StatusDataUnavailable    Status = -501
	StatusDataNotInitialized Status = -502
	StatusInitFailed         Status = -503

	StatusStreamConfigChanged Status = -601

	StatusPowerUIDAlreadyRegistered Status = -701
	StatusPowerUIDNotRegistered     Status = -702
	StatusPowerIllegalState         Status = -703
	StatusPowerProviderNotExists    Status = -704

	StatusCaptureConfigAlreadySet  Status = -801
	StatusCoordinateSystemConflict Status = -802
	StatusNotMatchingCalibration   Status = -803

	StatusAccelerationUnavailable Status = -901

	StatusTimeGap         Status = 101
	StatusParamInplace    Status = 102
	StatusDataNotChanged  Status = 103
	StatusProcessFailed   Status = 104
	StatusValueOutOfRange Status = 105
	StatusDataPending     Status = 106
)

var statusNames = map[Status]string{
	StatusNoError:                   "NO_ERROR",
	StatusFeatureUnsupported:        "FEATURE_UNSUPPORTED",
	StatusParamUnsupported:          "PARAM_UNSUPPORTED",
	StatusItemUnavailable:           "ITEM_UNAVAILABLE",
	StatusHandleInvalid:             "HANDLE_INVALID",
	StatusAllocFailed:               "ALLOC_FAILED",
	StatusDeviceFailed:              "DEVICE_FAILED",
	StatusDeviceLost:                "DEVICE_LOST",
	StatusDeviceBusy:                "DEVICE_BUSY",
	StatusExecAborted:               "EXEC_ABORTED",
	StatusExecInProgress:            "EXEC_INPROGRESS",
	StatusExecTimeout:               "EXEC_TIMEOUT",
	StatusFileWriteFailed:           "FILE_WRITE_FAILED",
	StatusFileReadFailed:            "FILE_READ_FAILED",
	StatusFileCloseFailed:           "FILE_CLOSE_FAILED",
	StatusDataUnavailable:           "DATA_UNAVAILABLE",
	StatusDataNotInitialized:        "DATA_NOT_INITIALIZED",
	StatusInitFailed:                "INIT_FAILED",
	StatusStreamConfigChanged:       "STREAM_CONFIG_CHANGED",
	StatusPowerUIDAlreadyRegistered: "POWER_UID_ALREADY_REGISTERED",
	StatusPowerUIDNotRegistered:     "POWER_UID_NOT_REGISTERED",
	StatusPowerIllegalState:         "POWER_ILLEGAL_STATE",
	StatusPowerProviderNotExists:    "POWER_PROVIDER_NOT_EXISTS",
	StatusCaptureConfigAlreadySet:   "CAPTURE_CONFIG_ALREADY_SET",
	StatusCoordinateSystemConflict:  "COORDINATE_SYSTEM_CONFLICT",
	StatusNotMatchingCalibration:    "NOT_MATCHING_CALIBRATION",
	StatusAccelerationUnavailable:   "ACCELERATION_UNAVAILABLE",
	StatusTimeGap:                   "TIME_GAP",
	StatusParamInplace:              "PARAM_INPLACE",
	StatusDataNotChanged:            "DATA_NOT_CHANGED",
	StatusProcessFailed:             "PROCESS_FAILED",
	StatusValueOutOfRange:           "VALUE_OUT_OF_RANGE",
	StatusDataPending:               "DATA_PENDING",
}

// IsError reports whether s signals a failure.
func (s Status) IsError() bool { return s < 0 }

// IsWarning reports whether s is a warning. Warnings are not failures.
func (s Status) IsWarning() bool { return s > 0 }

// IsSuccess reports whether s is success or a warning.
func (s Status) IsSuccess() bool { return s >= 0 }

// Known reports whether s is one of the defined codes.
func (s Status) Known() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int32(s))
}

// Statuses returns every defined status code.
func Statuses() []Status {
	out := make([]Status, 0, len(statusNames))
	for s := range statusNames {
		out = append(out, s)
	}
	return out
}
