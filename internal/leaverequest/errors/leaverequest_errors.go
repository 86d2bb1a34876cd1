package leaverequesterrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrNoWorkingDays = apperror.New(
		apperror.CodeInvalidInput,
		"requested period contains no working days",
		http.StatusBadRequest,
	)
	ErrBackdateLimitExceeded = apperror.New(
		apperror.CodeInvalidInput,
		"start_date is more than 5 working days in the past",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeInactive = apperror.New(
		apperror.CodeInvalidState,
		"employee is not active",
		http.StatusBadRequest,
	)
	ErrGenderNotEligible = apperror.New(
		apperror.CodeForbidden,
		"leave type is not applicable to this employee",
		http.StatusForbidden,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeConflict,
		"leave already requested in overlapping period",
		http.StatusConflict,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"leave request belongs to another employee",
		http.StatusForbidden,
	)
	ErrNotCancellable = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be cancelled",
		http.StatusBadRequest,
	)
)
