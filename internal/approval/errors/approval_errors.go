package approvalerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidApprovalID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approval id",
		http.StatusBadRequest,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval not found",
		http.StatusNotFound,
	)
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeInvalidState,
		"approval has already been processed",
		http.StatusBadRequest,
	)
	ErrRequestFinalized = apperror.New(
		apperror.CodeInvalidState,
		"leave request is no longer pending",
		http.StatusBadRequest,
	)
	ErrNotAssignedApprover = apperror.New(
		apperror.CodeForbidden,
		"approval is assigned to another approver",
		http.StatusForbidden,
	)
)
